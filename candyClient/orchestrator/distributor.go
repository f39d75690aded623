package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
	"github.com/pushchain/candy-machine-client/candyClient/instructions"
	"github.com/pushchain/candy-machine-client/candyClient/keys"
	"github.com/pushchain/candy-machine-client/candyClient/layout"
	"github.com/pushchain/candy-machine-client/candyClient/pda"
	"github.com/pushchain/candy-machine-client/candyClient/state"
)

// InitializeParams describes a new config account and its distributor.
// Empty keypairs and uuids are generated.
type InitializeParams struct {
	Wallet          solana.PrivateKey
	Config          solana.PrivateKey
	Authority       solana.PrivateKey
	ConfigUUID      string
	DistributorUUID string

	// Catalog is appended from index 0 in the same transaction.
	Catalog []layout.CatalogLine
	// Capacity is the number of lines the config account can hold. Zero
	// means len(Catalog).
	Capacity uint32

	Symbol               string
	SellerFeeBasisPoints uint16
	// Creators defaults to the wallet with the whole share.
	Creators        []instructions.Creator
	MaxSupply       uint64
	IsMutable       bool
	RetainAuthority bool

	Price uint64
	// GoLiveDate nil leaves the distributor closed until UpdateDistributor.
	GoLiveDate *int64
	// Payment nil is PaymentNative.
	Payment Payment
}

// InitializeResult carries the generated keypairs the caller must keep to
// operate the distributor later.
type InitializeResult struct {
	Signature       solana.Signature
	Config          solana.PrivateKey
	Authority       solana.PrivateKey
	ConfigUUID      string
	DistributorUUID string
	Distributor     pda.Address
	StorageSize     uint64
	// PaymentMint and PaymentAccount are set for custom token payment.
	PaymentMint    *solana.PublicKey
	PaymentAccount solana.PublicKey
}

// InitializeDistributor creates the config account, writes its header and
// catalog and creates the distributor, all in one transaction.
func (o *Orchestrator) InitializeDistributor(ctx context.Context, p InitializeParams) (result *InitializeResult, err error) {
	start := time.Now()
	defer func() { o.observe(WorkflowInitialize, start, err) }()

	if err := requireKey(WorkflowInitialize, "wallet", p.Wallet); err != nil {
		return nil, err
	}
	if err := o.calc.ValidateCatalog(p.Catalog); err != nil {
		return nil, err
	}
	capacity := p.Capacity
	if capacity == 0 {
		capacity = uint32(len(p.Catalog))
	}
	if capacity == 0 {
		return nil, cerrors.NewValidationError(WorkflowInitialize, "catalog is empty and no capacity was given")
	}
	if int(capacity) < len(p.Catalog) {
		return nil, cerrors.NewLayoutError(WorkflowInitialize,
			fmt.Sprintf("catalog has %d lines, capacity is %d", len(p.Catalog), capacity))
	}

	configKey, err := generateIfEmpty(p.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate config keypair: %w", err)
	}
	authority, err := generateIfEmpty(p.Authority)
	if err != nil {
		return nil, fmt.Errorf("failed to generate authority keypair: %w", err)
	}
	configUUID, err := uuidOrNew(p.ConfigUUID)
	if err != nil {
		return nil, err
	}
	distributorUUID, err := uuidOrNew(p.DistributorUUID)
	if err != nil {
		return nil, err
	}

	wallet := p.Wallet.PublicKey()
	creators := p.Creators
	if creators == nil {
		creators = []instructions.Creator{{Address: wallet, Verified: false, Share: 100}}
	}
	configData := instructions.ConfigData{
		UUID:                 configUUID,
		Symbol:               p.Symbol,
		SellerFeeBasisPoints: p.SellerFeeBasisPoints,
		Creators:             creators,
		MaxSupply:            p.MaxSupply,
		IsMutable:            p.IsMutable,
		RetainAuthority:      p.RetainAuthority,
		MaxNumberOfLines:     capacity,
	}
	if err := configData.Validate(); err != nil {
		return nil, err
	}

	distributor, err := o.deriver.Distributor(configKey.PublicKey(), distributorUUID)
	if err != nil {
		return nil, err
	}

	ids := o.builder.ProgramIDs()
	storage := o.calc.RequiredStorage(capacity)
	storageRent, err := o.rentExempt(ctx, storage)
	if err != nil {
		return nil, err
	}

	ixs := make([]solana.Instruction, 0, 8)
	signers := []solana.PrivateKey{configKey, authority}

	createConfig, err := o.builder.CreateAccount(wallet, configKey.PublicKey(), storageRent, storage, ids.CandyMachine)
	if err != nil {
		return nil, err
	}
	fundAuthority, err := o.builder.Transfer(wallet, authority.PublicKey(), o.settings.AuthorityFundingLamports)
	if err != nil {
		return nil, err
	}
	initConfig, err := o.builder.InitializeConfig(instructions.InitializeConfigAccounts{
		Config:    configKey.PublicKey(),
		Authority: authority.PublicKey(),
		Payer:     wallet,
	}, configData)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, createConfig, fundAuthority, initConfig)

	if len(p.Catalog) > 0 {
		addLines, err := o.builder.AddConfigLines(instructions.AddConfigLinesAccounts{
			Config:    configKey.PublicKey(),
			Authority: authority.PublicKey(),
		}, 0, p.Catalog)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, addLines)
	}

	result = &InitializeResult{
		Config:          configKey,
		Authority:       authority,
		ConfigUUID:      configUUID,
		DistributorUUID: distributorUUID,
		Distributor:     distributor,
		StorageSize:     storage,
		PaymentAccount:  wallet,
	}

	cmAccounts := instructions.InitializeCandyMachineAccounts{
		CandyMachine: distributor.Key,
		Wallet:       wallet,
		Config:       configKey.PublicKey(),
		Authority:    authority.PublicKey(),
		Payer:        wallet,
	}

	switch payment := p.Payment.(type) {
	case nil, PaymentNative:
	case PaymentCustomMint:
		mintIxs, mintKey, account, err := o.paymentMint(ctx, wallet, payment)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, mintIxs...)
		signers = append(signers, mintKey)
		mint := mintKey.PublicKey()
		cmAccounts.Wallet = account
		cmAccounts.TokenMint = &mint
		result.PaymentMint = &mint
		result.PaymentAccount = account
	default:
		return nil, cerrors.NewValidationError(WorkflowInitialize, fmt.Sprintf("unsupported payment %T", p.Payment))
	}

	initDistributor, err := o.builder.InitializeCandyMachine(cmAccounts, distributor.Bump, instructions.CandyMachineData{
		UUID:           distributorUUID,
		Price:          p.Price,
		ItemsAvailable: uint64(capacity),
		GoLiveDate:     p.GoLiveDate,
	})
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, initDistributor)

	o.logger.Info().
		Str("config", configKey.PublicKey().String()).
		Str("distributor", distributor.Key.String()).
		Uint64("storage_bytes", storage).
		Int("lines", len(p.Catalog)).
		Msg("initializing distributor")

	// An accepted but unconfirmed transaction still returns the result: the
	// generated keypairs are the only way to operate the accounts later.
	sig, err := o.submit(ctx, WorkflowInitialize, ixs, p.Wallet, signers...)
	if sig.IsZero() {
		return nil, err
	}
	result.Signature = sig
	if err == nil {
		o.metrics.SetStorageBytes(storage)
		o.metrics.AddCatalogLines(len(p.Catalog))
	}

	if o.recorder != nil && landed(sig, err) {
		rec := DeploymentRecord{
			Config:          configKey.PublicKey(),
			Authority:       authority.PublicKey(),
			Wallet:          wallet,
			Distributor:     distributor.Key,
			Bump:            distributor.Bump,
			ConfigUUID:      configUUID,
			DistributorUUID: distributorUUID,
			StorageSize:     storage,
			Capacity:        capacity,
			CatalogLength:   uint32(len(p.Catalog)),
			Price:           p.Price,
			PaymentMint:     result.PaymentMint,
			Signature:       sig,
		}
		if jerr := o.recorder.RecordDeployment(ctx, rec); jerr != nil {
			o.logger.Warn().Err(jerr).Str("config", rec.Config.String()).Msg("failed to journal deployment")
		}
	}
	return result, err
}

// paymentMint builds the instructions creating a payment mint controlled by
// wallet and the wallet's associated account receiving payments.
func (o *Orchestrator) paymentMint(
	ctx context.Context,
	wallet solana.PublicKey,
	payment PaymentCustomMint,
) ([]solana.Instruction, solana.PrivateKey, solana.PublicKey, error) {
	mintKey, err := generateIfEmpty(payment.Mint)
	if err != nil {
		return nil, nil, solana.PublicKey{}, fmt.Errorf("failed to generate payment mint keypair: %w", err)
	}
	mint := mintKey.PublicKey()

	ata, err := o.deriver.AssociatedToken(wallet, mint)
	if err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	rent, err := o.rentExempt(ctx, instructions.MintAccountSize)
	if err != nil {
		return nil, nil, solana.PublicKey{}, err
	}

	ids := o.builder.ProgramIDs()
	create, err := o.builder.CreateAccount(wallet, mint, rent, instructions.MintAccountSize, ids.Token)
	if err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	initMint, err := o.builder.InitializeMint(mint, payment.Decimals, wallet, wallet)
	if err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	createATA := o.builder.CreateAssociatedTokenAccount(wallet, ata.Key, wallet, mint)
	return []solana.Instruction{create, initMint, createATA}, mintKey, ata.Key, nil
}

// UpdateParams changes the price and/or go-live date of a distributor.
type UpdateParams struct {
	Wallet          solana.PrivateKey
	Authority       solana.PrivateKey
	Config          solana.PublicKey
	DistributorUUID string
	Price           *uint64
	GoLiveDate      *int64
}

// UpdateResult identifies the updated distributor.
type UpdateResult struct {
	Signature   solana.Signature
	Distributor pda.Address
}

// UpdateDistributor submits update_candy_machine. Setting GoLiveDate opens a
// distributor that was initialized without one.
func (o *Orchestrator) UpdateDistributor(ctx context.Context, p UpdateParams) (result *UpdateResult, err error) {
	start := time.Now()
	defer func() { o.observe(WorkflowUpdate, start, err) }()

	if err := requireKey(WorkflowUpdate, "wallet", p.Wallet); err != nil {
		return nil, err
	}
	if err := requireKey(WorkflowUpdate, "authority", p.Authority); err != nil {
		return nil, err
	}
	if p.Price == nil && p.GoLiveDate == nil {
		return nil, cerrors.NewValidationError(WorkflowUpdate, "nothing to update: set a price or a go-live date")
	}

	distributor, err := o.deriver.Distributor(p.Config, p.DistributorUUID)
	if err != nil {
		return nil, err
	}
	ix, err := o.builder.UpdateCandyMachine(instructions.UpdateCandyMachineAccounts{
		CandyMachine: distributor.Key,
		Authority:    p.Authority.PublicKey(),
	}, p.Price, p.GoLiveDate)
	if err != nil {
		return nil, err
	}

	sig, err := o.submit(ctx, WorkflowUpdate, []solana.Instruction{ix}, p.Wallet, p.Authority)
	if sig.IsZero() {
		return nil, err
	}
	return &UpdateResult{Signature: sig, Distributor: distributor}, err
}

// FetchDistributor derives the distributor of config and uuid and decodes
// its current on-chain state.
func (o *Orchestrator) FetchDistributor(ctx context.Context, configKey solana.PublicKey, uuid string) (*state.Distributor, pda.Address, error) {
	address, err := o.deriver.Distributor(configKey, uuid)
	if err != nil {
		return nil, pda.Address{}, err
	}
	data, err := o.ledger.AccountData(ctx, address.Key)
	if err != nil {
		return nil, address, fmt.Errorf("failed to fetch distributor %s: %w", address.Key, err)
	}
	d, err := state.DecodeDistributor(data)
	if err != nil {
		return nil, address, err
	}
	return d, address, nil
}

func uuidOrNew(uuid string) (string, error) {
	if uuid == "" {
		generated, err := keys.NewUUID()
		if err != nil {
			return "", fmt.Errorf("failed to generate uuid: %w", err)
		}
		return generated, nil
	}
	if err := layout.ValidateUUID(uuid); err != nil {
		return "", err
	}
	return uuid, nil
}
