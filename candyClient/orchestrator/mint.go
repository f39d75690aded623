package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
	"github.com/pushchain/candy-machine-client/candyClient/instructions"
	"github.com/pushchain/candy-machine-client/candyClient/pda"
)

// MintParams redeems one item from a distributor.
type MintParams struct {
	Wallet          solana.PrivateKey
	Authority       solana.PrivateKey
	Config          solana.PublicKey
	DistributorUUID string
	// Recipient owns the minted token. Zero means the wallet.
	Recipient solana.PublicKey
	// Price is forwarded to the authority before minting. Nil reads it from
	// the distributor account.
	Price *uint64
}

// MintResult holds the addresses created for the item.
type MintResult struct {
	Signature     solana.Signature
	Mint          solana.PublicKey
	TokenAccount  solana.PublicKey
	Metadata      solana.PublicKey
	MasterEdition solana.PublicKey
	Distributor   pda.Address
}

// MintOne mints a single item into a fresh mint account. Every call generates
// a new mint keypair, so repeated calls never collide on the mint address.
// When the ledger accepted the transaction but confirmation failed, the
// result is returned together with the error.
func (o *Orchestrator) MintOne(ctx context.Context, p MintParams) (result *MintResult, err error) {
	start := time.Now()
	defer func() { o.observe(WorkflowMint, start, err) }()

	if err := requireKey(WorkflowMint, "wallet", p.Wallet); err != nil {
		return nil, err
	}
	if err := requireKey(WorkflowMint, "authority", p.Authority); err != nil {
		return nil, err
	}

	wallet := p.Wallet.PublicKey()
	authority := p.Authority.PublicKey()
	recipient := p.Recipient
	if recipient.IsZero() {
		recipient = wallet
	}

	distributor, err := o.deriver.Distributor(p.Config, p.DistributorUUID)
	if err != nil {
		return nil, err
	}

	// The distributor's wallet receives the payment inside mint_nft.
	paymentWallet := wallet
	var price uint64
	if p.Price != nil {
		price = *p.Price
	} else {
		d, _, err := o.FetchDistributor(ctx, p.Config, p.DistributorUUID)
		if err != nil {
			return nil, err
		}
		if d.PaysInToken() {
			return nil, cerrors.NewValidationError(WorkflowMint, "minting from a custom token distributor is not supported")
		}
		if !d.IsLive(time.Now()) {
			o.logger.Warn().Str("distributor", distributor.Key.String()).Msg("distributor is not live, the program will reject the mint")
		}
		if d.Remaining() == 0 {
			o.logger.Warn().Str("distributor", distributor.Key.String()).Msg("distributor has no items left")
		}
		price = d.Data.Price
		paymentWallet = d.Wallet
	}

	mintKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mint keypair: %w", err)
	}
	mint := mintKey.PublicKey()

	tokenAccount, err := o.deriver.AssociatedToken(recipient, mint)
	if err != nil {
		return nil, err
	}
	metadata, err := o.deriver.Metadata(mint)
	if err != nil {
		return nil, err
	}
	edition, err := o.deriver.MasterEdition(mint)
	if err != nil {
		return nil, err
	}
	mintRent, err := o.rentExempt(ctx, instructions.MintAccountSize)
	if err != nil {
		return nil, err
	}

	ids := o.builder.ProgramIDs()
	// The authority pays inside mint_nft, so it is funded with the price and fee first.
	fund, err := o.builder.Transfer(wallet, authority, price+o.settings.MintFeeLamports)
	if err != nil {
		return nil, err
	}
	createMint, err := o.builder.CreateAccount(wallet, mint, mintRent, instructions.MintAccountSize, ids.Token)
	if err != nil {
		return nil, err
	}
	initMint, err := o.builder.InitializeMint(mint, 0, authority, authority)
	if err != nil {
		return nil, err
	}
	createATA := o.builder.CreateAssociatedTokenAccount(wallet, tokenAccount.Key, recipient, mint)
	mintTo, err := o.builder.MintTo(mint, tokenAccount.Key, authority, 1)
	if err != nil {
		return nil, err
	}
	mintNFT := o.builder.MintNFT(instructions.MintNFTAccounts{
		Config:          p.Config,
		CandyMachine:    distributor.Key,
		Payer:           authority,
		Wallet:          paymentWallet,
		Metadata:        metadata.Key,
		Mint:            mint,
		MintAuthority:   authority,
		UpdateAuthority: authority,
		MasterEdition:   edition.Key,
	})

	ixs := []solana.Instruction{fund, createMint, initMint, createATA, mintTo, mintNFT}
	o.logger.Info().
		Str("distributor", distributor.Key.String()).
		Str("mint", mint.String()).
		Str("recipient", recipient.String()).
		Uint64("price", price).
		Msg("minting item")

	sig, err := o.submit(ctx, WorkflowMint, ixs, p.Wallet, mintKey, p.Authority)
	if sig.IsZero() {
		return nil, err
	}
	if err == nil {
		o.metrics.IncMinted()
	}

	result = &MintResult{
		Signature:     sig,
		Mint:          mint,
		TokenAccount:  tokenAccount.Key,
		Metadata:      metadata.Key,
		MasterEdition: edition.Key,
		Distributor:   distributor,
	}
	if o.recorder != nil && landed(sig, err) {
		rec := MintRecord{
			Config:       p.Config,
			Distributor:  distributor.Key,
			Mint:         mint,
			Recipient:    recipient,
			TokenAccount: tokenAccount.Key,
			Price:        price,
			Signature:    sig,
		}
		if jerr := o.recorder.RecordMint(ctx, rec); jerr != nil {
			o.logger.Warn().Err(jerr).Str("mint", mint.String()).Msg("failed to journal mint")
		}
	}
	return result, err
}
