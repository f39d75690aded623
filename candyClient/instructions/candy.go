package instructions

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
	"github.com/pushchain/candy-machine-client/candyClient/layout"
)

// Creator is one royalty recipient of the collection.
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// ConfigData is the argument of initialize_config.
type ConfigData struct {
	UUID                 string
	Symbol               string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	MaxSupply            uint64
	IsMutable            bool
	RetainAuthority      bool
	MaxNumberOfLines     uint32
}

// Validate rejects data the fixed header cannot hold.
func (d ConfigData) Validate() error {
	if err := layout.ValidateUUID(d.UUID); err != nil {
		return err
	}
	if len(d.Symbol) > layout.SymbolWidth {
		return cerrors.NewLayoutError(MethodInitializeConfig,
			fmt.Sprintf("symbol is %d bytes, exceeds %d", len(d.Symbol), layout.SymbolWidth))
	}
	if d.SellerFeeBasisPoints > layout.MaxBasisPoints {
		return cerrors.NewValidationError(MethodInitializeConfig,
			fmt.Sprintf("seller fee basis points %d exceeds %d", d.SellerFeeBasisPoints, layout.MaxBasisPoints))
	}
	if len(d.Creators) > layout.MaxCreators {
		return cerrors.NewLayoutError(MethodInitializeConfig,
			fmt.Sprintf("%d creators, at most %d fit", len(d.Creators), layout.MaxCreators))
	}
	if len(d.Creators) > 0 {
		total := 0
		for _, c := range d.Creators {
			total += int(c.Share)
		}
		if total != 100 {
			return cerrors.NewValidationError(MethodInitializeConfig,
				fmt.Sprintf("creator shares sum to %d, must be 100", total))
		}
	}
	return nil
}

// CandyMachineData is the argument of initialize_candy_machine. A nil
// GoLiveDate leaves the distributor closed until it is updated.
type CandyMachineData struct {
	UUID           string
	Price          uint64
	ItemsAvailable uint64
	GoLiveDate     *int64
}

type InitializeConfigAccounts struct {
	Config    solana.PublicKey
	Authority solana.PublicKey
	Payer     solana.PublicKey
}

type AddConfigLinesAccounts struct {
	Config    solana.PublicKey
	Authority solana.PublicKey
}

type InitializeCandyMachineAccounts struct {
	CandyMachine solana.PublicKey
	Wallet       solana.PublicKey
	Config       solana.PublicKey
	Authority    solana.PublicKey
	Payer        solana.PublicKey
	// TokenMint is set when the distributor charges in a custom token; Wallet
	// is then the token account receiving payments.
	TokenMint *solana.PublicKey
}

type MintNFTAccounts struct {
	Config          solana.PublicKey
	CandyMachine    solana.PublicKey
	Payer           solana.PublicKey
	Wallet          solana.PublicKey
	Metadata        solana.PublicKey
	Mint            solana.PublicKey
	MintAuthority   solana.PublicKey
	UpdateAuthority solana.PublicKey
	MasterEdition   solana.PublicKey
}

type UpdateCandyMachineAccounts struct {
	CandyMachine solana.PublicKey
	Authority    solana.PublicKey
}

// InitializeConfig writes the config header into a freshly allocated account.
func (b *Builder) InitializeConfig(accounts InitializeConfigAccounts, data ConfigData) (solana.Instruction, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	p := newPayload(MethodInitializeConfig).
		str(data.UUID).
		str(data.Symbol).
		u16(data.SellerFeeBasisPoints).
		u32(uint32(len(data.Creators)))
	for _, c := range data.Creators {
		p.pubkey(c.Address).boolean(c.Verified).u8(c.Share)
	}
	p.u64(data.MaxSupply).
		boolean(data.IsMutable).
		boolean(data.RetainAuthority).
		u32(data.MaxNumberOfLines)

	body, err := p.bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", MethodInitializeConfig, err)
	}

	// Order and flags must match the program's InitializeConfig accounts
	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Config, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.Authority, IsWritable: false, IsSigner: false},
		{PublicKey: accounts.Payer, IsWritable: true, IsSigner: true},
		{PublicKey: b.ids.Rent, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(b.ids.CandyMachine, metas, body), nil
}

// AddConfigLines appends lines starting at index. The index is passed through
// as given; the program decides whether it is acceptable.
func (b *Builder) AddConfigLines(accounts AddConfigLinesAccounts, index uint32, lines []layout.CatalogLine) (solana.Instruction, error) {
	if b.calc != nil {
		if err := b.calc.ValidateCatalog(lines); err != nil {
			return nil, err
		}
	}

	p := newPayload(MethodAddConfigLines).
		u32(index).
		u32(uint32(len(lines)))
	for _, line := range lines {
		p.str(line.Name).str(line.URI)
	}
	body, err := p.bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", MethodAddConfigLines, err)
	}

	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Config, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.Authority, IsWritable: false, IsSigner: true},
	}
	return solana.NewInstruction(b.ids.CandyMachine, metas, body), nil
}

// InitializeCandyMachine creates the distributor account at its derived address.
func (b *Builder) InitializeCandyMachine(
	accounts InitializeCandyMachineAccounts,
	bump uint8,
	data CandyMachineData,
) (solana.Instruction, error) {
	if err := layout.ValidateUUID(data.UUID); err != nil {
		return nil, err
	}

	body, err := newPayload(MethodInitializeCandyMachine).
		u8(bump).
		str(data.UUID).
		u64(data.Price).
		u64(data.ItemsAvailable).
		optI64(data.GoLiveDate).
		bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", MethodInitializeCandyMachine, err)
	}

	metas := []*solana.AccountMeta{
		{PublicKey: accounts.CandyMachine, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.Wallet, IsWritable: false, IsSigner: false},
		{PublicKey: accounts.Config, IsWritable: false, IsSigner: false},
		{PublicKey: accounts.Authority, IsWritable: false, IsSigner: true},
		{PublicKey: accounts.Payer, IsWritable: true, IsSigner: true},
		{PublicKey: b.ids.System, IsWritable: false, IsSigner: false},
		{PublicKey: b.ids.Rent, IsWritable: false, IsSigner: false},
	}
	if accounts.TokenMint != nil {
		// Remaining account read by the program when pricing in a custom token
		metas = append(metas, &solana.AccountMeta{PublicKey: *accounts.TokenMint, IsWritable: false, IsSigner: false})
	}
	return solana.NewInstruction(b.ids.CandyMachine, metas, body), nil
}

// MintNFT redeems one item. All state comes from the accounts.
func (b *Builder) MintNFT(accounts MintNFTAccounts) solana.Instruction {
	disc := Discriminator(MethodMintNFT)

	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Config, IsWritable: false, IsSigner: false},
		{PublicKey: accounts.CandyMachine, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.Payer, IsWritable: true, IsSigner: true},
		{PublicKey: accounts.Wallet, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.Metadata, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.Mint, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.MintAuthority, IsWritable: false, IsSigner: true},
		{PublicKey: accounts.UpdateAuthority, IsWritable: false, IsSigner: true},
		{PublicKey: accounts.MasterEdition, IsWritable: true, IsSigner: false},
		{PublicKey: b.ids.TokenMetadata, IsWritable: false, IsSigner: false},
		{PublicKey: b.ids.Token, IsWritable: false, IsSigner: false},
		{PublicKey: b.ids.System, IsWritable: false, IsSigner: false},
		{PublicKey: b.ids.Rent, IsWritable: false, IsSigner: false},
		{PublicKey: b.ids.Clock, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(b.ids.CandyMachine, metas, disc[:])
}

// UpdateCandyMachine changes the price and/or go-live date. Nil leaves a field unchanged.
func (b *Builder) UpdateCandyMachine(
	accounts UpdateCandyMachineAccounts,
	price *uint64,
	goLiveDate *int64,
) (solana.Instruction, error) {
	body, err := newPayload(MethodUpdateCandyMachine).
		optU64(price).
		optI64(goLiveDate).
		bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", MethodUpdateCandyMachine, err)
	}

	metas := []*solana.AccountMeta{
		{PublicKey: accounts.CandyMachine, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.Authority, IsWritable: false, IsSigner: true},
	}
	return solana.NewInstruction(b.ids.CandyMachine, metas, body), nil
}
