// Package instructions assembles the individual instructions of the candy
// machine workflows. Every builder is synchronous and performs no I/O:
// balances and addresses are computed by the caller and passed in.
package instructions

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/pushchain/candy-machine-client/candyClient/config"
	"github.com/pushchain/candy-machine-client/candyClient/layout"
)

// MintAccountSize is the size of an SPL token mint record.
const MintAccountSize = 82

// Builder assembles instructions against an injected set of program ids.
type Builder struct {
	ids  config.ProgramIDs
	calc *layout.Calculator
}

// NewBuilder returns a Builder. calc validates catalog lines before they are encoded.
func NewBuilder(ids config.ProgramIDs, calc *layout.Calculator) *Builder {
	return &Builder{ids: ids, calc: calc}
}

// ProgramIDs returns the ids the builder was constructed with.
func (b *Builder) ProgramIDs() config.ProgramIDs {
	return b.ids
}

// CreateAccount allocates space bytes owned by owner, funded by payer with
// the rent-exempt balance the caller already queried.
func (b *Builder) CreateAccount(
	payer solana.PublicKey,
	newAccount solana.PublicKey,
	lamports uint64,
	space uint64,
	owner solana.PublicKey,
) (solana.Instruction, error) {
	ix, err := system.NewCreateAccountInstruction(lamports, space, owner, payer, newAccount).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build create account instruction: %w", err)
	}
	return rebind(b.ids.System, ix)
}

// Transfer moves lamports from one system account to another.
func (b *Builder) Transfer(from, to solana.PublicKey, lamports uint64) (solana.Instruction, error) {
	ix, err := system.NewTransferInstruction(lamports, from, to).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer instruction: %w", err)
	}
	return rebind(b.ids.System, ix)
}

// InitializeMint marks a freshly created account as a token mint.
func (b *Builder) InitializeMint(
	mint solana.PublicKey,
	decimals uint8,
	mintAuthority solana.PublicKey,
	freezeAuthority solana.PublicKey,
) (solana.Instruction, error) {
	ix, err := token.NewInitializeMintInstruction(
		decimals,
		mintAuthority,
		freezeAuthority,
		mint,
		b.ids.Rent,
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize mint instruction: %w", err)
	}
	return rebind(b.ids.Token, ix)
}

// MintTo mints amount units of mint into destination.
func (b *Builder) MintTo(
	mint solana.PublicKey,
	destination solana.PublicKey,
	authority solana.PublicKey,
	amount uint64,
) (solana.Instruction, error) {
	ix, err := token.NewMintToInstruction(
		amount,
		mint,
		destination,
		authority,
		nil,
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build mint to instruction: %w", err)
	}
	return rebind(b.ids.Token, ix)
}

// CreateAssociatedTokenAccount creates the associated token account of owner
// for mint. The account list is fixed and the payload is empty.
func (b *Builder) CreateAssociatedTokenAccount(
	payer solana.PublicKey,
	associated solana.PublicKey,
	owner solana.PublicKey,
	mint solana.PublicKey,
) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsWritable: true, IsSigner: true},
		{PublicKey: associated, IsWritable: true, IsSigner: false},
		{PublicKey: owner, IsWritable: false, IsSigner: false},
		{PublicKey: mint, IsWritable: false, IsSigner: false},
		{PublicKey: b.ids.System, IsWritable: false, IsSigner: false},
		{PublicKey: b.ids.Token, IsWritable: false, IsSigner: false},
		{PublicKey: b.ids.Rent, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(b.ids.AssociatedToken, accounts, []byte{})
}

// rebind re-issues a library-built instruction under the configured program id.
func rebind(programID solana.PublicKey, ix solana.Instruction) (solana.Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to encode instruction data: %w", err)
	}
	return solana.NewInstruction(programID, ix.Accounts(), data), nil
}
