// Package pda derives the program-owned addresses the candy machine
// workflows bind to. Every call recomputes the address from its seeds.
package pda

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/pushchain/candy-machine-client/candyClient/config"
	"github.com/pushchain/candy-machine-client/candyClient/constant"
	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
)

// maxSeedLength is the runtime's limit for a single seed.
const maxSeedLength = 32

// Address is a derived program address with the bump that took it off the curve.
type Address struct {
	Key  solana.PublicKey
	Bump uint8
}

func (a Address) String() string {
	return a.Key.String()
}

// Deriver computes program addresses for one set of program identifiers.
type Deriver struct {
	ids config.ProgramIDs
}

// NewDeriver returns a Deriver bound to ids.
func NewDeriver(ids config.ProgramIDs) *Deriver {
	return &Deriver{ids: ids}
}

// Distributor derives the candy machine account for a config and distributor uuid.
func (d *Deriver) Distributor(configKey solana.PublicKey, uuid string) (Address, error) {
	return d.find("distributor", d.ids.CandyMachine,
		[]byte(constant.SeedCandyMachine),
		configKey.Bytes(),
		[]byte(uuid),
	)
}

// Metadata derives the token metadata account of mint.
func (d *Deriver) Metadata(mint solana.PublicKey) (Address, error) {
	return d.find("metadata", d.ids.TokenMetadata,
		[]byte(constant.SeedMetadata),
		d.ids.TokenMetadata.Bytes(),
		mint.Bytes(),
	)
}

// MasterEdition derives the master edition account of mint.
func (d *Deriver) MasterEdition(mint solana.PublicKey) (Address, error) {
	return d.find("master_edition", d.ids.TokenMetadata,
		[]byte(constant.SeedMetadata),
		d.ids.TokenMetadata.Bytes(),
		mint.Bytes(),
		[]byte(constant.SeedEdition),
	)
}

// AssociatedToken derives the associated token account holding mint for owner.
func (d *Deriver) AssociatedToken(owner, mint solana.PublicKey) (Address, error) {
	return d.find("associated_token", d.ids.AssociatedToken,
		owner.Bytes(),
		d.ids.Token.Bytes(),
		mint.Bytes(),
	)
}

func (d *Deriver) find(operation string, programID solana.PublicKey, seeds ...[]byte) (Address, error) {
	for i, seed := range seeds {
		if len(seed) > maxSeedLength {
			return Address{}, cerrors.NewDerivationError(operation,
				fmt.Sprintf("seed %d is %d bytes, exceeds %d", i, len(seed), maxSeedLength), nil)
		}
	}

	// FindProgramAddress walks the bump down from 255 and skips on-curve candidates.
	key, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return Address{}, cerrors.NewDerivationError(operation, "no off-curve address for seeds", err).
			WithContext("program", programID.String())
	}
	return Address{Key: key, Bump: bump}, nil
}
