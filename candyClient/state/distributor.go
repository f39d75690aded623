// Package state decodes candy machine accounts read back from the ledger.
package state

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"

	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
)

// DistributorDiscriminator prefixes every CandyMachine account.
var DistributorDiscriminator = accountDiscriminator("CandyMachine")

func accountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// DistributorData mirrors the program's CandyMachineData.
type DistributorData struct {
	UUID           string
	Price          uint64
	ItemsAvailable uint64
	GoLiveDate     *int64
}

// Distributor is the decoded CandyMachine account. Field order is the wire order.
type Distributor struct {
	Authority     solana.PublicKey
	Wallet        solana.PublicKey
	TokenMint     *solana.PublicKey
	Config        solana.PublicKey
	Data          DistributorData
	ItemsRedeemed uint64
	Bump          uint8
}

// DecodeDistributor parses raw account data. Trailing allocation is ignored.
func DecodeDistributor(data []byte) (*Distributor, error) {
	if len(data) < len(DistributorDiscriminator) {
		return nil, cerrors.NewLayoutError("decode_distributor",
			fmt.Sprintf("account data is %d bytes, shorter than the discriminator", len(data)))
	}
	if !bytes.Equal(data[:8], DistributorDiscriminator[:]) {
		return nil, cerrors.NewLayoutError("decode_distributor", "account is not a candy machine")
	}

	var d Distributor
	if err := borsh.Deserialize(&d, data[8:]); err != nil {
		return nil, cerrors.WrapCandyError(err, cerrors.ErrCodeLayout, "decode_distributor", "failed to decode candy machine")
	}
	return &d, nil
}

// IsLive reports whether minting is open at now. A distributor without a
// go-live date is never live.
func (d *Distributor) IsLive(now time.Time) bool {
	if d.Data.GoLiveDate == nil {
		return false
	}
	return now.Unix() >= *d.Data.GoLiveDate
}

// Remaining is the number of items still mintable.
func (d *Distributor) Remaining() uint64 {
	if d.ItemsRedeemed >= d.Data.ItemsAvailable {
		return 0
	}
	return d.Data.ItemsAvailable - d.ItemsRedeemed
}

// PaysInToken reports whether the price is charged in a custom token mint.
func (d *Distributor) PaysInToken() bool {
	return d.TokenMint != nil
}

// GoLiveTime returns the go-live date as a time, or the zero time when unset.
func (d *Distributor) GoLiveTime() time.Time {
	if d.Data.GoLiveDate == nil {
		return time.Time{}
	}
	return time.Unix(*d.Data.GoLiveDate, 0).UTC()
}
