package orchestrator

import "github.com/gagliardetto/solana-go"

// Payment selects how a distributor charges for an item. It is either
// PaymentNative or PaymentCustomMint.
type Payment interface {
	isPayment()
}

// PaymentNative charges the price in lamports, paid into the operator wallet.
type PaymentNative struct{}

// PaymentCustomMint charges in a token mint created alongside the
// distributor. Payments land in the operator wallet's associated account.
type PaymentCustomMint struct {
	// Mint is the keypair of the new payment mint; generated when empty.
	Mint     solana.PrivateKey
	Decimals uint8
}

func (PaymentNative) isPayment()     {}
func (PaymentCustomMint) isPayment() {}
