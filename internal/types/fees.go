package types

import "github.com/gagliardetto/solana-go"

// FeeDiscountKey is a point-in-time snapshot of a discount token account
// and the fee tier its balance resolves to. Recomputed on every lookup.
type FeeDiscountKey struct {
	TokenAccount solana.PublicKey `json:"tokenAccount"`
	Mint         solana.PublicKey `json:"mint"`
	Balance      uint64           `json:"balance"`
	FeeTier      int              `json:"feeTier"`
}
