package trade

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Side of the book an order rests on.
type Side uint8

const (
	Bid Side = iota
	Ask
)

// OrderType mirrors the order types the on-chain program accepts.
type OrderType uint8

const (
	Limit OrderType = iota
	ImmediateOrCancel
	FillOrKill
	PostOnly
)

// TradeActions builds ready-to-sign transactions for order placement,
// cancellation and settlement. Instruction encoding lives with the
// implementer; nothing in this module depends on this capability — it
// exists so callers can plug an encoder in front of the submitter.
type TradeActions interface {
	PlaceOrder(ctx context.Context, market, owner solana.PublicKey, side Side, orderType OrderType, limitPrice, maxQuantity uint64) (*solana.Transaction, error)
	CancelOrder(ctx context.Context, market, owner solana.PublicKey, orderIndex uint64) (*solana.Transaction, error)
	SettleFunds(ctx context.Context, market, owner solana.PublicKey) (*solana.Transaction, error)
}
