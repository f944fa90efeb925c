package types

import "github.com/gagliardetto/solana-go"

// OrderbookIdentity holds the fixed addresses of a market's bid side, ask
// side and event queue. Fetched once at load time, never re-fetched.
type OrderbookIdentity struct {
	Bids       solana.PublicKey `json:"bids"`
	Asks       solana.PublicKey `json:"asks"`
	EventQueue solana.PublicKey `json:"eventQueue"`
}

// Market is an immutable identity snapshot of an on-chain market.
type Market struct {
	Address       solana.PublicKey  `json:"address"`
	ProgramID     solana.PublicKey  `json:"programId"`
	BaseMint      solana.PublicKey  `json:"baseMint"`
	QuoteMint     solana.PublicKey  `json:"quoteMint"`
	BaseDecimals  uint8             `json:"baseDecimals"`
	QuoteDecimals uint8             `json:"quoteDecimals"`
	Orderbook     OrderbookIdentity `json:"orderbook"`
}
