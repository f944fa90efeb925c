package coder

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const marketStateV3Size = 388

// MarketStateLayoutV3 mirrors the on-chain market account byte for byte,
// little-endian. Decoded with a struct overlay; every field is fixed size.
type MarketStateLayoutV3 struct {
	SerumTag               [5]byte
	AccountFlags           uint64
	OwnAddress             solana.PublicKey
	VaultSignerNonce       uint64
	BaseMint               solana.PublicKey
	QuoteMint              solana.PublicKey
	BaseVault              solana.PublicKey
	BaseDepositsTotal      uint64
	BaseFeesAccrued        uint64
	QuoteVault             solana.PublicKey
	QuoteDepositsTotal     uint64
	QuoteFeesAccrued       uint64
	QuoteDustThreshold     uint64
	RequestQueue           solana.PublicKey
	EventQueue             solana.PublicKey
	Bids                   solana.PublicKey
	Asks                   solana.PublicKey
	BaseLotSize            uint64
	QuoteLotSize           uint64
	FeeRateBps             uint64
	ReferrerRebatesAccrued uint64
	EndPadding             [7]byte
}

type MarketCoder struct{}

func NewMarketCoder() *MarketCoder {
	return &MarketCoder{}
}

// DecodeMarket decodes a raw market account into its V3 layout.
func (coder *MarketCoder) DecodeMarket(data []byte) (MarketStateLayoutV3, error) {
	var state MarketStateLayoutV3

	if len(data) < marketStateV3Size {
		return state, fmt.Errorf("market account too short: %d bytes, want %d", len(data), marketStateV3Size)
	}

	buf := bytes.NewReader(data)
	if err := binary.Read(buf, binary.LittleEndian, &state); err != nil {
		return state, fmt.Errorf("failed to decode market account: %w", err)
	}

	if string(state.SerumTag[:]) != "serum" {
		return state, fmt.Errorf("account is not a serum market: bad head tag %q", state.SerumTag)
	}

	return state, nil
}
