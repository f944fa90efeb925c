package coder

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	mintSize         = 82
	tokenAccountSize = 165
)

// Mint is the SPL token mint layout. Only Decimals matters to the
// market view; the rest rides along for free.
type Mint struct {
	MintAuthorityOption   uint32
	MintAuthority         solana.PublicKey
	Supply                uint64
	Decimals              uint8
	IsInitialized         bool
	FreezeAuthorityOption uint32
	FreezeAuthority       solana.PublicKey
}

// TokenAccount is the SPL token account layout.
type TokenAccount struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       uint32
	Delegate             solana.PublicKey
	State                uint8
	IsNativeOption       uint32
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption uint32
	CloseAuthority       solana.PublicKey
}

func DecodeMint(data []byte) (Mint, error) {
	var mint Mint

	if len(data) < mintSize {
		return mint, fmt.Errorf("mint account too short: %d bytes, want %d", len(data), mintSize)
	}

	if err := bin.NewBinDecoder(data).Decode(&mint); err != nil {
		return mint, fmt.Errorf("failed to decode mint account: %w", err)
	}

	return mint, nil
}

func DecodeTokenAccount(data []byte) (TokenAccount, error) {
	var account TokenAccount

	if len(data) < tokenAccountSize {
		return account, fmt.Errorf("token account too short: %d bytes, want %d", len(data), tokenAccountSize)
	}

	if err := bin.NewBinDecoder(data).Decode(&account); err != nil {
		return account, fmt.Errorf("failed to decode token account: %w", err)
	}

	return account, nil
}
