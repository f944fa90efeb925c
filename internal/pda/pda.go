package pda

import (
	"crypto/sha256"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrDerivationExhausted is returned when every bump seed from 255 down
// to 0 produced an on-curve digest. Practically unreachable, but the
// search space is finite so it has to be modeled.
var ErrDerivationExhausted = errors.New("pda: exhausted all bump seeds without finding an off-curve address")

const derivationSuffix = "ProgramDerivedAddress"

// Derive computes the program-derived address for the given seeds and
// owning program. Bump seeds are tried from 255 downward; the first
// digest that does not decode to a valid ed25519 curve point is the
// derived address. Pure function: identical inputs always yield the
// identical (address, bump) pair.
func Derive(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{uint8(bump)})
		h.Write(programID[:])
		h.Write([]byte(derivationSuffix))

		var candidate solana.PublicKey
		copy(candidate[:], h.Sum(nil))

		// On-curve digests are skippable: they would collide with a
		// real signable key.
		if !candidate.IsOnCurve() {
			return candidate, uint8(bump), nil
		}
	}

	return solana.PublicKey{}, 0, ErrDerivationExhausted
}

// AssociatedTokenAddress derives the canonical token account holding
// owner's balance of mint, owned by the associated-token program.
func AssociatedTokenAddress(owner, mint, tokenProgramID, associatedTokenProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{
		owner[:],
		tokenProgramID[:],
		mint[:],
	}
	return Derive(seeds, associatedTokenProgramID)
}

// OpenOrdersAddress derives the per-owner order-tracking account for a
// market, owned by the DEX program itself.
func OpenOrdersAddress(market, owner, dexProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{
		market[:],
		owner[:],
	}
	return Derive(seeds, dexProgramID)
}
