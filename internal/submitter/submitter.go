package submitter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/go-serum-market/internal/rpc"
	"github.com/iqbalbaharum/go-serum-market/internal/types"
)

// Ledger is the slice of the transport needed to submit: one broadcast,
// one confirmation wait.
type Ledger interface {
	Broadcast(ctx context.Context, transaction *solana.Transaction, signers []solana.PrivateKey, skipPreflight bool) (solana.Signature, error)
	AwaitConfirmation(ctx context.Context, signature solana.Signature, commitment types.Commitment) (*rpc.ConfirmationResult, error)
}

// BroadcastError means the ledger rejected the transaction before
// inclusion.
type BroadcastError struct {
	Err error
}

func (e *BroadcastError) Error() string {
	return fmt.Sprintf("transaction rejected before inclusion: %v", e.Err)
}

func (e *BroadcastError) Unwrap() error {
	return e.Err
}

// ExecutionError means the ledger included the transaction but the
// on-chain program reported failure. Payload is the ledger's error
// structure verbatim; interpreting program-specific codes is the
// caller's job.
type ExecutionError struct {
	Signature solana.Signature
	Payload   json.RawMessage
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("transaction %s failed on-chain: %s", e.Signature, e.Payload)
}

// Submit broadcasts the signed transaction and blocks until the ledger
// confirms it at the configured commitment. Exactly one broadcast and
// one confirmation wait per call; callers that need resubmission must
// call Submit again. Hidden retry loops risk double-submitting a
// funds-moving transaction.
//
// Cancelling the context mid-call leaves the outcome ambiguous: the
// broadcast may or may not have landed on the ledger.
func Submit(ctx context.Context, ledger Ledger, transaction *solana.Transaction, signers []solana.PrivateKey, options types.TransactionOptions) (solana.Signature, error) {
	signature, err := ledger.Broadcast(ctx, transaction, signers, options.SkipPreflight)
	if err != nil {
		return solana.Signature{}, &BroadcastError{Err: err}
	}

	confirmation, err := ledger.AwaitConfirmation(ctx, signature, options.Commitment)
	if err != nil {
		return signature, err
	}

	if len(confirmation.Err) > 0 {
		return signature, &ExecutionError{
			Signature: signature,
			Payload:   confirmation.Err,
		}
	}

	return signature, nil
}
