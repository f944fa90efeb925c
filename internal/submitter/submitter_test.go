package submitter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/go-serum-market/internal/rpc"
	"github.com/iqbalbaharum/go-serum-market/internal/types"
)

type stubLedger struct {
	broadcastCalls int
	awaitCalls     int

	signature    solana.Signature
	broadcastErr error

	confirmation *rpc.ConfirmationResult
	awaitErr     error

	lastSkipPreflight bool
	lastCommitment    types.Commitment
}

func (s *stubLedger) Broadcast(ctx context.Context, transaction *solana.Transaction, signers []solana.PrivateKey, skipPreflight bool) (solana.Signature, error) {
	s.broadcastCalls++
	s.lastSkipPreflight = skipPreflight
	if s.broadcastErr != nil {
		return solana.Signature{}, s.broadcastErr
	}
	return s.signature, nil
}

func (s *stubLedger) AwaitConfirmation(ctx context.Context, signature solana.Signature, commitment types.Commitment) (*rpc.ConfirmationResult, error) {
	s.awaitCalls++
	s.lastCommitment = commitment
	if s.awaitErr != nil {
		return nil, s.awaitErr
	}
	return s.confirmation, nil
}

func testSignature(t *testing.T) solana.Signature {
	t.Helper()
	var sig solana.Signature
	for i := range sig {
		sig[i] = byte(i + 1)
	}
	return sig
}

func TestSubmitSuccess(t *testing.T) {
	sig := testSignature(t)
	ledger := &stubLedger{
		signature:    sig,
		confirmation: &rpc.ConfirmationResult{},
	}

	options := types.TransactionOptions{
		SkipPreflight: true,
		Commitment:    types.CommitmentConfirmed,
	}

	got, err := Submit(context.Background(), ledger, &solana.Transaction{}, nil, options)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if got != sig {
		t.Errorf("got signature %s, want %s", got, sig)
	}
	if ledger.broadcastCalls != 1 {
		t.Errorf("broadcast called %d times, want exactly 1", ledger.broadcastCalls)
	}
	if ledger.awaitCalls != 1 {
		t.Errorf("await called %d times, want exactly 1", ledger.awaitCalls)
	}
	if !ledger.lastSkipPreflight {
		t.Error("skipPreflight option was not honored")
	}
	if ledger.lastCommitment != types.CommitmentConfirmed {
		t.Errorf("commitment %q was not honored", ledger.lastCommitment)
	}
}

func TestSubmitExecutionError(t *testing.T) {
	payload := json.RawMessage(`{"InstructionError":[0,"Custom"]}`)
	ledger := &stubLedger{
		signature:    testSignature(t),
		confirmation: &rpc.ConfirmationResult{Err: payload},
	}

	_, err := Submit(context.Background(), ledger, &solana.Transaction{}, nil, types.DefaultTransactionOptions())
	if err == nil {
		t.Fatal("Submit returned nil error for a failed transaction")
	}

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("got %T, want *ExecutionError", err)
	}

	if string(execErr.Payload) != string(payload) {
		t.Errorf("payload was modified: got %s, want %s", execErr.Payload, payload)
	}
	if ledger.broadcastCalls != 1 || ledger.awaitCalls != 1 {
		t.Errorf("expected exactly one broadcast and one await, got %d and %d", ledger.broadcastCalls, ledger.awaitCalls)
	}
}

func TestSubmitBroadcastError(t *testing.T) {
	rejection := errors.New("Transaction simulation failed")
	ledger := &stubLedger{broadcastErr: rejection}

	_, err := Submit(context.Background(), ledger, &solana.Transaction{}, nil, types.DefaultTransactionOptions())
	if err == nil {
		t.Fatal("Submit returned nil error for a rejected transaction")
	}

	var broadcastErr *BroadcastError
	if !errors.As(err, &broadcastErr) {
		t.Fatalf("got %T, want *BroadcastError", err)
	}
	if !errors.Is(err, rejection) {
		t.Error("rejection cause was not preserved")
	}

	if ledger.awaitCalls != 0 {
		t.Errorf("await called %d times after a rejected broadcast, want 0", ledger.awaitCalls)
	}
	if ledger.broadcastCalls != 1 {
		t.Errorf("broadcast called %d times, want exactly 1 (no retries)", ledger.broadcastCalls)
	}
}
