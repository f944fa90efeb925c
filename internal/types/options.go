package types

// Commitment is the durability level the ledger must reach before a
// submitted transaction is considered final for the caller's purposes.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// Rank orders commitments from least to most durable. Unknown values
// rank below processed so a malformed status never satisfies a wait.
func (c Commitment) Rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}

// TransactionOptions are fixed at market construction and reused for
// every submission made through the handle.
type TransactionOptions struct {
	SkipPreflight bool       `json:"skipPreflight"`
	Commitment    Commitment `json:"commitment"`
}

func DefaultTransactionOptions() TransactionOptions {
	return TransactionOptions{
		SkipPreflight: false,
		Commitment:    CommitmentProcessed,
	}
}
