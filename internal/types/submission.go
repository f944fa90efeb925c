package types

// Submission is a row in the submission log: one entry per transaction
// handed to the ledger, with the raw execution error payload when the
// on-chain program reported failure.
type Submission struct {
	Signature  string `json:"signature"`
	Market     string `json:"market"`
	Commitment string `json:"commitment"`
	Status     string `json:"status"`
	ErrPayload string `json:"err_payload"`
	Timestamp  int64  `json:"timestamp"`
}

const (
	SubmissionConfirmed = "CONFIRMED"
	SubmissionFailed    = "FAILED"
	SubmissionRejected  = "REJECTED"
)
