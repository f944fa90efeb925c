package storage

import "errors"

// Error description
const (
	ErrExecuteStatement = "failed to execute statement"
	ErrExecuteQuery     = "failed to execute query"
	ErrScanData         = "failed to scan data"
	ErrRetrieveRows     = "failed to retrieve rows affected"
)

var (
	ErrMarketNotCached    = errors.New("market snapshot not cached")
	ErrSubmissionNotFound = errors.New("submission not found")
)
