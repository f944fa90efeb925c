package storage

import (
	"database/sql"
	"fmt"

	"github.com/iqbalbaharum/go-serum-market/internal/types"
)

type SubmissionStorage struct {
	client *sql.DB
}

func NewSubmissionStorage(db *sql.DB) *SubmissionStorage {
	return &SubmissionStorage{client: db}
}

func (s *SubmissionStorage) SetSubmission(submission *types.Submission) error {
	query := `
			INSERT INTO submissions (signature, market, commitment, status, err_payload, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
		`

	_, err := s.client.Exec(
		query,
		submission.Signature,
		submission.Market,
		submission.Commitment,
		submission.Status,
		submission.ErrPayload,
		submission.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

// Search lists logged submissions, newest first. An empty market
// filter returns everything; limit 0 means no limit.
func (s *SubmissionStorage) Search(market string, limit int) ([]types.Submission, error) {
	query := `SELECT signature, market, commitment, status, err_payload, timestamp FROM submissions`
	var args []any

	if market != "" {
		query += ` WHERE market = ?`
		args = append(args, market)
	}

	query += ` ORDER BY timestamp DESC`

	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.client.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrExecuteQuery, err)
	}
	defer rows.Close()

	var submissions []types.Submission
	for rows.Next() {
		var submission types.Submission
		if err := rows.Scan(
			&submission.Signature,
			&submission.Market,
			&submission.Commitment,
			&submission.Status,
			&submission.ErrPayload,
			&submission.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrScanData, err)
		}
		submissions = append(submissions, submission)
	}

	return submissions, rows.Err()
}

func (s *SubmissionStorage) DeleteAll() error {
	if _, err := s.client.Exec(`DELETE FROM submissions`); err != nil {
		return fmt.Errorf("%s: %w", ErrExecuteStatement, err)
	}

	return nil
}
