package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Repository defines the complete storage interface.
// This interface allows swapping implementations and makes testing with
// mocks straightforward.
type Repository interface {
	// SaveSubmission saves or updates a submission record, keyed by receipt id
	SaveSubmission(record *SubmissionRecord) error

	// GetSubmission retrieves a record by receipt id
	GetSubmission(receiptID string) (*SubmissionRecord, error)

	// ListSubmissions returns submissions matching the given filters,
	// newest first, with pagination
	ListSubmissions(filters SubmissionFilters) (*SubmissionListResult, error)

	// GetStats returns aggregate statistics over successful submissions
	GetStats() (*Stats, error)

	Close() error
}
