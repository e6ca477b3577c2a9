package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for submission records.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveSubmission saves or updates a submission record, keyed by receipt id
func (s *Storage) SaveSubmission(record *SubmissionRecord) error {
	itemsJSON, _ := json.Marshal(record.Items)
	groupsJSON, _ := json.Marshal(record.Groups)

	query := `
	INSERT OR REPLACE INTO submissions
	(receipt_id, receipt_type, merchant, receipt_date, submitted_at,
	 subtotal, tax, total, item_count, group_count,
	 status, error_message, idempotency_key, items_json, groups_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		record.ReceiptID,
		record.ReceiptType,
		record.Merchant,
		record.ReceiptDate,
		record.SubmittedAt,
		record.Subtotal,
		record.Tax,
		record.Total,
		record.ItemCount,
		record.GroupCount,
		record.Status,
		record.ErrorMessage,
		record.IdempotencyKey,
		string(itemsJSON),
		string(groupsJSON),
	)

	return err
}

// GetSubmission retrieves a record by receipt id
func (s *Storage) GetSubmission(receiptID string) (*SubmissionRecord, error) {
	query := `
	SELECT id, receipt_id, receipt_type, merchant, receipt_date, submitted_at,
	       subtotal, tax, total, item_count, group_count,
	       status, error_message, idempotency_key, items_json, groups_json
	FROM submissions WHERE receipt_id = ?
	`

	record := &SubmissionRecord{}
	err := s.db.QueryRow(query, receiptID).Scan(
		&record.ID,
		&record.ReceiptID,
		&record.ReceiptType,
		&record.Merchant,
		&record.ReceiptDate,
		&record.SubmittedAt,
		&record.Subtotal,
		&record.Tax,
		&record.Total,
		&record.ItemCount,
		&record.GroupCount,
		&record.Status,
		&record.ErrorMessage,
		&record.IdempotencyKey,
		&record.ItemsJSON,
		&record.GroupsJSON,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	record.hydrateJSON()
	return record, nil
}

// ListSubmissions returns submissions matching the given filters, newest first
func (s *Storage) ListSubmissions(filters SubmissionFilters) (*SubmissionListResult, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	where := ""
	args := []interface{}{}
	if filters.Status != "" {
		where = " WHERE status = ?"
		args = append(args, filters.Status)
	}

	var totalCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM submissions"+where, args...).Scan(&totalCount); err != nil {
		return nil, err
	}

	query := `
	SELECT id, receipt_id, receipt_type, merchant, receipt_date, submitted_at,
	       subtotal, tax, total, item_count, group_count,
	       status, error_message, idempotency_key, items_json, groups_json
	FROM submissions` + where + `
	ORDER BY submitted_at DESC
	LIMIT ? OFFSET ?
	`
	args = append(args, limit, filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := &SubmissionListResult{
		Submissions: []*SubmissionRecord{},
		TotalCount:  totalCount,
		Limit:       limit,
		Offset:      filters.Offset,
	}

	for rows.Next() {
		record := &SubmissionRecord{}
		if err := rows.Scan(
			&record.ID,
			&record.ReceiptID,
			&record.ReceiptType,
			&record.Merchant,
			&record.ReceiptDate,
			&record.SubmittedAt,
			&record.Subtotal,
			&record.Tax,
			&record.Total,
			&record.ItemCount,
			&record.GroupCount,
			&record.Status,
			&record.ErrorMessage,
			&record.IdempotencyKey,
			&record.ItemsJSON,
			&record.GroupsJSON,
		); err != nil {
			return nil, err
		}
		record.hydrateJSON()
		result.Submissions = append(result.Submissions, record)
	}

	return result, rows.Err()
}

// GetStats returns aggregate statistics over successful submissions
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{CategoryTotals: make(map[string]float64)}

	err := s.db.QueryRow(`
	SELECT COUNT(*),
	       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN status = ? THEN total ELSE 0 END), 0)
	FROM submissions`,
		StatusSubmitted, StatusFailed, StatusSubmitted,
	).Scan(&stats.TotalSubmissions, &stats.SubmittedCount, &stats.FailedCount, &stats.TotalAmount)
	if err != nil {
		return nil, err
	}

	// Category totals live inside the groups JSON, so fold them in Go rather
	// than teaching SQLite to parse JSON.
	rows, err := s.db.Query("SELECT groups_json FROM submissions WHERE status = ?", StatusSubmitted)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var groupsJSON string
		if err := rows.Scan(&groupsJSON); err != nil {
			return nil, err
		}
		var groups []SubmittedGroup
		if err := json.Unmarshal([]byte(groupsJSON), &groups); err != nil {
			continue // tolerate old or malformed rows
		}
		for _, g := range groups {
			stats.CategoryTotals[g.Category] += g.Amount
		}
	}

	return stats, rows.Err()
}

// hydrateJSON decodes the JSON detail columns into structured fields
func (r *SubmissionRecord) hydrateJSON() {
	if r.ItemsJSON != "" {
		_ = json.Unmarshal([]byte(r.ItemsJSON), &r.Items)
	}
	if r.GroupsJSON != "" {
		_ = json.Unmarshal([]byte(r.GroupsJSON), &r.Groups)
	}
}
