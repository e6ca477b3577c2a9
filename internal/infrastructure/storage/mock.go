package storage

import (
	"encoding/json"
	"sort"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	records map[string]*SubmissionRecord
	nextID  int64

	// Hooks for test assertions
	SaveSubmissionCalled bool
	LastSavedRecord      *SubmissionRecord

	// Error injection for testing error paths
	SaveSubmissionErr error
	GetSubmissionErr  error
	ListErr           error
	StatsErr          error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		records: make(map[string]*SubmissionRecord),
		nextID:  1,
	}
}

// AddRecord seeds the mock with a record, bypassing the save hooks
func (m *MockRepository) AddRecord(record *SubmissionRecord) {
	if record.ID == 0 {
		record.ID = m.nextID
		m.nextID++
	}
	m.records[record.ReceiptID] = record
}

// SaveSubmission saves or updates a submission record
func (m *MockRepository) SaveSubmission(record *SubmissionRecord) error {
	m.SaveSubmissionCalled = true
	m.LastSavedRecord = record
	if m.SaveSubmissionErr != nil {
		return m.SaveSubmissionErr
	}
	if existing, ok := m.records[record.ReceiptID]; ok {
		record.ID = existing.ID
	} else {
		record.ID = m.nextID
		m.nextID++
	}
	itemsJSON, _ := json.Marshal(record.Items)
	groupsJSON, _ := json.Marshal(record.Groups)
	record.ItemsJSON = string(itemsJSON)
	record.GroupsJSON = string(groupsJSON)
	m.records[record.ReceiptID] = record
	return nil
}

// GetSubmission retrieves a record by receipt id
func (m *MockRepository) GetSubmission(receiptID string) (*SubmissionRecord, error) {
	if m.GetSubmissionErr != nil {
		return nil, m.GetSubmissionErr
	}
	record, ok := m.records[receiptID]
	if !ok {
		return nil, ErrNotFound
	}
	return record, nil
}

// ListSubmissions returns submissions matching the filters, newest first
func (m *MockRepository) ListSubmissions(filters SubmissionFilters) (*SubmissionListResult, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	matched := make([]*SubmissionRecord, 0, len(m.records))
	for _, record := range m.records {
		if filters.Status != "" && record.Status != filters.Status {
			continue
		}
		matched = append(matched, record)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	total := len(matched)
	start := filters.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &SubmissionListResult{
		Submissions: matched[start:end],
		TotalCount:  total,
		Limit:       limit,
		Offset:      filters.Offset,
	}, nil
}

// GetStats returns aggregate statistics over successful submissions
func (m *MockRepository) GetStats() (*Stats, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}

	stats := &Stats{CategoryTotals: make(map[string]float64)}
	for _, record := range m.records {
		stats.TotalSubmissions++
		switch record.Status {
		case StatusSubmitted:
			stats.SubmittedCount++
			stats.TotalAmount += record.Total
			for _, g := range record.Groups {
				stats.CategoryTotals[g.Category] += g.Amount
			}
		case StatusFailed:
			stats.FailedCount++
		}
	}
	return stats, nil
}

// Close is a no-op for the mock
func (m *MockRepository) Close() error {
	return nil
}
