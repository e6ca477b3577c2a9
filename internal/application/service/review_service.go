// Package service orchestrates the receipt review flow: scan results become
// editable drafts held in review sessions, edits run through the draft
// reducer, and submission aggregates the draft into ledger expense records.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spendlens/receipt-review-backend/internal/domain/aggregator"
	"github.com/spendlens/receipt-review-backend/internal/domain/draft"
	"github.com/spendlens/receipt-review-backend/internal/infrastructure/storage"
	"github.com/spendlens/receipt-review-backend/internal/scan"
)

// Session lifetime defaults
const (
	// DefaultIdleTTL is how long a session may sit without edits before the
	// background sweep discards it. Abandoned review screens should not pin
	// drafts forever.
	DefaultIdleTTL = 30 * time.Minute

	cleanupInterval = time.Minute
)

// Service errors
var (
	ErrSessionNotFound = errors.New("review session not found")
	ErrMissingDate     = errors.New("receipt date is required")
	ErrNotItemized     = errors.New("receipt is not an itemized store receipt")
)

// ExpenseSubmitter is the ledger backend surface the service needs.
type ExpenseSubmitter interface {
	CreateExpense(ctx context.Context, expense aggregator.ExpenseCreate, idempotencyKey string) error
	CreateExpenses(ctx context.Context, expenses []aggregator.ExpenseCreate, idempotencyKey string) error
}

// ReceiptScanner is the OCR backend surface the service needs.
type ReceiptScanner interface {
	Scan(ctx context.Context, imageBase64, language string) (*scan.Result, error)
}

// Session is one in-flight review. It owns exactly one draft; all access
// goes through the service, which serializes edits per session.
type Session struct {
	ID             string
	ReceiptID      string
	IdempotencyKey string
	CreatedAt      time.Time
	LastActivity   time.Time
	Draft          *draft.Draft

	mu sync.Mutex
}

// ReviewService manages review sessions and submission.
type ReviewService struct {
	ledger  ExpenseSubmitter
	scanner ReceiptScanner
	store   storage.Repository
	logger  *slog.Logger
	idleTTL time.Duration
	now     func() time.Time

	sessions      map[string]*Session
	sessionsMutex sync.RWMutex

	cleanupStop chan struct{}
	cleanupDone chan struct{}
}

// NewReviewService creates a review service.
func NewReviewService(
	ledger ExpenseSubmitter,
	scanner ReceiptScanner,
	store storage.Repository,
	logger *slog.Logger,
	idleTTL time.Duration,
) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &ReviewService{
		ledger:   ledger,
		scanner:  scanner,
		store:    store,
		logger:   logger,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// ScanReceipt runs OCR on a base64-encoded image and validates the envelope.
// There is no automatic retry; a failed scan is re-issued by the caller.
func (s *ReviewService) ScanReceipt(ctx context.Context, imageBase64, language string) (*scan.Result, error) {
	result, err := s.scanner.Scan(ctx, imageBase64, language)
	if err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// StartReview creates a review session for an itemized store receipt.
// Utility receipts have no itemization to review; they take SubmitUtility.
func (s *ReviewService) StartReview(result *scan.Result) (*Session, *draft.Draft, error) {
	if err := result.Validate(); err != nil {
		return nil, nil, err
	}
	if !result.Data.IsStore() {
		return nil, nil, ErrNotItemized
	}

	now := s.now()
	session := &Session{
		ID:        uuid.NewString(),
		ReceiptID: uuid.NewString(),
		// One key per session: a retry after a failed submit reuses it, so
		// the ledger can dedupe a double-tap or a replayed batch.
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      now,
		LastActivity:   now,
		Draft:          scan.BuildDraft(result.Data, now),
	}

	s.sessionsMutex.Lock()
	s.sessions[session.ID] = session
	s.sessionsMutex.Unlock()

	s.logger.Info("review session started",
		"session_id", session.ID,
		"merchant", session.Draft.Merchant,
		"items", len(session.Draft.Items),
		"tax", session.Draft.Tax,
	)

	return session, snapshotDraft(session.Draft), nil
}

// GetDraft returns a copy of the session's current draft.
func (s *ReviewService) GetDraft(sessionID string) (*draft.Draft, error) {
	return s.withSession(sessionID, func(*Session, *draft.Draft) error { return nil })
}

// AddItem appends a fresh zero-amount item to the session's draft.
func (s *ReviewService) AddItem(sessionID string) (*draft.Draft, error) {
	return s.withSession(sessionID, func(_ *Session, d *draft.Draft) error {
		d.AddItem()
		return nil
	})
}

// RemoveItem removes an item and redistributes the current tax over the
// remaining items. Unknown item ids are a no-op.
func (s *ReviewService) RemoveItem(sessionID, itemID string) (*draft.Draft, error) {
	return s.withSession(sessionID, func(_ *Session, d *draft.Draft) error {
		d.RemoveItem(itemID)
		return nil
	})
}

// UpdateItem applies a single-field edit to one item.
func (s *ReviewService) UpdateItem(sessionID, itemID, field, value string) (*draft.Draft, error) {
	return s.withSession(sessionID, func(_ *Session, d *draft.Draft) error {
		return d.UpdateItem(itemID, field, value)
	})
}

// UpdateTax replaces the draft's tax total and redistributes all shares.
func (s *ReviewService) UpdateTax(sessionID, value string) (*draft.Draft, error) {
	return s.withSession(sessionID, func(_ *Session, d *draft.Draft) error {
		d.UpdateTax(value)
		return nil
	})
}

// Submit aggregates the draft by category and sends the batch to the ledger.
// On success the session is destroyed and the outcome recorded. On failure
// the session survives untouched so the user can correct and retry with the
// same idempotency key.
func (s *ReviewService) Submit(ctx context.Context, sessionID string) (*storage.SubmissionRecord, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	d := session.Draft
	if d.Date == "" {
		return nil, ErrMissingDate
	}

	expenses, err := aggregator.AggregateByCategory(d)
	if err != nil {
		return nil, err
	}

	record := s.buildRecord(session, d, expenses)

	if err := s.ledger.CreateExpenses(ctx, expenses, session.IdempotencyKey); err != nil {
		record.Status = storage.StatusFailed
		record.ErrorMessage = err.Error()
		s.saveRecord(record)
		s.logger.Warn("submission failed, draft preserved",
			"session_id", session.ID, "error", err)
		return nil, fmt.Errorf("submitting expenses: %w", err)
	}

	record.Status = storage.StatusSubmitted
	s.saveRecord(record)

	s.sessionsMutex.Lock()
	delete(s.sessions, session.ID)
	s.sessionsMutex.Unlock()

	s.logger.Info("receipt submitted",
		"receipt_id", record.ReceiptID,
		"groups", record.GroupCount,
		"total", record.Total,
	)

	return record, nil
}

// SubmitUtility submits a single-amount (non-itemized) receipt directly.
// No session, no tax distribution.
func (s *ReviewService) SubmitUtility(ctx context.Context, receipt *scan.Receipt) (*storage.SubmissionRecord, error) {
	now := s.now()
	expense := scan.BuildUtilityExpense(receipt, now)

	record := &storage.SubmissionRecord{
		ReceiptID:      uuid.NewString(),
		ReceiptType:    scan.TypeUtility,
		Merchant:       receipt.Merchant,
		ReceiptDate:    expense.Date,
		SubmittedAt:    now,
		Subtotal:       expense.Amount,
		Total:          expense.Amount,
		ItemCount:      1,
		GroupCount:     1,
		IdempotencyKey: uuid.NewString(),
		Groups:         []storage.SubmittedGroup{groupFromExpense(expense)},
	}

	if err := s.ledger.CreateExpense(ctx, expense, record.IdempotencyKey); err != nil {
		record.Status = storage.StatusFailed
		record.ErrorMessage = err.Error()
		s.saveRecord(record)
		return nil, fmt.Errorf("submitting expense: %w", err)
	}

	record.Status = storage.StatusSubmitted
	s.saveRecord(record)
	return record, nil
}

// Discard drops a session without submitting. Unknown ids are a no-op;
// navigating away twice is not an error.
func (s *ReviewService) Discard(sessionID string) {
	s.sessionsMutex.Lock()
	delete(s.sessions, sessionID)
	s.sessionsMutex.Unlock()
}

// SessionCount returns the number of live sessions.
func (s *ReviewService) SessionCount() int {
	s.sessionsMutex.RLock()
	defer s.sessionsMutex.RUnlock()
	return len(s.sessions)
}

// StartCleanup launches the background sweep that discards idle sessions.
func (s *ReviewService) StartCleanup() {
	s.cleanupStop = make(chan struct{})
	s.cleanupDone = make(chan struct{})

	go func() {
		defer close(s.cleanupDone)
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweepIdleSessions()
			case <-s.cleanupStop:
				return
			}
		}
	}()
}

// StopCleanup stops the background sweep and waits for it to exit.
func (s *ReviewService) StopCleanup() {
	if s.cleanupStop == nil {
		return
	}
	close(s.cleanupStop)
	<-s.cleanupDone
	s.cleanupStop = nil
}

func (s *ReviewService) sweepIdleSessions() {
	cutoff := s.now().Add(-s.idleTTL)

	s.sessionsMutex.Lock()
	defer s.sessionsMutex.Unlock()

	for id, session := range s.sessions {
		if session.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			s.logger.Info("discarded idle review session", "session_id", id)
		}
	}
}

func (s *ReviewService) getSession(sessionID string) (*Session, error) {
	s.sessionsMutex.RLock()
	session, ok := s.sessions[sessionID]
	s.sessionsMutex.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// withSession runs fn against the session's draft under the session lock and
// returns a snapshot of the (possibly mutated) draft.
func (s *ReviewService) withSession(sessionID string, fn func(*Session, *draft.Draft) error) (*draft.Draft, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if err := fn(session, session.Draft); err != nil {
		return nil, err
	}
	session.LastActivity = s.now()
	return snapshotDraft(session.Draft), nil
}

func (s *ReviewService) buildRecord(session *Session, d *draft.Draft, expenses []aggregator.ExpenseCreate) *storage.SubmissionRecord {
	record := &storage.SubmissionRecord{
		ReceiptID:      session.ReceiptID,
		ReceiptType:    scan.TypeStore,
		Merchant:       d.Merchant,
		ReceiptDate:    d.Date,
		SubmittedAt:    s.now(),
		Subtotal:       d.Subtotal,
		Tax:            draft.ParseAmount(d.Tax),
		Total:          d.Total,
		ItemCount:      len(d.Items),
		GroupCount:     len(expenses),
		IdempotencyKey: session.IdempotencyKey,
	}

	for _, item := range d.Items {
		record.Items = append(record.Items, storage.SubmittedItem{
			Amount:      draft.ParseAmount(item.Amount),
			TaxShare:    draft.ParseAmount(item.TaxShare),
			Category:    item.Category,
			Description: item.Description,
		})
	}
	for _, expense := range expenses {
		record.Groups = append(record.Groups, groupFromExpense(expense))
	}

	return record
}

// saveRecord persists a submission outcome. Storage failures are logged, not
// propagated; the submission itself already succeeded or failed on its own.
func (s *ReviewService) saveRecord(record *storage.SubmissionRecord) {
	if err := s.store.SaveSubmission(record); err != nil {
		s.logger.Error("failed to record submission",
			"receipt_id", record.ReceiptID, "error", err)
	}
}

func groupFromExpense(expense aggregator.ExpenseCreate) storage.SubmittedGroup {
	group := storage.SubmittedGroup{Amount: expense.Amount}
	if expense.Category != nil {
		group.Category = *expense.Category
	}
	if expense.Description != nil {
		group.Description = *expense.Description
	}
	return group
}

// snapshotDraft deep-copies a draft so callers never share the live item
// slice with a concurrently edited session.
func snapshotDraft(d *draft.Draft) *draft.Draft {
	copied := *d
	copied.Items = make([]draft.Item, len(d.Items))
	copy(copied.Items, d.Items)
	return &copied
}
