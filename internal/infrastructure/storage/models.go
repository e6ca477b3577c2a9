package storage

import "time"

// Submission statuses
const (
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
)

// SubmissionRecord is the durable audit trail of one submit attempt. The
// draft itself is never persisted; only the outcome of sending it to the
// ledger backend is.
type SubmissionRecord struct {
	ID             int64     `json:"id"`
	ReceiptID      string    `json:"receipt_id"`
	ReceiptType    string    `json:"receipt_type"`
	Merchant       string    `json:"merchant"`
	ReceiptDate    string    `json:"receipt_date"`
	SubmittedAt    time.Time `json:"submitted_at"`
	Subtotal       float64   `json:"subtotal"`
	Tax            float64   `json:"tax"`
	Total          float64   `json:"total"`
	ItemCount      int       `json:"item_count"`
	GroupCount     int       `json:"group_count"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	IdempotencyKey string    `json:"idempotency_key"`

	// Detailed data stored as JSON columns
	Items      []SubmittedItem  `json:"items"`
	Groups     []SubmittedGroup `json:"groups"`
	ItemsJSON  string           `json:"-"`
	GroupsJSON string           `json:"-"`
}

// SubmittedItem is a line item as it stood at submit time.
type SubmittedItem struct {
	Amount      float64 `json:"amount"`
	TaxShare    float64 `json:"tax_share"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
}

// SubmittedGroup is one aggregated expense request sent to the ledger.
type SubmittedGroup struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// Stats holds aggregate statistics over recorded submissions.
type Stats struct {
	TotalSubmissions int                `json:"total_submissions"`
	SubmittedCount   int                `json:"submitted_count"`
	FailedCount      int                `json:"failed_count"`
	TotalAmount      float64            `json:"total_amount"`
	CategoryTotals   map[string]float64 `json:"category_totals"`
}

// SubmissionFilters defines filters for listing submissions
type SubmissionFilters struct {
	Status string // Filter by status (empty = all)
	Limit  int    // Max results (0 = default 50)
	Offset int    // Pagination offset
}

// SubmissionListResult contains paginated submission results
type SubmissionListResult struct {
	Submissions []*SubmissionRecord `json:"submissions"`
	TotalCount  int                 `json:"total_count"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}
