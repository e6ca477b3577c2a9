package dto

import (
	"time"

	"github.com/spendlens/receipt-review-backend/internal/domain/draft"
	"github.com/spendlens/receipt-review-backend/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ItemResponse is one draft line item.
type ItemResponse struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	TaxShare    string `json:"tax_share"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// DraftResponse is a snapshot of a review session's draft.
type DraftResponse struct {
	SessionID string         `json:"session_id"`
	Date      string         `json:"date"`
	Merchant  string         `json:"merchant,omitempty"`
	Items     []ItemResponse `json:"items"`
	Tax       string         `json:"tax"`
	Subtotal  float64        `json:"subtotal"`
	Total     float64        `json:"total"`
}

// NewDraftResponse converts a draft snapshot into its API shape.
func NewDraftResponse(sessionID string, d *draft.Draft) DraftResponse {
	resp := DraftResponse{
		SessionID: sessionID,
		Date:      d.Date,
		Merchant:  d.Merchant,
		Items:     make([]ItemResponse, 0, len(d.Items)),
		Tax:       d.Tax,
		Subtotal:  d.Subtotal,
		Total:     d.Total,
	}
	for _, item := range d.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ID:          item.ID,
			Amount:      item.Amount,
			TaxShare:    item.TaxShare,
			Category:    item.Category,
			Description: item.Description,
		})
	}
	return resp
}

// SubmittedGroupResponse is one aggregated expense sent to the ledger.
type SubmittedGroupResponse struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// SubmissionResponse represents a recorded submission.
type SubmissionResponse struct {
	ReceiptID    string                   `json:"receipt_id"`
	ReceiptType  string                   `json:"receipt_type"`
	Merchant     string                   `json:"merchant,omitempty"`
	ReceiptDate  string                   `json:"receipt_date"`
	SubmittedAt  string                   `json:"submitted_at"`
	Subtotal     float64                  `json:"subtotal"`
	Tax          float64                  `json:"tax"`
	Total        float64                  `json:"total"`
	ItemCount    int                      `json:"item_count"`
	GroupCount   int                      `json:"group_count"`
	Status       string                   `json:"status"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	Groups       []SubmittedGroupResponse `json:"groups,omitempty"`
}

// NewSubmissionResponse converts a storage record into its API shape.
func NewSubmissionResponse(record *storage.SubmissionRecord) SubmissionResponse {
	resp := SubmissionResponse{
		ReceiptID:    record.ReceiptID,
		ReceiptType:  record.ReceiptType,
		Merchant:     record.Merchant,
		ReceiptDate:  record.ReceiptDate,
		SubmittedAt:  record.SubmittedAt.UTC().Format(time.RFC3339),
		Subtotal:     record.Subtotal,
		Tax:          record.Tax,
		Total:        record.Total,
		ItemCount:    record.ItemCount,
		GroupCount:   record.GroupCount,
		Status:       record.Status,
		ErrorMessage: record.ErrorMessage,
	}
	for _, g := range record.Groups {
		resp.Groups = append(resp.Groups, SubmittedGroupResponse{
			Category:    g.Category,
			Amount:      g.Amount,
			Description: g.Description,
		})
	}
	return resp
}

// SubmissionListResponse is returned when listing submissions.
type SubmissionListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	TotalCount  int                  `json:"total_count"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

// StatsResponse is returned by the stats endpoint.
type StatsResponse struct {
	TotalSubmissions int                `json:"total_submissions"`
	SubmittedCount   int                `json:"submitted_count"`
	FailedCount      int                `json:"failed_count"`
	TotalAmount      float64            `json:"total_amount"`
	CategoryTotals   map[string]float64 `json:"category_totals"`
}

// CategoryResponse is one entry in the category vocabulary.
type CategoryResponse struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// CategoryListResponse is the full category vocabulary.
type CategoryListResponse struct {
	Expense []CategoryResponse `json:"expense"`
	Income  []CategoryResponse `json:"income"`
}
