package dto

import "github.com/spendlens/receipt-review-backend/internal/scan"

// StartReviewRequest starts a review session. Either an already-parsed scan
// result is supplied, or a base64 image the server should scan first.
type StartReviewRequest struct {
	ImageBase64 string       `json:"image_base64,omitempty"`
	Language    string       `json:"language,omitempty"`
	ScanResult  *scan.Result `json:"scan_result,omitempty"`
}

// UpdateItemRequest applies a single-field edit to one draft item.
// Field is one of "amount", "tax_share", "category", "description".
type UpdateItemRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// UpdateTaxRequest replaces the draft's tax total.
type UpdateTaxRequest struct {
	Tax string `json:"tax"`
}

// SubmitUtilityRequest submits a non-itemized receipt directly.
type SubmitUtilityRequest struct {
	Receipt *scan.Receipt `json:"receipt"`
}
