// Package scan defines the OCR scan-result contract and converts scan data
// into review drafts or expense requests.
package scan

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Receipt types the scanner can emit.
const (
	TypeStore   = "store"
	TypeUtility = "utility"
)

// Extraction errors surfaced to the caller; the review engine is never
// initialized when scanning failed.
var (
	ErrScanFailed = errors.New("receipt scan failed")
	ErrNoData     = errors.New("scan result contains no receipt data")
)

// Result is the envelope the OCR backend returns.
type Result struct {
	Success bool     `json:"success"`
	Data    *Receipt `json:"data,omitempty"`
	Detail  string   `json:"detail,omitempty"`
}

// Receipt is the extracted receipt payload. Store receipts carry line items
// and a tax total; utility receipts carry a single amount.
type Receipt struct {
	ReceiptType string     `json:"receipt_type"`
	Date        string     `json:"date"`
	Merchant    string     `json:"merchant"`
	Tax         Number     `json:"tax"`
	Total       Number     `json:"total"`
	Items       []LineItem `json:"items,omitempty"`

	// Utility-receipt fields.
	Amount      Number `json:"amount,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// LineItem is one extracted store-receipt line.
type LineItem struct {
	Amount      Number `json:"amount"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate checks the envelope. A failed scan reports the backend's detail
// message when one was given.
func (r *Result) Validate() error {
	if !r.Success {
		if r.Detail != "" {
			return errors.Join(ErrScanFailed, errors.New(r.Detail))
		}
		return ErrScanFailed
	}
	if r.Data == nil {
		return ErrNoData
	}
	return nil
}

// IsStore reports whether the receipt takes the itemized review path.
func (r *Receipt) IsStore() bool {
	return r.ReceiptType == TypeStore
}

// Number is a money value that decodes leniently: JSON numbers, numeric
// strings, null, and garbage all decode without error, with anything
// unusable counting as zero. OCR output is not trusted to be well-typed.
type Number float64

// UnmarshalJSON implements lenient decoding for Number.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}

	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

// ParseResult decodes a scan-result JSON payload.
func ParseResult(data []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
