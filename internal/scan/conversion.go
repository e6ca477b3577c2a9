package scan

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spendlens/receipt-review-backend/internal/domain/aggregator"
	"github.com/spendlens/receipt-review-backend/internal/domain/category"
	"github.com/spendlens/receipt-review-backend/internal/domain/draft"
)

// dateFormats are the alternate layouts OCR output shows up in, tried in
// order after the canonical YYYY-MM-DD.
var dateFormats = []string{
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// NormalizeDate coerces an extracted date to YYYY-MM-DD. Missing or
// unparsable dates default to today, matching the review screen's prefill.
func NormalizeDate(s string, now time.Time) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Format("2006-01-02")
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d.Format("2006-01-02")
	}
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return now.Format("2006-01-02")
}

// BuildDraft turns a store receipt into an editable draft. Extracted
// category names are mapped back to category keys; names the vocabulary
// does not know become uncategorized and resolve to the default category at
// submit time. Tax shares are distributed immediately so the draft is
// consistent before the first edit.
func BuildDraft(r *Receipt, now time.Time) *draft.Draft {
	d := draft.New(NormalizeDate(r.Date, now), strings.TrimSpace(r.Merchant))
	d.Tax = formatNumber(r.Tax)

	for _, line := range r.Items {
		d.Items = append(d.Items, draft.Item{
			ID:          uuid.NewString(),
			Amount:      formatNumber(line.Amount),
			TaxShare:    "0",
			Category:    category.KeyForName(strings.TrimSpace(line.Category)),
			Description: strings.TrimSpace(line.Description),
		})
	}

	d.Recalculate()
	return d
}

// BuildUtilityExpense builds the single expense request for a non-itemized
// receipt. No tax distribution applies; the extracted amount is used as-is,
// and the merchant stands in when no description was extracted.
func BuildUtilityExpense(r *Receipt, now time.Time) aggregator.ExpenseCreate {
	req := aggregator.ExpenseCreate{
		Amount: float64(r.Amount),
		Date:   NormalizeDate(r.Date, now),
	}

	// Unknown extracted categories stay null rather than defaulting; the
	// default-category fallback belongs to the itemized path only.
	if name := strings.TrimSpace(r.Category); name != "" {
		if key := category.KeyForName(name); key != "" {
			resolved := category.Resolve(key)
			req.Category = &resolved
		}
	}

	desc := strings.TrimSpace(r.Description)
	if desc == "" {
		desc = strings.TrimSpace(r.Merchant)
	}
	if desc != "" {
		req.Description = &desc
	}

	return req
}

func formatNumber(n Number) string {
	if n <= 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(n), 'f', 2, 64)
}
