// Package aggregator collapses an edited receipt draft into expense-creation
// requests, one per distinct category. Two grocery items and one household
// item produce exactly two ledger records, not three; that keeps the user's
// ledger readable and is deliberate.
package aggregator

import (
	"errors"
	"math"
	"strings"

	"github.com/spendlens/receipt-review-backend/internal/domain/category"
	"github.com/spendlens/receipt-review-backend/internal/domain/draft"
)

// ErrNoItems is returned when a draft with no line items is submitted.
var ErrNoItems = errors.New("receipt has no items")

// ExpenseCreate is the request shape the ledger backend accepts for a single
// expense record.
type ExpenseCreate struct {
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

type group struct {
	name         string
	amount       float64
	descriptions []string
}

// AggregateByCategory groups the draft's items by resolved category name and
// emits one ExpenseCreate per group, in first-appearance order.
//
// Each group's amount is the rounded sum of item amount plus tax share, so
// the total across all requests conserves the draft's total up to a cent per
// group. Descriptions within a group are joined with ", "; a group with no
// descriptions gets a null description. Items with an empty or unmapped
// category land in the default category.
func AggregateByCategory(d *draft.Draft) ([]ExpenseCreate, error) {
	if len(d.Items) == 0 {
		return nil, ErrNoItems
	}

	var order []string
	groups := make(map[string]*group)

	for _, item := range d.Items {
		name := category.Resolve(item.Category)
		g, ok := groups[name]
		if !ok {
			g = &group{name: name}
			groups[name] = g
			order = append(order, name)
		}

		g.amount += draft.ParseAmount(item.Amount) + draft.ParseAmount(item.TaxShare)
		if desc := strings.TrimSpace(item.Description); desc != "" {
			g.descriptions = append(g.descriptions, desc)
		}
	}

	requests := make([]ExpenseCreate, 0, len(order))
	for _, name := range order {
		g := groups[name]

		req := ExpenseCreate{
			Amount:   round2(g.amount),
			Date:     d.Date,
			Category: ptr(g.name),
		}
		if len(g.descriptions) > 0 {
			req.Description = ptr(strings.Join(g.descriptions, ", "))
		}

		requests = append(requests, req)
	}

	return requests, nil
}

func ptr(s string) *string {
	return &s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
