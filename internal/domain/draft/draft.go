// Package draft holds the in-memory editing state for a scanned store
// receipt: the ordered line items, the receipt's tax total, and the derived
// subtotal/total. Every mutation keeps the tax shares consistent by running a
// full pro-rata redistribution.
//
// Amounts are kept as the text the user typed. Numeric parsing is lenient:
// unparsable or negative input counts as zero and never fails an edit.
package draft

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/spendlens/receipt-review-backend/internal/domain/allocator"
)

// Editable item fields accepted by UpdateItem.
const (
	FieldAmount      = "amount"
	FieldTaxShare    = "tax_share"
	FieldCategory    = "category"
	FieldDescription = "description"
)

// ErrUnknownField is returned when UpdateItem is given a field name outside
// the editable set.
var ErrUnknownField = errors.New("unknown item field")

// Item is a single editable receipt line.
type Item struct {
	ID          string
	Amount      string
	TaxShare    string
	Category    string // category key, empty = uncategorized
	Description string
}

// Draft is the unsaved, in-memory representation of a store receipt under
// review. It lives only for the duration of a review session.
type Draft struct {
	Date     string
	Merchant string
	Items    []Item
	Tax      string
	Subtotal float64
	Total    float64
}

// New creates an empty draft for the given receipt date and merchant.
func New(date, merchant string) *Draft {
	return &Draft{Date: date, Merchant: merchant, Tax: "0"}
}

// AddItem appends a fresh zero-amount item and returns a copy of it.
func (d *Draft) AddItem() Item {
	item := Item{
		ID:       uuid.NewString(),
		Amount:   "0",
		TaxShare: "0",
	}
	d.Items = append(d.Items, item)
	d.Recalculate()
	return d.Items[len(d.Items)-1]
}

// RemoveItem deletes the item with the given id and redistributes the
// current tax over the remaining items. Unknown ids are a no-op.
func (d *Draft) RemoveItem(id string) {
	for i, item := range d.Items {
		if item.ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			d.Recalculate()
			return
		}
	}
}

// UpdateItem applies a single-field edit to the item with the given id.
// Unknown ids are a no-op. Amount edits trigger a full redistribution with
// the existing tax; category and description edits are plain replacements.
//
// A tax-share edit back-solves the global tax that makes the edited share
// proportional (newTax = share * subtotal / amount) and then redistributes
// every share from it, so no item is left stale. The edit is rejected with
// allocator.ErrBacksolve when the item's amount or the subtotal is zero.
func (d *Draft) UpdateItem(id, field, value string) error {
	idx := -1
	for i, item := range d.Items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	switch field {
	case FieldAmount:
		d.Items[idx].Amount = value
		d.Recalculate()
	case FieldCategory:
		d.Items[idx].Category = value
	case FieldDescription:
		d.Items[idx].Description = value
	case FieldTaxShare:
		newTax, err := allocator.BacksolveTax(d.allocatorItems(), id, ParseAmount(value))
		if err != nil {
			return err
		}
		d.Tax = formatAmount(newTax)
		d.Recalculate()
	default:
		return ErrUnknownField
	}
	return nil
}

// UpdateTax replaces the receipt's tax total and redistributes all shares.
func (d *Draft) UpdateTax(value string) {
	d.Tax = value
	d.Recalculate()
}

// Recalculate recomputes the subtotal, redistributes the tax shares, and
// recomputes the total. Callers that mutate Items directly (e.g. when
// building a draft from a scan result) must call it afterwards.
func (d *Draft) Recalculate() {
	allocations := allocator.DistributeTax(d.allocatorItems(), ParseAmount(d.Tax))

	var subtotal float64
	for i, a := range allocations {
		d.Items[i].TaxShare = formatAmount(a.TaxShare)
		subtotal += a.Amount
	}

	d.Subtotal = round2(subtotal)
	d.Total = round2(subtotal + ParseAmount(d.Tax))
}

func (d *Draft) allocatorItems() []allocator.Item {
	items := make([]allocator.Item, len(d.Items))
	for i, item := range d.Items {
		items[i] = allocator.Item{ID: item.ID, Amount: ParseAmount(item.Amount)}
	}
	return items
}

// ParseAmount parses user-entered money text. Unparsable, negative, or
// non-finite input counts as zero; bad text must never fail an edit.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
