// Package allocator distributes a receipt's sales tax across its line items.
//
// Each item receives a share of the total tax proportional to its pre-tax
// amount:
//
//	share_i = round2(amount_i / subtotal * tax)
//
// Rounding is to cents, half away from zero. Independent rounding can leave
// the share sum a few cents off the declared tax, so the largest share
// absorbs any cent-level residual.
package allocator

import (
	"errors"
	"math"
)

// maxRepair bounds the residual the largest share may absorb. Anything
// bigger than this is not rounding noise and is left alone.
const maxRepair = 0.10

// Item is a line item participating in tax distribution.
type Item struct {
	ID     string
	Amount float64
}

// Allocation is one item's computed share of the total tax.
type Allocation struct {
	ID       string
	Amount   float64
	TaxShare float64
}

// DistributeTax allocates tax across items pro rata to their amounts.
//
// Negative item amounts are treated as zero. When tax or the subtotal is not
// positive, every share is zero; that is policy, not an error. The returned
// slice is index-aligned with items.
func DistributeTax(items []Item, tax float64) []Allocation {
	allocations := make([]Allocation, len(items))

	var subtotal float64
	for i, item := range items {
		amount := item.Amount
		if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			amount = 0
		}
		allocations[i] = Allocation{ID: item.ID, Amount: amount}
		subtotal += amount
	}

	if tax <= 0 || subtotal <= 0 {
		return allocations
	}

	var allocated float64
	for i := range allocations {
		share := round2(allocations[i].Amount / subtotal * tax)
		allocations[i].TaxShare = share
		allocated += share
	}

	// Repair rounding drift so the shares conserve the declared tax.
	diff := round2(tax - allocated)
	if diff != 0 && math.Abs(diff) < maxRepair {
		maxIdx := 0
		for i, a := range allocations {
			if a.TaxShare > allocations[maxIdx].TaxShare {
				maxIdx = i
			}
		}
		repaired := round2(allocations[maxIdx].TaxShare + diff)
		if repaired >= 0 {
			allocations[maxIdx].TaxShare = repaired
		}
	}

	return allocations
}

// ErrBacksolve is returned when a tax-share edit cannot be solved back to a
// global tax total.
var ErrBacksolve = errors.New("cannot back-solve tax from a zero-amount item")

// BacksolveTax recovers the global tax total implied by directly editing one
// item's tax share: newTax = editedShare * subtotal / amount.
//
// A subsequent DistributeTax with the returned total reproduces editedShare
// on the edited item up to rounding. Fails when the edited item's amount or
// the subtotal is not positive, since no finite tax satisfies the edit.
func BacksolveTax(items []Item, id string, editedShare float64) (float64, error) {
	if editedShare < 0 || math.IsNaN(editedShare) || math.IsInf(editedShare, 0) {
		editedShare = 0
	}

	var subtotal, amount float64
	found := false
	for _, item := range items {
		a := item.Amount
		if a < 0 {
			a = 0
		}
		subtotal += a
		if item.ID == id {
			amount = a
			found = true
		}
	}

	if !found || amount <= 0 || subtotal <= 0 {
		return 0, ErrBacksolve
	}

	return round2(editedShare * subtotal / amount), nil
}

// round2 rounds to cents, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
