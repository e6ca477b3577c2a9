package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributeTax_Proportional(t *testing.T) {
	// 3 items totaling $100 with $10 tax: shares follow the 20/30/50 split
	items := []Item{
		{ID: "a", Amount: 20},
		{ID: "b", Amount: 30},
		{ID: "c", Amount: 50},
	}

	allocations := DistributeTax(items, 10)
	require.Len(t, allocations, 3)

	assert.Equal(t, 2.00, allocations[0].TaxShare)
	assert.Equal(t, 3.00, allocations[1].TaxShare)
	assert.Equal(t, 5.00, allocations[2].TaxShare)
}

func TestDistributeTax_Conservation(t *testing.T) {
	// uneven amounts that round independently
	items := []Item{
		{ID: "a", Amount: 3.33},
		{ID: "b", Amount: 7.77},
		{ID: "c", Amount: 12.49},
		{ID: "d", Amount: 0.99},
	}

	allocations := DistributeTax(items, 2.13)

	var sum float64
	for _, a := range allocations {
		assert.GreaterOrEqual(t, a.TaxShare, 0.0)
		sum += a.TaxShare
	}
	assert.InDelta(t, 2.13, sum, 0.001, "rounding repair should conserve the declared tax")
}

func TestDistributeTax_RoundingRepair(t *testing.T) {
	// each third of $0.10 rounds to $0.03; the residual cent lands on one item
	items := []Item{
		{ID: "a", Amount: 10},
		{ID: "b", Amount: 10},
		{ID: "c", Amount: 10},
	}

	allocations := DistributeTax(items, 0.10)

	var sum float64
	for _, a := range allocations {
		sum += a.TaxShare
	}
	assert.InDelta(t, 0.10, sum, 0.001)
	assert.Equal(t, 0.04, allocations[0].TaxShare)
	assert.Equal(t, 0.03, allocations[1].TaxShare)
	assert.Equal(t, 0.03, allocations[2].TaxShare)
}

func TestDistributeTax_ZeroSubtotalPolicy(t *testing.T) {
	t.Run("empty item list", func(t *testing.T) {
		allocations := DistributeTax(nil, 5)
		assert.Empty(t, allocations)
	})

	t.Run("all zero amounts", func(t *testing.T) {
		items := []Item{{ID: "a"}, {ID: "b"}}
		allocations := DistributeTax(items, 5)
		require.Len(t, allocations, 2)
		assert.Equal(t, 0.0, allocations[0].TaxShare)
		assert.Equal(t, 0.0, allocations[1].TaxShare)
	})

	t.Run("zero tax", func(t *testing.T) {
		items := []Item{{ID: "a", Amount: 10}, {ID: "b", Amount: 20}}
		allocations := DistributeTax(items, 0)
		assert.Equal(t, 0.0, allocations[0].TaxShare)
		assert.Equal(t, 0.0, allocations[1].TaxShare)
	})

	t.Run("negative tax treated as zero", func(t *testing.T) {
		items := []Item{{ID: "a", Amount: 10}}
		allocations := DistributeTax(items, -3)
		assert.Equal(t, 0.0, allocations[0].TaxShare)
	})
}

func TestDistributeTax_NegativeAmountTreatedAsZero(t *testing.T) {
	items := []Item{
		{ID: "a", Amount: -5},
		{ID: "b", Amount: 50},
	}

	allocations := DistributeTax(items, 5)
	assert.Equal(t, 0.0, allocations[0].TaxShare)
	assert.Equal(t, 5.00, allocations[1].TaxShare)
}

func TestDistributeTax_Idempotent(t *testing.T) {
	items := []Item{
		{ID: "a", Amount: 3.33},
		{ID: "b", Amount: 6.67},
	}

	first := DistributeTax(items, 1.07)
	second := DistributeTax(items, 1.07)

	assert.Equal(t, first, second, "repeated distribution with unchanged inputs must not drift")
}

func TestDistributeTax_RemovalRedistributes(t *testing.T) {
	// dropping the $50 item from the 20/30/50 receipt leaves subtotal 50,
	// so the same $10 tax now splits 4/6
	items := []Item{
		{ID: "a", Amount: 20},
		{ID: "b", Amount: 30},
	}

	allocations := DistributeTax(items, 10)
	assert.Equal(t, 4.00, allocations[0].TaxShare)
	assert.Equal(t, 6.00, allocations[1].TaxShare)
}

func TestBacksolveTax(t *testing.T) {
	items := []Item{
		{ID: "a", Amount: 20},
		{ID: "b", Amount: 30},
		{ID: "c", Amount: 50},
	}

	t.Run("recovers global tax from one share", func(t *testing.T) {
		// setting item a's share to $4 implies $20 of total tax
		newTax, err := BacksolveTax(items, "a", 4)
		require.NoError(t, err)
		assert.Equal(t, 20.00, newTax)

		// redistribution from the recovered tax reproduces the edit
		allocations := DistributeTax(items, newTax)
		assert.Equal(t, 4.00, allocations[0].TaxShare)
		assert.Equal(t, 6.00, allocations[1].TaxShare)
		assert.Equal(t, 10.00, allocations[2].TaxShare)
	})

	t.Run("zero-amount item cannot be solved", func(t *testing.T) {
		zeroItems := []Item{{ID: "a", Amount: 0}, {ID: "b", Amount: 10}}
		_, err := BacksolveTax(zeroItems, "a", 2)
		assert.ErrorIs(t, err, ErrBacksolve)
	})

	t.Run("unknown item cannot be solved", func(t *testing.T) {
		_, err := BacksolveTax(items, "nope", 2)
		assert.ErrorIs(t, err, ErrBacksolve)
	})

	t.Run("negative share counts as zero", func(t *testing.T) {
		newTax, err := BacksolveTax(items, "a", -3)
		require.NoError(t, err)
		assert.Equal(t, 0.00, newTax)
	})
}
