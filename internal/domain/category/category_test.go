package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpenseKeys_OrderAndSize(t *testing.T) {
	keys := ExpenseKeys()

	assert.Len(t, keys, 17)
	assert.Equal(t, "category.groceries", keys[0])
	assert.Equal(t, "category.other", keys[len(keys)-1])
}

func TestIncomeKeys_OrderAndSize(t *testing.T) {
	keys := IncomeKeys()

	assert.Len(t, keys, 6)
	assert.Equal(t, "category.salary", keys[0])
	assert.Equal(t, "category.otherIncome", keys[len(keys)-1])
}

func TestExpenseKeys_ReturnsCopy(t *testing.T) {
	keys := ExpenseKeys()
	keys[0] = "mutated"
	assert.Equal(t, "category.groceries", ExpenseKeys()[0])
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"known key", "category.groceries", "Groceries"},
		{"multi-word name", "category.loansDebt", "Loans & Debt Payments"},
		{"bank fees", "category.bankFees", "Bank Fees & Overdrafts"},
		{"empty key falls back", "", DefaultName},
		{"unknown key falls back", "category.nonsense", DefaultName},
		{"income key is not an expense", "category.salary", DefaultName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.key))
		})
	}
}

func TestResolveIncome(t *testing.T) {
	assert.Equal(t, "Salary", ResolveIncome("category.salary"))
	assert.Equal(t, "Other", ResolveIncome("category.otherIncome"))
	assert.Equal(t, DefaultName, ResolveIncome(""))
	assert.Equal(t, DefaultName, ResolveIncome("category.groceries"))
}

func TestKeyForName(t *testing.T) {
	assert.Equal(t, "category.diningOut", KeyForName("Dining Out"))
	assert.Equal(t, "", KeyForName("No Such Category"), "unknown names stay uncategorized")
}

func TestKeyForName_RoundTrip(t *testing.T) {
	for _, key := range ExpenseKeys() {
		assert.Equal(t, key, KeyForName(Resolve(key)))
	}
}

func TestIncomeKeyForName(t *testing.T) {
	assert.Equal(t, "category.bonus", IncomeKeyForName("Bonus"))
	assert.Equal(t, "", IncomeKeyForName("Groceries"))
}

func TestIsExpenseKey(t *testing.T) {
	assert.True(t, IsExpenseKey("category.taxes"))
	assert.False(t, IsExpenseKey("category.salary"))
	assert.False(t, IsExpenseKey(""))
}
