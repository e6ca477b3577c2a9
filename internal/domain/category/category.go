// Package category holds the fixed expense and income category vocabulary.
//
// Categories exist in two forms: a stable key used by clients and stored in
// drafts (e.g. "category.groceries"), and the display name the ledger backend
// expects (e.g. "Groceries"). The mapping is pure configuration; resolution
// of an empty or unknown key falls back to the default category.
package category

// DefaultName is the backend name used when an item has no resolvable category.
const DefaultName = "Other"

// expenseKeys preserves the display order of the expense vocabulary.
var expenseKeys = []string{
	"category.groceries",
	"category.utilities",
	"category.transportation",
	"category.housing",
	"category.healthcare",
	"category.education",
	"category.entertainment",
	"category.diningOut",
	"category.clothing",
	"category.personalCare",
	"category.giftsDonations",
	"category.travel",
	"category.loansDebt",
	"category.bankFees",
	"category.insurance",
	"category.taxes",
	"category.other",
}

var expenseKeyToName = map[string]string{
	"category.groceries":      "Groceries",
	"category.utilities":      "Utilities",
	"category.transportation": "Transportation",
	"category.housing":        "Housing",
	"category.healthcare":     "Healthcare",
	"category.education":      "Education",
	"category.entertainment":  "Entertainment",
	"category.diningOut":      "Dining Out",
	"category.clothing":       "Clothing",
	"category.personalCare":   "Personal Care",
	"category.giftsDonations": "Gifts & Donations",
	"category.travel":         "Travel",
	"category.loansDebt":      "Loans & Debt Payments",
	"category.bankFees":       "Bank Fees & Overdrafts",
	"category.insurance":      "Insurance",
	"category.taxes":          "Taxes",
	"category.other":          "Other",
}

var incomeKeys = []string{
	"category.salary",
	"category.freelance",
	"category.investment",
	"category.gift",
	"category.bonus",
	"category.otherIncome",
}

var incomeKeyToName = map[string]string{
	"category.salary":      "Salary",
	"category.freelance":   "Freelance",
	"category.investment":  "Investment",
	"category.gift":        "Gift",
	"category.bonus":       "Bonus",
	"category.otherIncome": "Other",
}

var expenseNameToKey = invert(expenseKeyToName)
var incomeNameToKey = invert(incomeKeyToName)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		// "Other" appears in both vocabularies; first write wins is fine
		// because lookups that miss fall back to the empty key anyway.
		if _, ok := out[v]; !ok {
			out[v] = k
		}
	}
	return out
}

// ExpenseKeys returns the expense category keys in display order.
func ExpenseKeys() []string {
	keys := make([]string, len(expenseKeys))
	copy(keys, expenseKeys)
	return keys
}

// IncomeKeys returns the income category keys in display order.
func IncomeKeys() []string {
	keys := make([]string, len(incomeKeys))
	copy(keys, incomeKeys)
	return keys
}

// Resolve maps an expense category key to its backend name.
// Empty or unknown keys resolve to DefaultName.
func Resolve(key string) string {
	if name, ok := expenseKeyToName[key]; ok {
		return name
	}
	return DefaultName
}

// ResolveIncome maps an income category key to its backend name.
// Empty or unknown keys resolve to DefaultName.
func ResolveIncome(key string) string {
	if name, ok := incomeKeyToName[key]; ok {
		return name
	}
	return DefaultName
}

// KeyForName maps a backend expense category name to its key.
// Unknown names map to the empty key (uncategorized).
func KeyForName(name string) string {
	return expenseNameToKey[name]
}

// IncomeKeyForName maps a backend income category name to its key.
func IncomeKeyForName(name string) string {
	return incomeNameToKey[name]
}

// IsExpenseKey reports whether key is part of the expense vocabulary.
func IsExpenseKey(key string) bool {
	_, ok := expenseKeyToName[key]
	return ok
}
