package handlers

import (
	"net/http"

	"github.com/spendlens/receipt-review-backend/internal/api/dto"
	"github.com/spendlens/receipt-review-backend/internal/domain/category"
)

// CategoriesHandler serves the fixed category vocabulary so clients never
// hard-code the key-to-name mapping.
type CategoriesHandler struct{}

// NewCategoriesHandler creates a categories handler.
func NewCategoriesHandler() *CategoriesHandler {
	return &CategoriesHandler{}
}

// List handles GET /api/categories
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	response := dto.CategoryListResponse{}
	for _, key := range category.ExpenseKeys() {
		response.Expense = append(response.Expense, dto.CategoryResponse{
			Key:  key,
			Name: category.Resolve(key),
		})
	}
	for _, key := range category.IncomeKeys() {
		response.Income = append(response.Income, dto.CategoryResponse{
			Key:  key,
			Name: category.ResolveIncome(key),
		})
	}
	WriteJSON(w, http.StatusOK, response)
}
