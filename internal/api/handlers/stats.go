package handlers

import (
	"net/http"

	"github.com/spendlens/receipt-review-backend/internal/api/dto"
	"github.com/spendlens/receipt-review-backend/internal/infrastructure/storage"
)

// StatsHandler exposes aggregate submission statistics.
type StatsHandler struct {
	repo storage.Repository
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(repo storage.Repository) *StatsHandler {
	return &StatsHandler{repo: repo}
}

// Get handles GET /api/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.GetStats()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	WriteJSON(w, http.StatusOK, dto.StatsResponse{
		TotalSubmissions: stats.TotalSubmissions,
		SubmittedCount:   stats.SubmittedCount,
		FailedCount:      stats.FailedCount,
		TotalAmount:      stats.TotalAmount,
		CategoryTotals:   stats.CategoryTotals,
	})
}
