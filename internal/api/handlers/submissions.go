package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spendlens/receipt-review-backend/internal/api/dto"
	"github.com/spendlens/receipt-review-backend/internal/infrastructure/storage"
)

// SubmissionsHandler exposes the submission history ledger.
type SubmissionsHandler struct {
	repo storage.Repository
}

// NewSubmissionsHandler creates a submissions handler.
func NewSubmissionsHandler(repo storage.Repository) *SubmissionsHandler {
	return &SubmissionsHandler{repo: repo}
}

// List handles GET /api/submissions
func (h *SubmissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := storage.SubmissionFilters{
		Status: r.URL.Query().Get("status"),
		Limit:  ParseIntParam(r, "limit", 50),
		Offset: ParseIntParam(r, "offset", 0),
	}

	result, err := h.repo.ListSubmissions(filters)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.SubmissionListResponse{
		Submissions: make([]dto.SubmissionResponse, 0, len(result.Submissions)),
		TotalCount:  result.TotalCount,
		Limit:       result.Limit,
		Offset:      result.Offset,
	}
	for _, record := range result.Submissions {
		response.Submissions = append(response.Submissions, dto.NewSubmissionResponse(record))
	}

	WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/submissions/{id}
func (h *SubmissionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.repo.GetSubmission(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, dto.NotFoundError("submission"))
			return
		}
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	WriteJSON(w, http.StatusOK, dto.NewSubmissionResponse(record))
}
