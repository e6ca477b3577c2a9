package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spendlens/receipt-review-backend/internal/api/dto"
	"github.com/spendlens/receipt-review-backend/internal/application/service"
	"github.com/spendlens/receipt-review-backend/internal/scan"
)

// ReviewsHandler exposes the review session lifecycle: start from a scan,
// edit items and tax, submit or discard.
type ReviewsHandler struct {
	svc *service.ReviewService
}

// NewReviewsHandler creates a reviews handler.
func NewReviewsHandler(svc *service.ReviewService) *ReviewsHandler {
	return &ReviewsHandler{svc: svc}
}

// Start handles POST /api/reviews
func (h *ReviewsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req dto.StartReviewRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	result := req.ScanResult
	if result == nil {
		if req.ImageBase64 == "" {
			WriteError(w, http.StatusBadRequest,
				dto.BadRequestError("either scan_result or image_base64 is required"))
			return
		}
		var err error
		result, err = h.svc.ScanReceipt(r.Context(), req.ImageBase64, req.Language)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
	}

	if err := result.Validate(); err != nil {
		WriteServiceError(w, err)
		return
	}

	// Utility receipts carry no itemization; hand back the scan data so the
	// client can confirm and submit it through the utility endpoint.
	if !result.Data.IsStore() {
		WriteJSON(w, http.StatusOK, result)
		return
	}

	session, d, err := h.svc.StartReview(result)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, dto.NewDraftResponse(session.ID, d))
}

// Get handles GET /api/reviews/{id}
func (h *ReviewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := h.svc.GetDraft(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.NewDraftResponse(id, d))
}

// AddItem handles POST /api/reviews/{id}/items
func (h *ReviewsHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := h.svc.AddItem(id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.NewDraftResponse(id, d))
}

// UpdateItem handles PATCH /api/reviews/{id}/items/{itemID}
func (h *ReviewsHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")

	var req dto.UpdateItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	d, err := h.svc.UpdateItem(id, itemID, req.Field, req.Value)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.NewDraftResponse(id, d))
}

// RemoveItem handles DELETE /api/reviews/{id}/items/{itemID}
func (h *ReviewsHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")

	d, err := h.svc.RemoveItem(id, itemID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.NewDraftResponse(id, d))
}

// UpdateTax handles PUT /api/reviews/{id}/tax
func (h *ReviewsHandler) UpdateTax(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateTaxRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	d, err := h.svc.UpdateTax(id, req.Tax)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.NewDraftResponse(id, d))
}

// Submit handles POST /api/reviews/{id}/submit
func (h *ReviewsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.svc.Submit(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.NewSubmissionResponse(record))
}

// Discard handles DELETE /api/reviews/{id}
func (h *ReviewsHandler) Discard(w http.ResponseWriter, r *http.Request) {
	h.svc.Discard(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// SubmitUtility handles POST /api/expenses/utility
func (h *ReviewsHandler) SubmitUtility(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitUtilityRequest
	if err := DecodeJSON(r, &req); err != nil || req.Receipt == nil {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("receipt is required"))
		return
	}
	if req.Receipt.ReceiptType == scan.TypeStore {
		WriteError(w, http.StatusBadRequest,
			dto.BadRequestError("store receipts must go through the review flow"))
		return
	}

	record, err := h.svc.SubmitUtility(r.Context(), req.Receipt)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.NewSubmissionResponse(record))
}
