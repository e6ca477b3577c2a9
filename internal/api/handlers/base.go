package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/spendlens/receipt-review-backend/internal/api/dto"
	"github.com/spendlens/receipt-review-backend/internal/application/service"
	"github.com/spendlens/receipt-review-backend/internal/domain/aggregator"
	"github.com/spendlens/receipt-review-backend/internal/domain/allocator"
	"github.com/spendlens/receipt-review-backend/internal/domain/draft"
	"github.com/spendlens/receipt-review-backend/internal/scan"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	WriteJSON(w, status, err)
}

// WriteServiceError maps a service-layer error onto an HTTP response.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, dto.NotFoundError("review session"))
	case errors.Is(err, aggregator.ErrNoItems),
		errors.Is(err, service.ErrMissingDate),
		errors.Is(err, service.ErrNotItemized):
		WriteError(w, http.StatusUnprocessableEntity, dto.ValidationError(err.Error()))
	case errors.Is(err, allocator.ErrBacksolve),
		errors.Is(err, draft.ErrUnknownField):
		WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
	case errors.Is(err, scan.ErrScanFailed), errors.Is(err, scan.ErrNoData):
		WriteError(w, http.StatusUnprocessableEntity, dto.NewAPIError(dto.ErrCodeScanFailed, err.Error()))
	default:
		WriteError(w, http.StatusBadGateway, dto.UpstreamError(err.Error()))
	}
}

// DecodeJSON decodes a request body, rejecting unknown garbage early.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
