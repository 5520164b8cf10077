package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"quote-engine/internal/core"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Fields    []core.FieldError `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, r, status, errorResponse{Error: message, Code: code})
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, resp errorResponse) {
	resp.RequestID = requestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps a domain error to its HTTP status. Unknown errors
// are logged and reported as 500 without their text.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		pricingErr    *core.PricingNotFoundError
		validationErr *core.ValidationError
		transitionErr *core.TransitionError
	)
	switch {
	case errors.As(err, &pricingErr):
		writeError(w, r, pricingErr.Error(), "PRICING_NOT_FOUND", http.StatusUnprocessableEntity)
	case errors.As(err, &validationErr):
		writeErrorResponse(w, r, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Code:   "VALIDATION_FAILED",
			Fields: validationErr.Fields,
		})
	case errors.Is(err, core.ErrValidation):
		writeError(w, r, err.Error(), "VALIDATION_FAILED", http.StatusUnprocessableEntity)
	case errors.As(err, &transitionErr):
		writeError(w, r, transitionErr.Error(), "INVALID_TRANSITION", http.StatusConflict)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrConflict):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
