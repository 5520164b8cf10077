package web

import (
	"net/http"

	"quote-engine/internal/app"

	"github.com/go-chi/chi/v5"
)

// apiCreateCustomer handles POST /api/customers.
func (h *Handler) apiCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var body app.CreateCustomerRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	customer, err := h.svc.CreateCustomer(r.Context(), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, customer)
}

// apiGetCustomer handles GET /api/customers/{id}.
func (h *Handler) apiGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.svc.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, customer)
}
