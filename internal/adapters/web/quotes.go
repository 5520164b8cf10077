package web

import (
	"net/http"
	"strconv"
	"strings"

	"quote-engine/internal/app"

	"github.com/go-chi/chi/v5"
)

type quoteListResponse struct {
	Quotes any `json:"quotes"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// apiCreateQuote handles POST /api/quotes.
func (h *Handler) apiCreateQuote(w http.ResponseWriter, r *http.Request) {
	var body app.CreateQuoteRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	body.CreatedBy = actorFromContext(r.Context())

	result, err := h.svc.CreateQuote(r.Context(), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/quotes/"+result.Quote.ID.String())
	writeJSONStatus(w, http.StatusCreated, result.Quote)
}

// apiListQuotes handles GET /api/quotes.
// Query: customer_id, status, created_by, q, limit, offset, sort, order (asc|desc).
func (h *Handler) apiListQuotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := app.ListQuotesRequest{
		CustomerID: q.Get("customer_id"),
		Status:     q.Get("status"),
		CreatedBy:  q.Get("created_by"),
		Search:     q.Get("q"),
		SortBy:     q.Get("sort"),
		Desc:       !strings.EqualFold(q.Get("order"), "asc"),
	}
	var ok bool
	if req.Limit, ok = intParam(w, r, "limit"); !ok {
		return
	}
	if req.Offset, ok = intParam(w, r, "offset"); !ok {
		return
	}

	result, err := h.svc.ListQuotes(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, quoteListResponse{Quotes: result.Quotes, Total: result.Total, Limit: result.Limit, Offset: result.Offset})
}

// apiGetQuote handles GET /api/quotes/{ref}. ref is a UUID or quote number.
func (h *Handler) apiGetQuote(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetQuote(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiQuoteHistory handles GET /api/quotes/{ref}/history.
func (h *Handler) apiQuoteHistory(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.QuoteHistory(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Entries)
}

// apiUpdateQuote handles PATCH /api/quotes/{id}.
func (h *Handler) apiUpdateQuote(w http.ResponseWriter, r *http.Request) {
	var body app.UpdateQuoteRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	body.ActorID = actorFromContext(r.Context())

	result, err := h.svc.UpdateQuote(r.Context(), chi.URLParam(r, "ref"), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiDeleteQuote handles DELETE /api/quotes/{id}.
func (h *Handler) apiDeleteQuote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteQuote(r.Context(), chi.URLParam(r, "ref"), actorFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiRecalculateQuote handles POST /api/quotes/{id}/recalculate.
func (h *Handler) apiRecalculateQuote(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RecalculateQuote(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiAddItem handles POST /api/quotes/{id}/items.
func (h *Handler) apiAddItem(w http.ResponseWriter, r *http.Request) {
	var body app.QuoteItemRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.AddQuoteItem(r.Context(), chi.URLParam(r, "ref"), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Quote)
}

// apiUpdateItem handles PATCH /api/quotes/{id}/items/{line}.
func (h *Handler) apiUpdateItem(w http.ResponseWriter, r *http.Request) {
	line, ok := lineParam(w, r)
	if !ok {
		return
	}
	var body app.UpdateItemRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.UpdateQuoteItem(r.Context(), chi.URLParam(r, "ref"), line, body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiRemoveItem handles DELETE /api/quotes/{id}/items/{line}.
func (h *Handler) apiRemoveItem(w http.ResponseWriter, r *http.Request) {
	line, ok := lineParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.RemoveQuoteItem(r.Context(), chi.URLParam(r, "ref"), line)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiCalculate handles POST /api/quotes/calculate. Nothing is persisted.
func (h *Handler) apiCalculate(w http.ResponseWriter, r *http.Request) {
	var body app.CalculateRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	calc, err := h.svc.Calculate(r.Context(), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, calc)
}

// apiNextQuoteNumber handles GET /api/quotes/next-number.
func (h *Handler) apiNextQuoteNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.svc.NextQuoteNumber(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"quote_number": number})
}

// apiGetPrice handles GET /api/prices?variant_id=&material_id=&as_of=.
func (h *Handler) apiGetPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.GetPrice(r.Context(), app.PriceRequest{
		VariantID:  q.Get("variant_id"),
		MaterialID: q.Get("material_id"),
		AsOf:       q.Get("as_of"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func lineParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	line, err := strconv.Atoi(chi.URLParam(r, "line"))
	if err != nil || line < 1 {
		writeError(w, r, "line must be a positive integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return line, true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, r, name+" must be a non-negative integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}
