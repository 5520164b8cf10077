package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"quote-engine/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxRequestBody = 1 << 20

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

// Handler holds the ApplicationService and the precomputed request schemas.
type Handler struct {
	svc     app.ApplicationService
	ping    Pinger
	schemas map[string]any
}

// NewHandler creates and wires the chi router with all routes. ping may be nil.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log zerolog.Logger, ping Pinger) http.Handler {
	h := &Handler{
		svc:     svc,
		ping:    ping,
		schemas: requestSchemas(),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(MaxBodyBytes(maxRequestBody))
		r.Use(Identity)

		// ── Quotes ────────────────────────────────────────────────────────────
		r.Get("/api/quotes", h.apiListQuotes)
		r.Post("/api/quotes", h.apiCreateQuote)
		r.Post("/api/quotes/calculate", h.apiCalculate)
		r.Get("/api/quotes/schema", h.apiSchema)
		r.Get("/api/quotes/next-number", h.apiNextQuoteNumber)
		r.Get("/api/quotes/{ref}", h.apiGetQuote)
		r.Get("/api/quotes/{ref}/history", h.apiQuoteHistory)
		r.Patch("/api/quotes/{ref}", h.apiUpdateQuote)
		r.Delete("/api/quotes/{ref}", h.apiDeleteQuote)
		r.Post("/api/quotes/{ref}/recalculate", h.apiRecalculateQuote)

		// ── Quote items (DRAFT only) ──────────────────────────────────────────
		r.Post("/api/quotes/{ref}/items", h.apiAddItem)
		r.Patch("/api/quotes/{ref}/items/{line}", h.apiUpdateItem)
		r.Delete("/api/quotes/{ref}/items/{line}", h.apiRemoveItem)

		// ── Catalog and customers ─────────────────────────────────────────────
		r.Get("/api/prices", h.apiGetPrice)
		r.Post("/api/customers", h.apiCreateCustomer)
		r.Get("/api/customers/{id}", h.apiGetCustomer)
	})

	return r
}

// health reports service status and database reachability.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status   string `json:"status"`
		Database string `json:"database,omitempty"`
	}

	if h.ping == nil {
		writeJSON(w, response{Status: "ok"})
		return
	}
	if err := h.ping(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
		writeJSONStatus(w, http.StatusServiceUnavailable, response{Status: "degraded", Database: "unreachable"})
		return
	}
	writeJSON(w, response{Status: "ok", Database: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by MaxBodyBytes; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
