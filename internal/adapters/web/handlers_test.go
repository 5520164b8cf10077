package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quote-engine/internal/app"
	"quote-engine/internal/core"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeApp implements app.ApplicationService; methods a test does not set
// panic through the nil embedded interface.
type fakeApp struct {
	app.ApplicationService
	createReq *app.CreateQuoteRequest
	updateReq *app.UpdateQuoteRequest
	deleted   string
	err       error
	quote     *core.Quote
}

func (f *fakeApp) CreateQuote(_ context.Context, req app.CreateQuoteRequest) (*app.QuoteResult, error) {
	f.createReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return &app.QuoteResult{Quote: f.quote}, nil
}

func (f *fakeApp) GetQuote(_ context.Context, _ string) (*app.QuoteResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &app.QuoteResult{Quote: f.quote}, nil
}

func (f *fakeApp) UpdateQuote(_ context.Context, _ string, req app.UpdateQuoteRequest) (*app.QuoteResult, error) {
	f.updateReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return &app.QuoteResult{Quote: f.quote}, nil
}

func (f *fakeApp) DeleteQuote(_ context.Context, id, _ string) error {
	f.deleted = id
	return f.err
}

func (f *fakeApp) ListQuotes(_ context.Context, req app.ListQuotesRequest) (*app.QuoteListResult, error) {
	return &app.QuoteListResult{Quotes: []core.Quote{*f.quote}, Total: 1, Limit: req.Limit, Offset: req.Offset}, nil
}

func newTestHandler(f *fakeApp, ping Pinger) http.Handler {
	return NewHandler(f, "", zerolog.New(io.Discard), ping)
}

func sampleQuote() *core.Quote {
	return &core.Quote{
		ID:          uuid.MustParse("0b5e6f9c-2f57-4a53-9d0e-9b1c2d3e4f50"),
		QuoteNumber: "Q20250001",
		Status:      core.StatusDraft,
		Subtotal:    decimal.RequireFromString("230.00"),
		TotalAmount: decimal.RequireFromString("230.00"),
	}
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateQuote_Created(t *testing.T) {
	f := &fakeApp{quote: sampleQuote()}
	h := newTestHandler(f, nil)
	user := uuid.NewString()

	rec := do(t, h, http.MethodPost, "/api/quotes",
		`{"customer_id":"`+uuid.NewString()+`","items":[{"variant_id":"a","material_id":"b","quantity":2,"discount_percent":"10"}]}`,
		map[string]string{"X-User-ID": user})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/quotes/"+f.quote.ID.String(), rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.NotNil(t, f.createReq)
	assert.Equal(t, user, f.createReq.CreatedBy)
	require.Len(t, f.createReq.Items, 1)
	assert.True(t, f.createReq.Items[0].DiscountPercent.Equal(decimal.NewFromInt(10)))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Q20250001", body["quote_number"])
	assert.Equal(t, "230", body["total_amount"])
}

func TestCreateQuote_RejectsUnknownFields(t *testing.T) {
	h := newTestHandler(&fakeApp{quote: sampleQuote()}, nil)
	rec := do(t, h, http.MethodPost, "/api/quotes", `{"customer_id":"x","unit_price":"1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdentity_RejectsMalformedUserID(t *testing.T) {
	h := newTestHandler(&fakeApp{quote: sampleQuote()}, nil)
	rec := do(t, h, http.MethodPost, "/api/quotes", `{}`, map[string]string{"X-User-ID": "bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", core.NewValidationError("items", "must contain at least 1 item"), http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"pricing", &core.PricingNotFoundError{LineNumber: 2}, http.StatusUnprocessableEntity, "PRICING_NOT_FOUND"},
		{"transition", &core.TransitionError{From: core.StatusDraft, To: core.StatusApproved}, http.StatusConflict, "INVALID_TRANSITION"},
		{"conflict", errors.Join(core.ErrConflict, errors.New("quote is SENT")), http.StatusConflict, "CONFLICT"},
		{"not found", core.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeApp{err: tt.err}, nil)
			rec := do(t, h, http.MethodPatch, "/api/quotes/"+uuid.NewString(), `{"status":"APPROVED"}`, nil)
			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestErrorMapping_ValidationFields(t *testing.T) {
	h := newTestHandler(&fakeApp{err: &core.ValidationError{Fields: []core.FieldError{
		{Field: "items[0].quantity", Message: "must be greater than 0"},
		{Field: "customer_id", Message: "is required"},
	}}}, nil)

	rec := do(t, h, http.MethodPost, "/api/quotes", `{"items":[]}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	require.Len(t, resp.Fields, 2)
	assert.Equal(t, "items[0].quantity", resp.Fields[0].Field)
}

func TestErrorMapping_InternalErrorHidesDetail(t *testing.T) {
	h := newTestHandler(&fakeApp{err: errors.New("pq: password authentication failed")}, nil)
	rec := do(t, h, http.MethodGet, "/api/quotes/Q20250001", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUpdateQuote_PassesActor(t *testing.T) {
	f := &fakeApp{quote: sampleQuote()}
	h := newTestHandler(f, nil)
	user := uuid.NewString()

	rec := do(t, h, http.MethodPatch, "/api/quotes/"+f.quote.ID.String(), `{"status":"SENT","expected_version":3}`,
		map[string]string{"X-User-ID": user})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.updateReq)
	assert.Equal(t, "SENT", *f.updateReq.Status)
	assert.Equal(t, 3, *f.updateReq.ExpectedVersion)
	assert.Equal(t, user, f.updateReq.ActorID)
}

func TestDeleteQuote_NoContent(t *testing.T) {
	f := &fakeApp{}
	h := newTestHandler(f, nil)
	id := uuid.NewString()

	rec := do(t, h, http.MethodDelete, "/api/quotes/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, f.deleted)
}

func TestListQuotes(t *testing.T) {
	h := newTestHandler(&fakeApp{quote: sampleQuote()}, nil)

	rec := do(t, h, http.MethodGet, "/api/quotes?limit=5&offset=10&status=draft", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Quotes []map[string]any `json:"quotes"`
		Total  int              `json:"total"`
		Limit  int              `json:"limit"`
		Offset int              `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Quotes, 1)
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, 5, body.Limit)
	assert.Equal(t, 10, body.Offset)

	rec = do(t, h, http.MethodGet, "/api/quotes?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemRoutes_RejectBadLine(t *testing.T) {
	h := newTestHandler(&fakeApp{}, nil)
	rec := do(t, h, http.MethodDelete, "/api/quotes/"+uuid.NewString()+"/items/zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchema(t *testing.T) {
	h := newTestHandler(&fakeApp{}, nil)
	rec := do(t, h, http.MethodGet, "/api/quotes/schema", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	create := body["create_quote"]
	require.NotNil(t, create)
	props, ok := create["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "customer_id")
	assert.Contains(t, props, "items")
	assert.NotContains(t, props, "CreatedBy")
	assert.ElementsMatch(t, []any{"customer_id", "items"}, create["required"])
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&fakeApp{}, func(context.Context) error { return nil })
	rec := do(t, h, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	h = newTestHandler(&fakeApp{}, func(context.Context) error { return errors.New("down") })
	rec = do(t, h, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestID_Echoed(t *testing.T) {
	h := newTestHandler(&fakeApp{}, nil)
	rec := do(t, h, http.MethodGet, "/api/health", "", map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCORS_PreflightFromAllowedOrigin(t *testing.T) {
	h := NewHandler(&fakeApp{}, "https://admin.example.com, https://shop.example.com", zerolog.Nop(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/quotes", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-User-ID")
}

func TestCORS_UnknownOriginGetsNoHeaders(t *testing.T) {
	h := NewHandler(&fakeApp{}, "https://admin.example.com", zerolog.Nop(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
