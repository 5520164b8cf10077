package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"quote-engine/internal/core"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type quoteFixture struct {
	pool      *pgxpool.Pool
	quotes    core.QuoteService
	customers core.CustomerService
	pricing   core.PricingSource
	customer  *core.Customer
	user      uuid.UUID
	variant   uuid.UUID
	boardA    uuid.UUID
	boardB    uuid.UUID
}

func newQuoteFixture(t *testing.T) *quoteFixture {
	t.Helper()
	pool := setupTestDB(t)
	ctx := context.Background()

	f := &quoteFixture{
		pool:    pool,
		pricing: core.NewPricingResolver(pool),
		user:    uuid.New(),
		variant: uuid.New(),
		boardA:  uuid.New(),
		boardB:  uuid.New(),
	}
	seq := core.NewSequenceGenerator()
	f.customers = core.NewCustomerService(pool, seq)
	f.quotes = core.NewQuoteService(pool, f.pricing, seq, core.QuoteConfig{ValidityDays: 30}, core.WithClock(func() time.Time { return testNow }))

	f.addPrice(t, f.variant, f.boardA, "100.00", "2025-01-01", nil)
	f.addPrice(t, f.variant, f.boardB, "50.00", "2025-01-01", nil)

	company := "Acme Cabinets"
	c, err := f.customers.CreateCustomer(ctx, core.NewCustomerInput{Name: "Jane Builder", Company: &company, Tier: core.TierDealer})
	require.NoError(t, err)
	f.customer = c
	return f
}

func (f *quoteFixture) addPrice(t *testing.T, variant, material uuid.UUID, price, effective string, expires *string) {
	t.Helper()
	var expiration *time.Time
	if expires != nil {
		d := date(t, *expires)
		expiration = &d
	}
	_, err := f.pool.Exec(context.Background(), `
		INSERT INTO product_pricing (product_variant_id, box_material_id, price, effective_date, expiration_date)
		VALUES ($1, $2, $3, $4, $5)
	`, variant, material, dec(price), date(t, effective), expiration)
	require.NoError(t, err)
}

func (f *quoteFixture) create(t *testing.T) *core.Quote {
	t.Helper()
	q, err := f.quotes.Create(context.Background(), core.CreateQuoteInput{
		CustomerID: f.customer.ID,
		CreatedBy:  f.user,
		Items: []core.ItemInput{
			{VariantID: f.variant, MaterialID: f.boardA, Quantity: 2, DiscountPercent: decimal.NewFromInt(10)},
			{VariantID: f.variant, MaterialID: f.boardB, Quantity: 1},
		},
	})
	require.NoError(t, err)
	return q
}

func (f *quoteFixture) setStatus(t *testing.T, id uuid.UUID, status core.QuoteStatus) *core.Quote {
	t.Helper()
	q, err := f.quotes.Update(context.Background(), id, core.UpdateQuoteInput{Status: &status, ActorID: &f.user})
	require.NoError(t, err)
	return q
}

func (f *quoteFixture) count(t *testing.T, sql string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.pool.QueryRow(context.Background(), sql, args...).Scan(&n))
	return n
}

func TestQuote_CreateComputesTotals(t *testing.T) {
	f := newQuoteFixture(t)

	q := f.create(t)

	assert.Equal(t, "Q20250001", q.QuoteNumber)
	assert.Equal(t, core.StatusDraft, q.Status)
	assert.Equal(t, 1, q.Version)
	assert.Equal(t, f.customer.CustomerNumber, q.CustomerNumber)
	assert.Equal(t, "2025-07-15", q.ValidUntil.Format(time.DateOnly))
	require.Len(t, q.Items, 2)
	assertDecimal(t, "100.00", q.Items[0].UnitPrice, "line 1 unit price")
	assertDecimal(t, "180.00", q.Items[0].LineTotal, "line 1 total")
	assertDecimal(t, "230.00", q.Subtotal, "subtotal")
	assertDecimal(t, "20.00", q.DiscountAmount, "discount")
	assertDecimal(t, "0", q.TaxAmount, "tax")
	assertDecimal(t, "230.00", q.TotalAmount, "total")
}

func TestQuote_CreateIsAllOrNothing(t *testing.T) {
	f := newQuoteFixture(t)
	unpriced := uuid.New()

	_, err := f.quotes.Create(context.Background(), core.CreateQuoteInput{
		CustomerID: f.customer.ID,
		CreatedBy:  f.user,
		Items: []core.ItemInput{
			{VariantID: f.variant, MaterialID: f.boardA, Quantity: 1},
			{VariantID: f.variant, MaterialID: unpriced, Quantity: 1},
		},
	})

	var pnf *core.PricingNotFoundError
	require.True(t, errors.As(err, &pnf), "expected PricingNotFoundError, got %v", err)
	assert.Equal(t, 2, pnf.LineNumber)
	assert.Equal(t, 0, f.count(t, "SELECT COUNT(*) FROM quotes"))
	assert.Equal(t, 0, f.count(t, "SELECT COUNT(*) FROM quote_items"))
	assert.Equal(t, 0, f.count(t, "SELECT COUNT(*) FROM quote_outbox"))

	// The rolled-back number is not burned.
	next, err := f.quotes.NextQuoteNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Q20250001", next)
}

func TestQuote_CreateUnknownCustomer(t *testing.T) {
	f := newQuoteFixture(t)

	_, err := f.quotes.Create(context.Background(), core.CreateQuoteInput{
		CustomerID: uuid.New(),
		CreatedBy:  f.user,
		Items:      []core.ItemInput{{VariantID: f.variant, MaterialID: f.boardA, Quantity: 1}},
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestQuote_SequentialNumbers(t *testing.T) {
	f := newQuoteFixture(t)

	first := f.create(t)
	second := f.create(t)

	assert.Equal(t, "Q20250001", first.QuoteNumber)
	assert.Equal(t, "Q20250002", second.QuoteNumber)

	next, err := f.quotes.NextQuoteNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Q20250003", next)

	byNumber, err := f.quotes.GetByNumber(context.Background(), "Q20250002")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byNumber.ID)
}

func TestQuote_NumberCatchesUpWithStoredQuotes(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	f.create(t)
	moved := f.create(t)
	_, err := f.pool.Exec(ctx, "UPDATE quotes SET quote_number = 'Q20250005' WHERE id = $1", moved.ID)
	require.NoError(t, err)

	next, err := f.quotes.NextQuoteNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Q20250006", next)

	q := f.create(t)
	assert.Equal(t, "Q20250006", q.QuoteNumber)
	assert.Equal(t, "Q20250007", f.create(t).QuoteNumber)
}

func TestQuote_NumberSeedsFromExistingQuotes(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	f.create(t)
	f.create(t)
	_, err := f.pool.Exec(ctx, "DELETE FROM number_sequences")
	require.NoError(t, err)

	next, err := f.quotes.NextQuoteNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Q20250003", next)
	assert.Equal(t, "Q20250003", f.create(t).QuoteNumber)
}

func TestQuote_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	f := newQuoteFixture(t)
	const n = 8

	var mu sync.Mutex
	numbers := make(map[string]bool, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			q, err := f.quotes.Create(context.Background(), core.CreateQuoteInput{
				CustomerID: f.customer.ID,
				CreatedBy:  f.user,
				Items:      []core.ItemInput{{VariantID: f.variant, MaterialID: f.boardB, Quantity: 1}},
			})
			if err != nil {
				return err
			}
			mu.Lock()
			numbers[q.QuoteNumber] = true
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, numbers, n)
	for i := 1; i <= n; i++ {
		assert.True(t, numbers[core.FormatNumber("Q2025", int64(i))], "missing Q2025%04d", i)
	}
}

func TestQuote_ApprovingDraftIsRejected(t *testing.T) {
	f := newQuoteFixture(t)
	q := f.create(t)
	approved := core.StatusApproved

	_, err := f.quotes.Update(context.Background(), q.ID, core.UpdateQuoteInput{Status: &approved, ActorID: &f.user})

	var te *core.TransitionError
	require.True(t, errors.As(err, &te), "expected TransitionError, got %v", err)
	assert.Equal(t, core.StatusDraft, te.From)
	assert.Equal(t, core.StatusApproved, te.To)

	stored, err := f.quotes.Get(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusDraft, stored.Status)
	assert.Equal(t, q.Version, stored.Version)
}

func TestQuote_ApprovalRecordsApprover(t *testing.T) {
	f := newQuoteFixture(t)
	q := f.create(t)

	f.setStatus(t, q.ID, core.StatusSent)
	approved := f.setStatus(t, q.ID, core.StatusApproved)

	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, f.user, *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, 3, approved.Version)

	history, err := f.quotes.History(context.Background(), q.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "created", history[0].Action)
	assert.Equal(t, "status_changed", history[2].Action)
	require.NotNil(t, history[2].FromStatus)
	assert.Equal(t, core.StatusSent, *history[2].FromStatus)
	assert.Equal(t, core.StatusApproved, *history[2].ToStatus)
}

func TestQuote_SameStatusIsNoop(t *testing.T) {
	f := newQuoteFixture(t)
	q := f.create(t)
	draft := core.StatusDraft

	_, err := f.quotes.Update(context.Background(), q.ID, core.UpdateQuoteInput{Status: &draft})
	require.NoError(t, err)

	assert.Equal(t, 1, f.count(t, "SELECT COUNT(*) FROM quote_audit_log WHERE quote_id = $1", q.ID))
}

func TestQuote_ReapprovingNeedsNoActor(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	q := f.create(t)
	f.setStatus(t, q.ID, core.StatusSent)
	approved := core.StatusApproved

	_, err := f.quotes.Update(ctx, q.ID, core.UpdateQuoteInput{Status: &approved})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "actor_id", ve.Fields[0].Field)

	f.setStatus(t, q.ID, core.StatusApproved)
	notes := "confirmed by phone"
	got, err := f.quotes.Update(ctx, q.ID, core.UpdateQuoteInput{Status: &approved, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, core.StatusApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, f.user, *got.ApprovedBy)
	assert.Equal(t, 3, f.count(t, "SELECT COUNT(*) FROM quote_audit_log WHERE quote_id = $1", q.ID))
}

func TestQuote_StaleVersionConflicts(t *testing.T) {
	f := newQuoteFixture(t)
	q := f.create(t)
	notes := "call before delivery"
	stale := q.Version

	_, err := f.quotes.Update(context.Background(), q.ID, core.UpdateQuoteInput{Notes: &notes, ExpectedVersion: &stale})
	require.NoError(t, err)

	_, err = f.quotes.Update(context.Background(), q.ID, core.UpdateQuoteInput{Notes: &notes, ExpectedVersion: &stale})
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestQuote_TaxRateChangeRecalculates(t *testing.T) {
	f := newQuoteFixture(t)
	q := f.create(t)
	rate := decimal.RequireFromString("0.1")

	updated, err := f.quotes.Update(context.Background(), q.ID, core.UpdateQuoteInput{TaxRate: &rate})
	require.NoError(t, err)
	assertDecimal(t, "23.00", updated.TaxAmount, "tax")
	assertDecimal(t, "253.00", updated.TotalAmount, "total")

	f.setStatus(t, q.ID, core.StatusSent)
	_, err = f.quotes.Update(context.Background(), q.ID, core.UpdateQuoteInput{TaxRate: &rate})
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestQuote_DeleteOnlyDraft(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	draft := f.create(t)
	require.NoError(t, f.quotes.Delete(ctx, draft.ID, &f.user))
	_, err := f.quotes.Get(ctx, draft.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 0, f.count(t, "SELECT COUNT(*) FROM quote_items WHERE quote_id = $1", draft.ID))

	// The audit trail outlives the quote.
	history, err := f.quotes.History(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "deleted", history[len(history)-1].Action)

	sent := f.create(t)
	f.setStatus(t, sent.ID, core.StatusSent)
	err = f.quotes.Delete(ctx, sent.ID, &f.user)
	assert.ErrorIs(t, err, core.ErrConflict)

	stored, err := f.quotes.Get(ctx, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusSent, stored.Status)
	assert.Len(t, stored.Items, 2)

	assert.ErrorIs(t, f.quotes.Delete(ctx, uuid.New(), nil), core.ErrNotFound)
}

func TestQuote_PriceSnapshotIsImmutable(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	q := f.create(t)

	_, err := f.pool.Exec(ctx, "UPDATE product_pricing SET price = 999 WHERE box_material_id = $1", f.boardA)
	require.NoError(t, err)

	recalculated, err := f.quotes.RecalculateTotals(ctx, q.ID)
	require.NoError(t, err)
	assertDecimal(t, "100.00", recalculated.Items[0].UnitPrice, "snapshot")
	assertDecimal(t, "230.00", recalculated.TotalAmount, "total")

	qty := 3
	updated, err := f.quotes.UpdateItem(ctx, q.ID, 1, core.ItemUpdate{Quantity: &qty})
	require.NoError(t, err)
	assertDecimal(t, "100.00", updated.Items[0].UnitPrice, "snapshot after edit")
	assertDecimal(t, "270.00", updated.Items[0].LineTotal, "line 1 total")
	assertDecimal(t, "320.00", updated.TotalAmount, "total")
}

func TestQuote_ItemMutations(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	q := f.create(t)

	added, err := f.quotes.AddItem(ctx, q.ID, core.ItemInput{VariantID: f.variant, MaterialID: f.boardB, Quantity: 4})
	require.NoError(t, err)
	require.Len(t, added.Items, 3)
	assert.Equal(t, 3, added.Items[2].LineNumber)
	assertDecimal(t, "430.00", added.TotalAmount, "total after add")

	removed, err := f.quotes.RemoveItem(ctx, q.ID, 1)
	require.NoError(t, err)
	require.Len(t, removed.Items, 2)
	assert.Equal(t, 1, removed.Items[0].LineNumber)
	assert.Equal(t, 2, removed.Items[1].LineNumber)
	assertDecimal(t, "250.00", removed.TotalAmount, "total after remove")

	_, err = f.quotes.RemoveItem(ctx, q.ID, 7)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.quotes.RemoveItem(ctx, q.ID, 2)
	require.NoError(t, err)
	_, err = f.quotes.RemoveItem(ctx, q.ID, 1)
	assert.ErrorIs(t, err, core.ErrValidation, "last item must stay")

	f.setStatus(t, q.ID, core.StatusSent)
	_, err = f.quotes.AddItem(ctx, q.ID, core.ItemInput{VariantID: f.variant, MaterialID: f.boardA, Quantity: 1})
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestQuote_ExpireOverdue(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	draft := f.create(t)
	sent := f.create(t)
	f.setStatus(t, sent.ID, core.StatusSent)
	rejected := f.create(t)
	f.setStatus(t, rejected.ID, core.StatusSent)
	f.setStatus(t, rejected.ID, core.StatusRejected)

	n, err := f.quotes.ExpireOverdue(ctx, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "valid_until day itself is still valid")

	n, err = f.quotes.ExpireOverdue(ctx, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, id := range []uuid.UUID{draft.ID, sent.ID} {
		q, err := f.quotes.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusExpired, q.Status)
	}
	q, err := f.quotes.Get(ctx, rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusRejected, q.Status)
}

func TestQuote_ListAndSearch(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	first := f.create(t)
	second := f.create(t)
	f.setStatus(t, second.ID, core.StatusSent)

	all, err := f.quotes.List(ctx, core.QuoteFilter{}, core.ListOptions{SortBy: "quote_number"})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)
	require.Len(t, all.Quotes, 2)
	assert.Equal(t, first.ID, all.Quotes[0].ID)
	assert.Empty(t, all.Quotes[0].Items)

	sent := core.StatusSent
	filtered, err := f.quotes.List(ctx, core.QuoteFilter{Status: &sent}, core.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Total)
	assert.Equal(t, second.ID, filtered.Quotes[0].ID)

	byCompany, err := f.quotes.List(ctx, core.QuoteFilter{Search: "acme"}, core.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, byCompany.Total)

	none, err := f.quotes.List(ctx, core.QuoteFilter{Search: "100%"}, core.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, none.Total)
	assert.NotNil(t, none.Quotes)

	page, err := f.quotes.List(ctx, core.QuoteFilter{}, core.ListOptions{Limit: 1, Offset: 1, SortBy: "quote_number"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Quotes, 1)
	assert.Equal(t, second.ID, page.Quotes[0].ID)
}

func TestQuote_OutboxEvents(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	q := f.create(t)
	f.setStatus(t, q.ID, core.StatusSent)

	store := core.NewOutboxStore(f.pool)
	events, err := store.Unpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, core.EventQuoteCreated, events[0].EventType)
	assert.Equal(t, core.EventQuoteStatusChanged, events[1].EventType)

	var ev core.QuoteEvent
	require.NoError(t, json.Unmarshal(events[1].Payload, &ev))
	assert.Equal(t, q.ID, ev.QuoteID)
	require.NotNil(t, ev.Quote)
	assertDecimal(t, "230", ev.Quote.TotalAmount, "event total")

	require.NoError(t, store.MarkPublished(ctx, events[0].ID))
	remaining, err := store.Unpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, events[1].ID, remaining[0].ID)
}

func TestPricingResolver_CurrentPrice(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	expires := "2025-09-01"
	f.addPrice(t, f.variant, f.boardA, "110.00", "2025-06-01", &expires)

	price, found, err := f.pricing.CurrentPrice(ctx, f.variant, f.boardA, testNow)
	require.NoError(t, err)
	require.True(t, found)
	assertDecimal(t, "110.00", price, "overlapping newer price")

	price, found, err = f.pricing.CurrentPrice(ctx, f.variant, f.boardA, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, found)
	assertDecimal(t, "100.00", price, "after expiry")

	_, found, err = f.pricing.CurrentPrice(ctx, f.variant, f.boardA, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCustomer_CreateAndGet(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	region := " tx "

	c, err := f.customers.CreateCustomer(ctx, core.NewCustomerInput{Name: "Bob", Region: &region})
	require.NoError(t, err)
	assert.Equal(t, core.FormatNumber(core.CustomerNumbers.Prefix(time.Now().Year()), 2), c.CustomerNumber)
	assert.Equal(t, core.TierRetail, c.Tier)
	require.NotNil(t, c.Region)
	assert.Equal(t, "TX", *c.Region)

	got, err := f.customers.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.CustomerNumber, got.CustomerNumber)

	_, err = f.customers.GetCustomer(ctx, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.customers.CreateCustomer(ctx, core.NewCustomerInput{Name: ""})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestCalculationService_UsesCustomerTierAndRegion(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	region := "TX"
	c, err := f.customers.CreateCustomer(ctx, core.NewCustomerInput{Name: "Dealer Co", Tier: core.TierDealer, Region: &region})
	require.NoError(t, err)

	policy := core.PricingPolicy{
		TierDiscounts:  map[core.CustomerTier]decimal.Decimal{core.TierDealer: decimal.NewFromInt(10)},
		BulkThreshold:  decimal.NewFromInt(10000),
		RegionTaxRates: map[string]decimal.Decimal{"TX": decimal.RequireFromString("0.0825")},
	}
	calc := core.NewCalculationService(f.pricing, f.customers, policy)
	asOf := testNow

	res, err := calc.Calculate(ctx, core.CalculationRequest{
		CustomerID: &c.ID,
		AsOf:       &asOf,
		Items:      []core.ItemInput{{VariantID: f.variant, MaterialID: f.boardA, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, core.TierDealer, res.Tier)
	assertDecimal(t, "20", res.TierDiscount, "tier discount")
	assertDecimal(t, "180", res.Subtotal, "subtotal")
	assertDecimal(t, "14.85", res.TaxAmount, "tax")
	assertDecimal(t, "194.85", res.TotalAmount, "total")

	assert.Equal(t, 0, f.count(t, "SELECT COUNT(*) FROM quotes"), "calculation persists nothing")

	_, err = calc.Calculate(ctx, core.CalculationRequest{
		AsOf:  &asOf,
		Items: []core.ItemInput{{VariantID: f.variant, MaterialID: uuid.New(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, core.ErrPricingNotFound)
}
