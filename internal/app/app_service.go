package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quote-engine/internal/core"

	"github.com/google/uuid"
)

const statusMessage = "must be one of DRAFT, SENT, APPROVED, REJECTED, EXPIRED"

type appService struct {
	quotes      core.QuoteService
	customers   core.CustomerService
	calculation core.CalculationService
	pricing     core.PricingSource
	now         func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
// pricing is the source used for price lookups; pass the cached source when
// Redis is configured.
func NewAppService(
	quotes core.QuoteService,
	customers core.CustomerService,
	calculation core.CalculationService,
	pricing core.PricingSource,
) ApplicationService {
	return &appService{
		quotes:      quotes,
		customers:   customers,
		calculation: calculation,
		pricing:     pricing,
		now:         time.Now,
	}
}

// CreateQuote validates request identifiers and dates, then creates the quote.
func (s *appService) CreateQuote(ctx context.Context, req CreateQuoteRequest) (*QuoteResult, error) {
	var fe fieldErrors
	in := core.CreateQuoteInput{
		CustomerID: fe.id("customer_id", req.CustomerID),
		Items:      fe.items("items", req.Items),
		ValidUntil: fe.date("valid_until", req.ValidUntil),
		Notes:      req.Notes,
		TaxRate:    req.TaxRate,
		CreatedBy:  fe.id("created_by", req.CreatedBy),
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	quote, err := s.quotes.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

// GetQuote accepts either a UUID or a quote number.
func (s *appService) GetQuote(ctx context.Context, ref string) (*QuoteResult, error) {
	quote, err := s.resolveQuote(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

// ListQuotes returns one page of quotes.
func (s *appService) ListQuotes(ctx context.Context, req ListQuotesRequest) (*QuoteListResult, error) {
	var fe fieldErrors
	filter := core.QuoteFilter{
		CustomerID: fe.optionalID("customer_id", req.CustomerID),
		CreatedBy:  fe.optionalID("created_by", req.CreatedBy),
		Search:     strings.TrimSpace(req.Search),
	}
	if req.Status != "" {
		status, err := core.ParseStatus(req.Status)
		if err != nil {
			fe.add("status", statusMessage)
		} else {
			filter.Status = &status
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	list, err := s.quotes.List(ctx, filter, core.ListOptions{
		Limit:  req.Limit,
		Offset: req.Offset,
		SortBy: req.SortBy,
		Desc:   req.Desc,
	})
	if err != nil {
		return nil, err
	}
	return &QuoteListResult{Quotes: list.Quotes, Total: list.Total, Limit: list.Limit, Offset: list.Offset}, nil
}

// UpdateQuote applies header changes. The status is validated against the
// state machine before anything is written.
func (s *appService) UpdateQuote(ctx context.Context, ref string, req UpdateQuoteRequest) (*QuoteResult, error) {
	var fe fieldErrors
	in := core.UpdateQuoteInput{
		Notes:           req.Notes,
		TaxRate:         req.TaxRate,
		ActorID:         fe.optionalID("actor_id", req.ActorID),
		ExpectedVersion: req.ExpectedVersion,
	}
	if req.Status != nil {
		status, err := core.ParseStatus(*req.Status)
		if err != nil {
			fe.add("status", statusMessage)
		} else {
			in.Status = &status
		}
	}
	if req.ValidUntil != nil {
		in.ValidUntil = fe.date("valid_until", *req.ValidUntil)
		if in.ValidUntil == nil && strings.TrimSpace(*req.ValidUntil) == "" {
			fe.add("valid_until", "must not be empty")
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	quoteID, err := s.resolveQuoteID(ctx, ref)
	if err != nil {
		return nil, err
	}

	quote, err := s.quotes.Update(ctx, quoteID, in)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

// DeleteQuote deletes a DRAFT quote.
func (s *appService) DeleteQuote(ctx context.Context, ref, actorID string) error {
	var fe fieldErrors
	actor := fe.optionalID("actor_id", actorID)
	if err := fe.err(); err != nil {
		return err
	}
	quoteID, err := s.resolveQuoteID(ctx, ref)
	if err != nil {
		return err
	}
	return s.quotes.Delete(ctx, quoteID, actor)
}

// RecalculateQuote rewrites the stored totals of a quote.
func (s *appService) RecalculateQuote(ctx context.Context, ref string) (*QuoteResult, error) {
	quoteID, err := s.resolveQuoteID(ctx, ref)
	if err != nil {
		return nil, err
	}
	quote, err := s.quotes.RecalculateTotals(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

// AddQuoteItem appends a priced line to a DRAFT quote.
func (s *appService) AddQuoteItem(ctx context.Context, ref string, req QuoteItemRequest) (*QuoteResult, error) {
	var fe fieldErrors
	in := fe.item("item", req)
	if err := fe.err(); err != nil {
		return nil, err
	}
	quoteID, err := s.resolveQuoteID(ctx, ref)
	if err != nil {
		return nil, err
	}
	quote, err := s.quotes.AddItem(ctx, quoteID, in)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

// UpdateQuoteItem changes quantity, discount or notes of one line.
func (s *appService) UpdateQuoteItem(ctx context.Context, ref string, line int, req UpdateItemRequest) (*QuoteResult, error) {
	quoteID, err := s.resolveQuoteID(ctx, ref)
	if err != nil {
		return nil, err
	}
	quote, err := s.quotes.UpdateItem(ctx, quoteID, line, core.ItemUpdate{
		Quantity:        req.Quantity,
		DiscountPercent: req.DiscountPercent,
		Notes:           req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

// RemoveQuoteItem removes one line and renumbers the rest.
func (s *appService) RemoveQuoteItem(ctx context.Context, ref string, line int) (*QuoteResult, error) {
	quoteID, err := s.resolveQuoteID(ctx, ref)
	if err != nil {
		return nil, err
	}
	quote, err := s.quotes.RemoveItem(ctx, quoteID, line)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

// QuoteHistory returns the audit trail, oldest first.
func (s *appService) QuoteHistory(ctx context.Context, ref string) (*HistoryResult, error) {
	quote, err := s.resolveQuote(ctx, ref)
	if err != nil {
		return nil, err
	}
	entries, err := s.quotes.History(ctx, quote.ID)
	if err != nil {
		return nil, err
	}
	return &HistoryResult{QuoteID: quote.ID, Entries: entries}, nil
}

// NextQuoteNumber previews the next quote number.
func (s *appService) NextQuoteNumber(ctx context.Context) (string, error) {
	return s.quotes.NextQuoteNumber(ctx)
}

// ExpireQuotes runs one expiry sweep.
func (s *appService) ExpireQuotes(ctx context.Context, asOf string) (*ExpireResult, error) {
	var fe fieldErrors
	date := fe.date("as_of", asOf)
	if err := fe.err(); err != nil {
		return nil, err
	}
	when := s.now()
	if date != nil {
		when = *date
	}
	n, err := s.quotes.ExpireOverdue(ctx, when)
	if err != nil {
		return nil, err
	}
	return &ExpireResult{AsOf: when, Expired: n}, nil
}

// Calculate runs the stateless tier/bulk/regional-tax calculation.
func (s *appService) Calculate(ctx context.Context, req CalculateRequest) (*core.Calculation, error) {
	var fe fieldErrors
	in := core.CalculationRequest{
		CustomerID: fe.optionalID("customer_id", req.CustomerID),
		Tier:       core.CustomerTier(strings.ToLower(strings.TrimSpace(req.Tier))),
		Region:     strings.TrimSpace(req.Region),
		AsOf:       fe.date("as_of", req.AsOf),
		Items:      fe.items("items", req.Items),
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	return s.calculation.Calculate(ctx, in)
}

// GetPrice resolves one catalog price. A missing price is a
// *core.PricingNotFoundError.
func (s *appService) GetPrice(ctx context.Context, req PriceRequest) (*PriceResult, error) {
	var fe fieldErrors
	variantID := fe.id("variant_id", req.VariantID)
	materialID := fe.id("material_id", req.MaterialID)
	date := fe.date("as_of", req.AsOf)
	if err := fe.err(); err != nil {
		return nil, err
	}
	asOf := s.now()
	if date != nil {
		asOf = *date
	}

	price, found, err := s.pricing.CurrentPrice(ctx, variantID, materialID, asOf)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &core.PricingNotFoundError{VariantID: variantID, MaterialID: materialID, AsOf: asOf}
	}
	return &PriceResult{
		VariantID:  variantID,
		MaterialID: materialID,
		AsOf:       time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC),
		Price:      price,
	}, nil
}

// CreateCustomer allocates a customer number and stores the customer.
func (s *appService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*core.Customer, error) {
	return s.customers.CreateCustomer(ctx, core.NewCustomerInput{
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Company: req.Company,
		Tier:    core.CustomerTier(strings.ToLower(strings.TrimSpace(req.Tier))),
		Region:  req.Region,
	})
}

// GetCustomer returns a customer by UUID.
func (s *appService) GetCustomer(ctx context.Context, id string) (*core.Customer, error) {
	customerID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	return s.customers.GetCustomer(ctx, customerID)
}

// resolveQuote accepts either a UUID or a quote number string.
func (s *appService) resolveQuote(ctx context.Context, ref string) (*core.Quote, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, core.NewValidationError("ref", "is required")
	}
	if id, err := uuid.Parse(ref); err == nil {
		return s.quotes.Get(ctx, id)
	}
	quote, err := s.quotes.GetByNumber(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", ref, err)
	}
	return quote, nil
}

// resolveQuoteID maps a ref to a quote id. A UUID is passed through as-is;
// the mutation that follows reports a missing quote.
func (s *appService) resolveQuoteID(ctx context.Context, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(strings.TrimSpace(ref)); err == nil {
		return id, nil
	}
	quote, err := s.resolveQuote(ctx, ref)
	if err != nil {
		return uuid.Nil, err
	}
	return quote.ID, nil
}
