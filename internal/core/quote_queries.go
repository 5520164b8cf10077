package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

const quoteColumns = `
	q.id, q.quote_number, q.customer_id, c.customer_number, c.name,
	q.status, q.tax_rate, q.subtotal, q.tax_amount, q.discount_amount, q.total_amount,
	q.valid_until, q.notes, q.created_by, q.approved_by, q.approved_at,
	q.version, q.created_at, q.updated_at`

func scanQuote(row pgx.Row, q *Quote) error {
	return row.Scan(
		&q.ID, &q.QuoteNumber, &q.CustomerID, &q.CustomerNumber, &q.CustomerName,
		&q.Status, &q.TaxRate, &q.Subtotal, &q.TaxAmount, &q.DiscountAmount, &q.TotalAmount,
		&q.ValidUntil, &q.Notes, &q.CreatedBy, &q.ApprovedBy, &q.ApprovedAt,
		&q.Version, &q.CreatedAt, &q.UpdatedAt,
	)
}

func (s *quoteService) Get(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return getQuote(ctx, s.pool, id)
}

func (s *quoteService) GetByNumber(ctx context.Context, quoteNumber string) (*Quote, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, "SELECT id FROM quotes WHERE quote_number = $1", strings.ToUpper(strings.TrimSpace(quoteNumber))).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quote %s: %w", quoteNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up quote by number: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *quoteService) History(ctx context.Context, id uuid.UUID) ([]AuditEntry, error) {
	return fetchAuditTrail(ctx, s.pool, id)
}

// getQuote loads a quote with its items through q, so callers inside a
// transaction see their own uncommitted writes.
func getQuote(ctx context.Context, q pgxQuerier, id uuid.UUID) (*Quote, error) {
	var quote Quote
	err := scanQuote(q.QueryRow(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes q
		JOIN customers c ON c.id = q.customer_id
		WHERE q.id = $1
	`, id), &quote)
	if err != nil {
		return nil, quoteLookupErr(id, err)
	}

	items, err := fetchItems(ctx, q, id)
	if err != nil {
		return nil, err
	}
	quote.Items = items
	return &quote, nil
}

func fetchItems(ctx context.Context, q pgxQuerier, quoteID uuid.UUID) ([]QuoteItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, quote_id, line_number, product_variant_id, box_material_id, quantity,
		       unit_price, discount_percent, discount_amount, line_total, notes, created_at
		FROM quote_items
		WHERE quote_id = $1
		ORDER BY line_number
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote items: %w", err)
	}
	defer rows.Close()

	var items []QuoteItem
	for rows.Next() {
		var it QuoteItem
		if err := rows.Scan(
			&it.ID, &it.QuoteID, &it.LineNumber, &it.ProductVariantID, &it.BoxMaterialID, &it.Quantity,
			&it.UnitPrice, &it.DiscountPercent, &it.DiscountAmount, &it.LineTotal, &it.Notes, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read quote items: %w", err)
	}
	return items, nil
}

// List returns quote headers without items. The page and the total count are
// read concurrently.
func (s *quoteService) List(ctx context.Context, filter QuoteFilter, opts ListOptions) (*QuoteList, error) {
	opts = opts.normalized()
	where, args := filter.whereClause()

	from := `
		FROM quotes q
		JOIN customers c ON c.id = q.customer_id
	` + where

	direction := "ASC"
	if opts.Desc {
		direction = "DESC"
	}
	pageQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, q.id LIMIT $%d OFFSET $%d",
		quoteColumns, from, sortColumns[opts.SortBy], direction, len(args)+1, len(args)+2)
	pageArgs := append(append([]any{}, args...), opts.Limit, opts.Offset)

	result := &QuoteList{Quotes: []Quote{}, Limit: opts.Limit, Offset: opts.Offset}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.pool.QueryRow(gctx, "SELECT COUNT(*) "+from, args...).Scan(&result.Total); err != nil {
			return fmt.Errorf("failed to count quotes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.pool.Query(gctx, pageQuery, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to query quotes: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var q Quote
			if err := scanQuote(rows, &q); err != nil {
				return fmt.Errorf("failed to scan quote: %w", err)
			}
			result.Quotes = append(result.Quotes, q)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// whereClause renders the filter as a WHERE clause with positional args.
func (f QuoteFilter) whereClause() (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.CustomerID != nil {
		add("q.customer_id = $%d", *f.CustomerID)
	}
	if f.Status != nil {
		add("q.status = $%d", *f.Status)
	}
	if f.CreatedBy != nil {
		add("q.created_by = $%d", *f.CreatedBy)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		add(`(q.quote_number ILIKE $%[1]d OR c.customer_number ILIKE $%[1]d OR c.name ILIKE $%[1]d
		      OR COALESCE(c.email, '') ILIKE $%[1]d OR COALESCE(c.company, '') ILIKE $%[1]d)`, "%"+escapeLike(search)+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *quoteService) NextQuoteNumber(ctx context.Context) (string, error) {
	return s.seq.Peek(ctx, s.pool, QuoteNumbers, s.now().Year())
}
