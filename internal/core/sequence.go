package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// NumberKind describes a family of year-scoped human-readable numbers and
// where existing numbers of that family are stored.
type NumberKind struct {
	Base   string
	table  string
	column string
}

var (
	// QuoteNumbers yields Q<year><4 digits>, e.g. Q20250001.
	QuoteNumbers = NumberKind{Base: "Q", table: "quotes", column: "quote_number"}
	// CustomerNumbers yields CUST<year><4 digits>.
	CustomerNumbers = NumberKind{Base: "CUST", table: "customers", column: "customer_number"}
)

// Prefix returns the year-scoped prefix, e.g. "Q2025".
func (k NumberKind) Prefix(year int) string {
	return fmt.Sprintf("%s%d", k.Base, year)
}

const sequenceWidth = 4

// FormatNumber zero-pads n to four digits after prefix. Sequences past 9999
// keep growing in width.
func FormatNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, sequenceWidth, n)
}

// ParseSequence extracts the trailing sequence of a number carrying prefix.
func ParseSequence(prefix, number string) (int64, error) {
	digits, ok := strings.CutPrefix(number, prefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("number %q does not carry prefix %q", number, prefix)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("number %q has a malformed sequence %q", number, digits)
	}
	return n, nil
}

// NextFromMax returns the number following max, or prefix+"0001" when max is
// empty. This is the plain read-then-increment step; SequenceGenerator runs
// it atomically in the database.
func NextFromMax(prefix, max string) (string, error) {
	if max == "" {
		return FormatNumber(prefix, 1), nil
	}
	n, err := ParseSequence(prefix, max)
	if err != nil {
		return "", err
	}
	return FormatNumber(prefix, n+1), nil
}

// SequenceGenerator allocates numbers from the number_sequences counter table.
type SequenceGenerator interface {
	// Next allocates the next number of kind for year using q, which should be
	// the caller's transaction so a rollback also releases the number.
	Next(ctx context.Context, q pgxQuerier, kind NumberKind, year int) (string, error)
	// Peek returns the number Next would allocate now without allocating it.
	Peek(ctx context.Context, q pgxQuerier, kind NumberKind, year int) (string, error)
}

type sequenceGenerator struct{}

func NewSequenceGenerator() SequenceGenerator {
	return sequenceGenerator{}
}

// Next increments the counter row for the prefix in one statement. The row
// lock taken by the upsert serializes concurrent allocations, so two callers
// can never read the same value. Every allocation also takes the highest
// number already stored in kind's table into account, so a counter that fell
// behind (imported rows, a reset counter) catches up instead of colliding.
func (sequenceGenerator) Next(ctx context.Context, q pgxQuerier, kind NumberKind, year int) (string, error) {
	prefix := kind.Prefix(year)
	query := fmt.Sprintf(`
		INSERT INTO number_sequences (prefix, last_number)
		VALUES ($1, COALESCE((
			SELECT MAX(CAST(SUBSTRING(%[2]s FROM $2::int) AS BIGINT))
			FROM %[1]s
			WHERE %[2]s ~ ('^' || $1 || '[0-9]+$')
		), 0) + 1)
		ON CONFLICT (prefix)
		DO UPDATE SET last_number = GREATEST(number_sequences.last_number + 1, EXCLUDED.last_number),
		              updated_at  = NOW()
		RETURNING last_number
	`, kind.table, kind.column)

	var n int64
	if err := q.QueryRow(ctx, query, prefix, len(prefix)+1).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to allocate %s number: %w", prefix, err)
	}
	return FormatNumber(prefix, n), nil
}

// Peek applies NextFromMax to the highest stored number and returns it unless
// the counter is already further ahead.
func (sequenceGenerator) Peek(ctx context.Context, q pgxQuerier, kind NumberKind, year int) (string, error) {
	prefix := kind.Prefix(year)
	query := fmt.Sprintf(`
		SELECT
			COALESCE((SELECT last_number FROM number_sequences WHERE prefix = $1), 0),
			COALESCE((
				SELECT %[2]s FROM %[1]s
				WHERE %[2]s ~ ('^' || $1 || '[0-9]+$')
				ORDER BY LENGTH(%[2]s) DESC, %[2]s DESC
				LIMIT 1
			), '')
	`, kind.table, kind.column)

	var counter int64
	var maxNumber string
	if err := q.QueryRow(ctx, query, prefix).Scan(&counter, &maxNumber); err != nil {
		return "", fmt.Errorf("failed to read %s sequence: %w", prefix, err)
	}

	next, err := NextFromMax(prefix, maxNumber)
	if err != nil {
		return "", err
	}
	if n, _ := ParseSequence(prefix, next); counter >= n {
		return FormatNumber(prefix, counter+1), nil
	}
	return next, nil
}
