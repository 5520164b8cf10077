package cli

import (
	"fmt"
	"io"
	"strings"

	"quote-engine/internal/app"
	"quote-engine/internal/core"
)

func printQuote(out io.Writer, q *core.Quote) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 78))
	fmt.Fprintf(out, "  QUOTE %-20s %s\n", q.QuoteNumber, q.Status)
	fmt.Fprintf(out, "  Customer    : %s  %s\n", q.CustomerNumber, q.CustomerName)
	fmt.Fprintf(out, "  Valid until : %s\n", q.ValidUntil.Format("2006-01-02"))
	if q.ApprovedAt != nil {
		fmt.Fprintf(out, "  Approved    : %s\n", q.ApprovedAt.Format("2006-01-02 15:04"))
	}
	if q.Notes != nil && *q.Notes != "" {
		fmt.Fprintf(out, "  Notes       : %s\n", *q.Notes)
	}
	fmt.Fprintln(out, strings.Repeat("=", 78))
	fmt.Fprintf(out, "  %-4s %-10s %-10s %6s %12s %7s %14s\n", "LINE", "VARIANT", "MATERIAL", "QTY", "UNIT", "DISC%", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 78))
	for _, it := range q.Items {
		fmt.Fprintf(out, "  %-4d %-10s %-10s %6d %12s %7s %14s\n",
			it.LineNumber,
			shortID(it.ProductVariantID.String()),
			shortID(it.BoxMaterialID.String()),
			it.Quantity,
			it.UnitPrice.StringFixed(2),
			it.DiscountPercent.StringFixed(2),
			it.LineTotal.StringFixed(2),
		)
	}
	fmt.Fprintln(out, strings.Repeat("-", 78))
	fmt.Fprintf(out, "  %-58s %17s\n", "Discount", q.DiscountAmount.StringFixed(2))
	fmt.Fprintf(out, "  %-58s %17s\n", "Subtotal", q.Subtotal.StringFixed(2))
	fmt.Fprintf(out, "  %-58s %17s\n", "Tax @ "+q.TaxRate.String(), q.TaxAmount.StringFixed(2))
	fmt.Fprintf(out, "  %-58s %17s\n", "TOTAL", q.TotalAmount.StringFixed(2))
	fmt.Fprintln(out, strings.Repeat("=", 78))
}

func printQuoteList(out io.Writer, result *app.QuoteListResult) {
	if len(result.Quotes) == 0 {
		fmt.Fprintln(out, "No quotes found.")
		return
	}
	fmt.Fprintf(out, "%-12s %-10s %-12s %-24s %14s\n", "NUMBER", "STATUS", "VALID UNTIL", "CUSTOMER", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 76))
	for _, q := range result.Quotes {
		fmt.Fprintf(out, "%-12s %-10s %-12s %-24s %14s\n",
			q.QuoteNumber, q.Status, q.ValidUntil.Format("2006-01-02"), truncate(q.CustomerName, 24), q.TotalAmount.StringFixed(2))
	}
	fmt.Fprintf(out, "%d of %d\n", len(result.Quotes), result.Total)
}

func printHistory(out io.Writer, result *app.HistoryResult) {
	for _, e := range result.Entries {
		transition := ""
		if e.FromStatus != nil || e.ToStatus != nil {
			transition = fmt.Sprintf(" %s -> %s", statusOrDash(e.FromStatus), statusOrDash(e.ToStatus))
		}
		actor := "-"
		if e.ActorID != nil {
			actor = e.ActorID.String()
		}
		fmt.Fprintf(out, "%s  %-15s%s  by %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, transition, actor)
	}
}

func printCalculation(out io.Writer, c *core.Calculation) {
	for _, l := range c.Lines {
		fmt.Fprintf(out, "  %-10s %-10s %6d x %10s  -%10s  %12s\n",
			shortID(l.VariantID.String()), shortID(l.MaterialID.String()), l.Quantity,
			l.UnitPrice.StringFixed(2), l.DiscountAmount.StringFixed(2), l.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(out, "  Line subtotal        %14s\n", c.LineSubtotal.StringFixed(2))
	fmt.Fprintf(out, "  Tier %-10s %5s%% -%13s\n", c.Tier, c.TierDiscountPercent.String(), c.TierDiscount.StringFixed(2))
	fmt.Fprintf(out, "  Bulk            %5s%% -%13s\n", c.BulkDiscountPercent.String(), c.BulkDiscount.StringFixed(2))
	fmt.Fprintf(out, "  Subtotal             %14s\n", c.Subtotal.StringFixed(2))
	fmt.Fprintf(out, "  Tax (%s @ %s)  %14s\n", regionOrDefault(c.Region), c.TaxRate.String(), c.TaxAmount.StringFixed(2))
	fmt.Fprintf(out, "  TOTAL                %14s\n", c.TotalAmount.StringFixed(2))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func statusOrDash(s *core.QuoteStatus) string {
	if s == nil {
		return "-"
	}
	return string(*s)
}

func regionOrDefault(r string) string {
	if r == "" {
		return "default"
	}
	return r
}
