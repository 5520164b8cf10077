package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"quote-engine/internal/app"
)

const usage = `Available commands:
  price <variant-id> <material-id> [YYYY-MM-DD]
  next-number
  create <user-id>            (CreateQuoteRequest JSON on stdin)
  calculate                   (CalculateRequest JSON on stdin)
  show <quote-id|quote-number>
  list [status] [search]
  history <quote-id|quote-number>
  status <quote-id> <STATUS> [user-id]
  expire [--async] [YYYY-MM-DD]`

// ErrUsage is returned for unknown commands and missing arguments.
var ErrUsage = errors.New("usage error")

// ExpiryQueue hands an expiry sweep to the background worker.
type ExpiryQueue interface {
	EnqueueExpire(ctx context.Context, asOf string) error
}

type options struct {
	queue ExpiryQueue
}

// Option configures Run.
type Option func(*options)

// WithExpiryQueue enables "expire --async".
func WithExpiryQueue(q ExpiryQueue) Option {
	return func(o *options) { o.queue = q }
}

// Run executes a one-shot CLI command. args is os.Args[1:]; the first
// element is the subcommand name. JSON input is read from in and all output
// goes to out.
func Run(ctx context.Context, svc app.ApplicationService, args []string, in io.Reader, out io.Writer, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: no command\n%s", ErrUsage, usage)
	}

	switch args[0] {
	case "price":
		if len(args) < 3 {
			return fmt.Errorf("%w: price <variant-id> <material-id> [YYYY-MM-DD]", ErrUsage)
		}
		req := app.PriceRequest{VariantID: args[1], MaterialID: args[2]}
		if len(args) > 3 {
			req.AsOf = args[3]
		}
		result, err := svc.GetPrice(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s on %s\n", result.Price.StringFixed(2), result.AsOf.Format("2006-01-02"))

	case "next-number":
		number, err := svc.NextQuoteNumber(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, number)

	case "create":
		if len(args) < 2 {
			return fmt.Errorf("%w: create <user-id> < quote.json", ErrUsage)
		}
		var req app.CreateQuoteRequest
		if err := json.NewDecoder(in).Decode(&req); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		req.CreatedBy = args[1]
		result, err := svc.CreateQuote(ctx, req)
		if err != nil {
			return err
		}
		printQuote(out, result.Quote)

	case "calculate", "calc":
		var req app.CalculateRequest
		if err := json.NewDecoder(in).Decode(&req); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		calc, err := svc.Calculate(ctx, req)
		if err != nil {
			return err
		}
		printCalculation(out, calc)

	case "show":
		if len(args) < 2 {
			return fmt.Errorf("%w: show <quote-id|quote-number>", ErrUsage)
		}
		result, err := svc.GetQuote(ctx, args[1])
		if err != nil {
			return err
		}
		printQuote(out, result.Quote)

	case "list", "ls":
		req := app.ListQuotesRequest{Desc: true, Limit: 50}
		if len(args) > 1 {
			req.Status = args[1]
		}
		if len(args) > 2 {
			req.Search = strings.Join(args[2:], " ")
		}
		result, err := svc.ListQuotes(ctx, req)
		if err != nil {
			return err
		}
		printQuoteList(out, result)

	case "history":
		if len(args) < 2 {
			return fmt.Errorf("%w: history <quote-id|quote-number>", ErrUsage)
		}
		result, err := svc.QuoteHistory(ctx, args[1])
		if err != nil {
			return err
		}
		printHistory(out, result)

	case "status":
		if len(args) < 3 {
			return fmt.Errorf("%w: status <quote-id> <STATUS> [user-id]", ErrUsage)
		}
		status := args[2]
		req := app.UpdateQuoteRequest{Status: &status}
		if len(args) > 3 {
			req.ActorID = args[3]
		}
		result, err := svc.UpdateQuote(ctx, args[1], req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s is now %s\n", result.Quote.QuoteNumber, result.Quote.Status)

	case "expire":
		rest := args[1:]
		async := len(rest) > 0 && rest[0] == "--async"
		if async {
			rest = rest[1:]
		}
		asOf := ""
		if len(rest) > 0 {
			asOf = rest[0]
		}
		if async {
			if o.queue == nil {
				return errors.New("expire --async needs REDIS_URL")
			}
			if err := o.queue.EnqueueExpire(ctx, asOf); err != nil {
				return err
			}
			fmt.Fprintln(out, "Expiry sweep queued.")
			return nil
		}
		result, err := svc.ExpireQuotes(ctx, asOf)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Expired %d quote(s) valid before %s.\n", result.Expired, result.AsOf.Format("2006-01-02"))

	default:
		return fmt.Errorf("%w: unknown command %q\n%s", ErrUsage, args[0], usage)
	}
	return nil
}
