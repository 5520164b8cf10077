package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const defaultUniqueTTL = 10 * time.Minute

// QuoteExpirer is the part of core.QuoteService the worker needs.
type QuoteExpirer interface {
	ExpireOverdue(ctx context.Context, asOf time.Time) (int, error)
}

// Worker processes expiry tasks and, when a schedule is set, enqueues them
// periodically.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	expirer   QuoteExpirer
	now       func() time.Time
	log       zerolog.Logger
}

// NewWorker builds a worker against redisURL. schedule is a cron spec or
// "@every <duration>"; an empty schedule disables periodic enqueueing.
func NewWorker(redisURL, schedule string, expirer QuoteExpirer, log zerolog.Logger) (*Worker, error) {
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	w := newHandlerWorker(expirer, log)
	w.server = asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
	})

	if schedule != "" {
		w.scheduler = asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})
		task, err := NewExpireQuotesTask(ExpireQuotesPayload{})
		if err != nil {
			return nil, err
		}
		if _, err := w.scheduler.Register(schedule, task, asynq.Unique(defaultUniqueTTL)); err != nil {
			return nil, fmt.Errorf("invalid expire schedule %q: %w", schedule, err)
		}
	}
	return w, nil
}

func newHandlerWorker(expirer QuoteExpirer, log zerolog.Logger) *Worker {
	w := &Worker{
		mux:     asynq.NewServeMux(),
		expirer: expirer,
		now:     time.Now,
		log:     log,
	}
	w.mux.HandleFunc(TaskExpireQuotes, w.handleExpireQuotes)
	return w
}

// Run blocks until ctx is cancelled or the server fails.
func (w *Worker) Run(ctx context.Context) error {
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer w.scheduler.Shutdown()
	}

	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

func (w *Worker) handleExpireQuotes(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseExpireQuotesPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	asOf, err := payload.asOf(w.now())
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	n, err := w.expirer.ExpireOverdue(ctx, asOf)
	if err != nil {
		return err
	}
	w.log.Info().Int("expired", n).Time("as_of", asOf).Msg("quote expiry sweep finished")
	return nil
}
