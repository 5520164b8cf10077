package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues one-off sweeps for the worker; cmd/app uses it for
// "expire --async".
type Client struct {
	client *asynq.Client
}

func NewClient(redisURL string) (*Client, error) {
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}
	return &Client{client: asynq.NewClient(opt)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueExpire queues a sweep as of the given YYYY-MM-DD date, or the
// worker's current date when asOf is empty. A malformed date is rejected here
// rather than by the worker.
func (c *Client) EnqueueExpire(ctx context.Context, asOf string) error {
	payload := ExpireQuotesPayload{AsOf: asOf}
	if _, err := payload.asOf(time.Now()); err != nil {
		return err
	}
	task, err := NewExpireQuotesTask(payload)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Unique(defaultUniqueTTL)); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", TaskExpireQuotes, err)
	}
	return nil
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("invalid redis url: %w", err)
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
