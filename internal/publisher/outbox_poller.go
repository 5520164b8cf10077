// Package publisher relays quote outbox events to Kafka.
package publisher

import (
	"context"
	"fmt"
	"time"

	"quote-engine/internal/core"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const defaultBatchSize = 100

// MessageWriter is the subset of *kafka.Writer the poller uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxPoller publishes unpublished outbox rows in id order and marks each
// one published after Kafka accepts it. Delivery is at-least-once: a crash
// between write and mark republishes the event.
type OutboxPoller struct {
	store     core.OutboxStore
	writer    MessageWriter
	tick      time.Duration
	batchSize int
	log       zerolog.Logger
}

// NewKafkaWriter builds the writer used in production.
func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func NewOutboxPoller(store core.OutboxStore, writer MessageWriter, tick time.Duration, log zerolog.Logger) *OutboxPoller {
	if tick <= 0 {
		tick = time.Second
	}
	return &OutboxPoller{store: store, writer: writer, tick: tick, batchSize: defaultBatchSize, log: log}
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := p.PublishPending(ctx); err != nil {
				p.log.Error().Err(err).Msg("outbox publish failed")
			}
		case <-ctx.Done():
			return
		}
	}
}

// PublishPending publishes one batch and returns how many events were
// published. It stops at the first failure so later events of the same quote
// are never delivered ahead of an earlier one.
func (p *OutboxPoller) PublishPending(ctx context.Context) (int, error) {
	events, err := p.store.Unpublished(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch outbox events: %w", err)
	}

	published := 0
	for _, ev := range events {
		if err := p.writer.WriteMessages(ctx, message(ev)); err != nil {
			return published, fmt.Errorf("failed to publish outbox event %d: %w", ev.ID, err)
		}
		if err := p.store.MarkPublished(ctx, ev.ID); err != nil {
			return published, fmt.Errorf("failed to mark outbox event %d published: %w", ev.ID, err)
		}
		published++
		p.log.Debug().Int64("event_id", ev.ID).Str("event_type", ev.EventType).
			Str("quote_id", ev.AggregateID.String()).Msg("outbox event published")
	}
	return published, nil
}

func message(ev core.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(ev.AggregateID.String()),
		Value: ev.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.EventType)},
		},
	}
}
