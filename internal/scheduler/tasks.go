// Package scheduler runs the periodic quote expiry sweep on asynq.
package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TaskExpireQuotes = "quotes:expire"

// ExpireQuotesPayload optionally pins the sweep date. An empty AsOf means
// the worker's current date.
type ExpireQuotesPayload struct {
	AsOf string `json:"asOf,omitempty"`
}

func NewExpireQuotesTask(payload ExpireQuotesPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpireQuotes, data), nil
}

func ParseExpireQuotesPayload(task *asynq.Task) (ExpireQuotesPayload, error) {
	var payload ExpireQuotesPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ExpireQuotesPayload{}, err
	}
	return payload, nil
}

// asOf resolves the sweep date, defaulting to now.
func (p ExpireQuotesPayload) asOf(now time.Time) (time.Time, error) {
	if p.AsOf == "" {
		return now, nil
	}
	t, err := time.Parse("2006-01-02", p.AsOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid asOf %q: %w", p.AsOf, err)
	}
	return t, nil
}
