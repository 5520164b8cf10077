package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient("://bad")
	assert.Error(t, err)
}

func TestClient_EnqueueExpireRejectsBadDate(t *testing.T) {
	// asynq dials lazily, so no server is needed to reach the date check.
	c, err := NewClient("redis://localhost:6379/0")
	require.NoError(t, err)
	defer c.Close()

	err = c.EnqueueExpire(context.Background(), "03/01/2025")
	assert.ErrorContains(t, err, "invalid asOf")
}
