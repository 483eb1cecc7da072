package solr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Unlimited(t *testing.T) {
	r := NewRateLimiter(0, 0)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		require.NoError(t, r.Wait(ctx))
	}
}

func TestRateLimiter_Throttles(t *testing.T) {
	r := NewRateLimiter(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, r.Wait(ctx))
	assert.Error(t, r.Wait(ctx), "second token is a second away")
}

func TestRateLimiter_Backoff(t *testing.T) {
	r := NewRateLimiter(0, 1)

	r.Backoff(0)
	first := r.retryAt
	assert.WithinDuration(t, time.Now().Add(DefaultBackoff), first, time.Second)

	r.Backoff(time.Millisecond)
	assert.Equal(t, first, r.retryAt, "a shorter back-off never shortens the current one")
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, retryAfter("3"))
	assert.Zero(t, retryAfter(""))
	assert.Zero(t, retryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
