package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream 502")

func failing(calls *int) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		*calls++
		return "", errUpstream
	}
}

func TestRunReturnsResult(t *testing.T) {
	r := NewRegistry(Settings{})
	out, err := r.Run(context.Background(), "openai", func(context.Context) (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "closed", r.State("openai"))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	r := NewRegistry(Settings{FailureThreshold: 3, OpenTimeout: time.Minute})
	ctx := context.Background()
	calls := 0

	for i := 0; i < 3; i++ {
		_, err := r.Run(ctx, "openai", failing(&calls))
		assert.ErrorIs(t, err, errUpstream)
	}
	assert.Equal(t, "open", r.State("openai"))

	_, err := r.Run(ctx, "openai", failing(&calls))
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 3, calls, "open breaker must short-circuit")
}

func TestBreakerKeysAreIndependent(t *testing.T) {
	r := NewRegistry(Settings{FailureThreshold: 1, OpenTimeout: time.Minute})
	ctx := context.Background()
	calls := 0

	_, _ = r.Run(ctx, "openai", failing(&calls))
	assert.Equal(t, "open", r.State("openai"))

	out, err := r.Run(ctx, "maps", func(context.Context) (string, error) { return "fine", nil })
	require.NoError(t, err)
	assert.Equal(t, "fine", out)
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	r := NewRegistry(Settings{FailureThreshold: 1, OpenTimeout: 20 * time.Millisecond})
	ctx := context.Background()
	calls := 0

	_, _ = r.Run(ctx, "openai", failing(&calls))
	require.Equal(t, "open", r.State("openai"))

	time.Sleep(40 * time.Millisecond)

	out, err := r.Run(ctx, "openai", func(context.Context) (string, error) { return "back", nil })
	require.NoError(t, err)
	assert.Equal(t, "back", out)
	assert.Equal(t, "closed", r.State("openai"))
}

func TestRunHonoursCancelledContext(t *testing.T) {
	r := NewRegistry(Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := r.Run(ctx, "openai", func(context.Context) (string, error) {
		called = true
		return "", nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
