// Package breaker keeps one circuit breaker per external dependency key.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/xavierca1/autovault-agents/internal/infra/metrics"
)

// ErrOpen is returned without calling the operation while the breaker for
// the key is open or its half-open probe slots are taken.
var ErrOpen = errors.New("circuit breaker open")

type Settings struct {
	FailureThreshold uint32        // consecutive failures before opening
	OpenTimeout      time.Duration // time spent open before a probe
	HalfOpenProbes   uint32
}

func DefaultSettings() Settings {
	return Settings{
		FailureThreshold: 5,
		OpenTimeout:      60 * time.Second,
		HalfOpenProbes:   1,
	}
}

type Registry struct {
	mu       sync.Mutex
	settings Settings
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewRegistry(s Settings) *Registry {
	d := DefaultSettings()
	if s.FailureThreshold == 0 {
		s.FailureThreshold = d.FailureThreshold
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = d.OpenTimeout
	}
	if s.HalfOpenProbes == 0 {
		s.HalfOpenProbes = d.HalfOpenProbes
	}
	return &Registry{
		settings: s,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Run executes op through the breaker registered under key.
func (r *Registry) Run(ctx context.Context, key string, op func(context.Context) (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out, err := r.get(key).Execute(func() (interface{}, error) {
		return op(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %s", ErrOpen, key)
	}
	if err != nil {
		return "", err
	}
	s, _ := out.(string)
	return s, nil
}

// State reports the breaker state for key ("closed" for unknown keys).
func (r *Registry) State(key string) string {
	r.mu.Lock()
	cb, ok := r.breakers[key]
	r.mu.Unlock()
	if !ok {
		return gobreaker.StateClosed.String()
	}
	return cb.State().String()
}

func (r *Registry) get(key string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[key]; ok {
		return cb
	}

	threshold := r.settings.FailureThreshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        key,
		MaxRequests: r.settings.HalfOpenProbes,
		Timeout:     r.settings.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state transition",
				"key", name,
				"from", from.String(),
				"to", to.String())
			metrics.RecordBreakerTransition(name, to.String())
		},
	})
	r.breakers[key] = cb
	return cb
}
