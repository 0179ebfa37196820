package usecase

import (
	"context"

	"github.com/xavierca1/autovault-agents/internal/infra/ai"
)

// BreakerKey is the circuit breaker guarding the completion API.
const BreakerKey = "openai"

// Assistant routes completion calls through the breaker. A nil Assistant or
// one without a client is simply unavailable.
type Assistant struct {
	client  Completer
	breaker Breaker
}

func NewAssistant(client Completer, breaker Breaker) *Assistant {
	return &Assistant{client: client, breaker: breaker}
}

func (a *Assistant) Available() bool {
	return a != nil && a.client != nil
}

func (a *Assistant) Complete(ctx context.Context, req ai.Request) (string, error) {
	if !a.Available() {
		return "", ai.ErrUnavailable
	}
	if a.breaker == nil {
		return a.client.Complete(ctx, req)
	}
	return a.breaker.Run(ctx, BreakerKey, func(ctx context.Context) (string, error) {
		return a.client.Complete(ctx, req)
	})
}
