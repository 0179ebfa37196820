// Package agent routes platform events to the lead, vehicle and dealer
// automations.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/autovault-agents/internal/entity"
	"github.com/xavierca1/autovault-agents/internal/infra/metrics"
	"github.com/xavierca1/autovault-agents/internal/usecase"
)

const defaultActionTimeout = 30 * time.Second

type LeadAction interface {
	Execute(ctx context.Context, input usecase.LeadActionInput) error
}

type VehicleAction interface {
	Execute(ctx context.Context, vehicleID string) error
}

type DealerAction interface {
	Execute(ctx context.Context, dealerProfileID string) error
}

type Actions struct {
	AnalyzeSentiment LeadAction
	AutoReply        LeadAction
	NotifyHotLead    LeadAction
	CheckTrending    VehicleAction
	WarnUnresponsive DealerAction
}

type Options struct {
	// ActionTimeout bounds events scheduled through Emit.
	ActionTimeout time.Duration
	// InlineSweepRate is the chance that a LEAD_CREATED event also sweeps
	// the dealer's unresponsive leads. Zero leaves it to the scheduler.
	InlineSweepRate float64
	// Float returns a value in [0, 1). Defaults to math/rand.
	Float func() float64
}

// Processor is safe for concurrent use. It also implements
// usecase.EventEmitter, so actions can feed follow-up events back in.
type Processor struct {
	actions  Actions
	timeout  time.Duration
	rate     float64
	float    func() float64
	inflight sync.WaitGroup
}

func NewProcessor(actions Actions, opts Options) *Processor {
	p := &Processor{
		actions: actions,
		timeout: opts.ActionTimeout,
		rate:    opts.InlineSweepRate,
		float:   opts.Float,
	}
	if p.timeout <= 0 {
		p.timeout = defaultActionTimeout
	}
	if p.float == nil {
		p.float = rand.Float64
	}
	return p
}

// Bind sets the actions after construction, for use cases that need the
// processor as their emitter.
func (p *Processor) Bind(actions Actions) {
	p.actions = actions
}

// Process runs every action the event triggers and waits for them. Failures
// are logged and counted, never returned.
func (p *Processor) Process(ctx context.Context, event entity.PlatformEvent) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordAction("processor", "panic")
			slog.ErrorContext(ctx, "event processing panicked", "event_type", event.Type, "entity_id", event.EntityID, "panic", r)
		}
	}()

	metrics.RecordEvent(eventLabel(event.Type))
	slog.DebugContext(ctx, "processing event", "event_type", event.Type, "entity_id", event.EntityID)

	switch event.Type {
	case entity.EventLeadCreated:
		p.onLeadCreated(ctx, event)
	case entity.EventSentimentAnalyzed:
		p.onSentimentAnalyzed(ctx, event)
	case entity.EventLeadStatusChanged:
		// reserved
	case entity.EventVehicleWishlisted:
		p.run(ctx, "check_trending", p.actions.CheckTrending != nil, func(ctx context.Context) error {
			return p.actions.CheckTrending.Execute(ctx, event.EntityID)
		})
	}
}

// eventLabel keeps the metric cardinality bounded: the type comes from callers.
func eventLabel(t entity.EventType) string {
	if t.Known() {
		return string(t)
	}
	return metrics.UnknownEventType
}

func (p *Processor) onLeadCreated(ctx context.Context, event entity.PlatformEvent) {
	if event.DealerProfileID == "" {
		return
	}
	input := usecase.LeadActionInput{LeadID: event.EntityID, DealerProfileID: event.DealerProfileID}

	// All settled: a failing action never cancels its sibling.
	var g errgroup.Group
	g.Go(func() error {
		p.run(ctx, "analyze_sentiment", p.actions.AnalyzeSentiment != nil, func(ctx context.Context) error {
			return p.actions.AnalyzeSentiment.Execute(ctx, input)
		})
		return nil
	})
	g.Go(func() error {
		p.run(ctx, "auto_reply", p.actions.AutoReply != nil, func(ctx context.Context) error {
			return p.actions.AutoReply.Execute(ctx, input)
		})
		return nil
	})
	_ = g.Wait()

	if p.rate > 0 && p.float() < p.rate {
		p.run(ctx, "warn_unresponsive", p.actions.WarnUnresponsive != nil, func(ctx context.Context) error {
			return p.actions.WarnUnresponsive.Execute(ctx, event.DealerProfileID)
		})
	}
}

func (p *Processor) onSentimentAnalyzed(ctx context.Context, event entity.PlatformEvent) {
	if event.DealerProfileID == "" || event.MetaString("label") != string(entity.SentimentHot) {
		return
	}
	input := usecase.LeadActionInput{LeadID: event.EntityID, DealerProfileID: event.DealerProfileID}
	p.run(ctx, "notify_hot_lead", p.actions.NotifyHotLead != nil, func(ctx context.Context) error {
		return p.actions.NotifyHotLead.Execute(ctx, input)
	})
}

func (p *Processor) run(ctx context.Context, name string, configured bool, fn func(context.Context) error) {
	if !configured {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordAction(name, "panic")
			slog.ErrorContext(ctx, "action panicked", "action", name, "panic", r)
		}
	}()

	start := time.Now()
	if err := fn(ctx); err != nil {
		metrics.RecordAction(name, "error")
		slog.ErrorContext(ctx, "action failed", "action", name, "error", err, "duration", time.Since(start))
		return
	}
	metrics.RecordAction(name, "ok")
}

// Emit schedules the event on its own goroutine and returns immediately. The
// caller's cancellation does not reach the scheduled work.
func (p *Processor) Emit(ctx context.Context, event entity.PlatformEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	detached := context.WithoutCancel(ctx)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		ctx, cancel := context.WithTimeout(detached, p.timeout)
		defer cancel()
		p.Process(ctx, event)
	}()
	return nil
}

// Wait blocks until every event scheduled through Emit has finished,
// including follow-ups emitted while waiting.
func (p *Processor) Wait() {
	p.inflight.Wait()
}
