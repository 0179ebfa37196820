package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule fires daily at 09:00 server time.
const DefaultSweepSchedule = "0 9 * * *"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

type DealerLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

type DealerSweep interface {
	Execute(ctx context.Context, dealerProfileID string) error
}

// UnresponsiveSweepWorker warns every dealer about leads left without a
// reply, on a cron schedule.
type UnresponsiveSweepWorker struct {
	dealers    DealerLister
	sweep      DealerSweep
	schedule   cron.Schedule
	// RunOnStart sweeps once before waiting for the first fire time.
	RunOnStart bool
	now        func() time.Time
}

func NewUnresponsiveSweepWorker(dealers DealerLister, sweep DealerSweep, expr string) (*UnresponsiveSweepWorker, error) {
	if expr == "" {
		expr = DefaultSweepSchedule
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", expr, err)
	}
	return &UnresponsiveSweepWorker{
		dealers:    dealers,
		sweep:      sweep,
		schedule:   schedule,
		RunOnStart: false,
		now:        time.Now,
	}, nil
}

// Start blocks until ctx is cancelled.
func (w *UnresponsiveSweepWorker) Start(ctx context.Context) {
	slog.Info("unresponsive lead sweep started")

	if w.RunOnStart {
		w.SweepAll(ctx)
	}

	for {
		wait := w.schedule.Next(w.now()).Sub(w.now())
		timer := time.NewTimer(max(wait, 0))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("unresponsive lead sweep stopped")
			return
		case <-timer.C:
			w.SweepAll(ctx)
		}
	}
}

// SweepAll runs the warning for each dealer. One dealer failing does not
// stop the rest.
func (w *UnresponsiveSweepWorker) SweepAll(ctx context.Context) {
	ids, err := w.dealers.ListIDs(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "list dealers for sweep failed", "error", err)
		return
	}

	failed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if err := w.sweep.Execute(ctx, id); err != nil {
			failed++
			slog.ErrorContext(ctx, "unresponsive lead sweep failed", "dealer_profile_id", id, "error", err)
		}
	}
	slog.InfoContext(ctx, "unresponsive lead sweep finished", "dealers", len(ids), "failed", failed)
}
