// Package reminder nudges agents who still have maritime collision questions
// to answer.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/config"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/dispute"
	"github.com/adhocore/gronx"
)

type Reminder struct {
	svc      *dispute.Service
	schedule string
}

func New(svc *dispute.Service, cfg config.RemindersConfig) *Reminder {
	return &Reminder{
		svc:      svc,
		schedule: cfg.Schedule,
	}
}

// Start sweeps on every tick of the cron schedule until ctx is done. An empty
// schedule returns immediately.
func (r *Reminder) Start(ctx context.Context) {
	if r.schedule == "" {
		return
	}

	slog.Info("reminders started", "schedule", r.schedule)

	for {
		next, err := gronx.NextTick(r.schedule, false)
		if err != nil {
			slog.Error("invalid reminder schedule", "schedule", r.schedule, "error", err)
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("reminders stopped")
			return
		case <-timer.C:
			if n, err := r.Sweep(ctx); err != nil {
				slog.Error("reminder sweep failed", "error", err)
			} else if n > 0 {
				slog.Info("reminders sent", "count", n)
			}
		}
	}
}

// Sweep notifies every agent with pending questions in a dispute that is
// still being answered, and returns how many were notified.
func (r *Reminder) Sweep(ctx context.Context) (int, error) {
	outstanding, err := r.svc.Outstanding(ctx)
	if err != nil {
		return 0, fmt.Errorf("list outstanding agents: %w", err)
	}
	for _, o := range outstanding {
		r.svc.Notify(o.DisputeID, o.AgentID, Message(o.Questions))
	}
	return len(outstanding), nil
}

func Message(pending int) string {
	if pending == 1 {
		return "You still have 1 maritime collision question to answer."
	}
	return fmt.Sprintf("You still have %d maritime collision questions to answer.", pending)
}
