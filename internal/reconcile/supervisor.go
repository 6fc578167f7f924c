// Package reconcile runs the independent background loops that keep
// shell-side effects (borders, stackbars, transparency, orphaned
// handles, monitor topology) in sync with the state engine, per
// spec.md §4.7. Each loop is a Reconciler: given a tick, it reads a
// consistent snapshot of wm.WindowManager and performs idempotent
// effects against a platform.Backend.
package reconcile

import (
	"context"
	"log/slog"
	"time"
)

// Reconciler is one independently-supervised background loop.
type Reconciler interface {
	// Tick performs one reconciliation pass. Errors are logged by the
	// supervisor, not escalated: a single bad pass must not end the
	// loop, only the next tick gets a chance to self-correct.
	Tick() error
	// Name identifies the reconciler in logs.
	Name() string
}

// Supervise runs r on a ticker until ctx is cancelled, recovering from
// panics so one reconciler's bug cannot take down the daemon. Modeled
// on the teacher's daemon.Reconciler.Run ticker-plus-recover loop,
// generalized to every reconciler instead of just orphan cleanup.
func Supervise(ctx context.Context, r Reconciler, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("reconciler started", "name", r.Name(), "interval", interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("reconciler stopped", "name", r.Name())
			return
		case <-ticker.C:
			tick(r, logger)
		}
	}
}

func tick(r Reconciler, logger *slog.Logger) {
	defer func() {
		if v := recover(); v != nil {
			logger.Error("reconciler panic recovered", "name", r.Name(), "panic", v)
		}
	}()
	if err := r.Tick(); err != nil {
		logger.Warn("reconciler tick failed", "name", r.Name(), "error", err)
	}
}
