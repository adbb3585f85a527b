package syncer

import (
	"context"
	"log/slog"
	"time"
)

// Runner drives a Synchronizer through a fixed number of passes with a pause
// between consecutive ones. There is no pause after the final pass.
type Runner struct {
	sync     *Synchronizer
	interval time.Duration
	count    int
	log      *slog.Logger
}

func NewRunner(sync *Synchronizer, interval time.Duration, count int, log *slog.Logger) *Runner {
	return &Runner{
		sync:     sync,
		interval: interval,
		count:    count,
		log:      log,
	}
}

// Run executes the configured number of passes. A failed pass does not stop
// the run; the next scheduled pass retries. Cancelling ctx stops the run
// between passes.
func (r *Runner) Run(ctx context.Context) error {
	for i := 1; i <= r.count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.log.Info("synchronization pass", "pass", i, "total", r.count)
		if err := r.sync.Synchronize(); err != nil {
			r.log.Error("synchronization pass failed", "pass", i, "error", err)
		}

		if i == r.count || r.interval <= 0 {
			continue
		}

		r.log.Info("waiting before next synchronization", "interval", r.interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.interval):
		}
	}

	r.log.Info("all synchronizations completed")
	return nil
}
