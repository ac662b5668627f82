package ingest

import (
	"context"
	"time"
)

// Pacer spaces out consecutive source requests. It exists as an interface so
// the fixed-interval courtesy delay can later be swapped for adaptive
// backoff without touching the orchestration loop.
type Pacer interface {
	Wait(ctx context.Context) error
}

// IntervalPacer enforces a minimum gap between calls to Wait. The first call
// returns immediately.
//
// Not safe for concurrent use: last is unsynchronized. That holds today
// because the run lock serializes ingestion runs and the loop inside a run
// is sequential; a parallel fan-out across pairs would need a mutex here.
type IntervalPacer struct {
	interval time.Duration
	last     time.Time
}

// NewIntervalPacer returns a pacer with the given minimum gap.
func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{interval: interval}
}

// Wait blocks until at least the configured interval has elapsed since the
// previous call, or until ctx is cancelled.
func (p *IntervalPacer) Wait(ctx context.Context) error {
	if !p.last.IsZero() {
		if remaining := p.interval - time.Since(p.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	p.last = time.Now()
	return nil
}
