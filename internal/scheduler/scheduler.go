// Package scheduler wires up the cron job that periodically triggers a full
// ingestion run. It is purely a caller: it invokes the same runner the HTTP
// trigger uses and relays the summary into the log verbatim.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"hirewise/jobs-service/internal/ingest"
)

// Scheduler wraps robfig/cron and manages the ingestion timer.
type Scheduler struct {
	cron   *cron.Cron
	runner ingest.JobRunner
	spec   string // cron spec, e.g. "@every 12h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(runner ingest.JobRunner, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		runner: runner,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also fires one run
// immediately so the board is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runOnce(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runOnce triggers a single ingestion run and relays the result.
func (s *Scheduler) runOnce(ctx context.Context) {
	sum, err := s.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, ingest.ErrRunInProgress) {
			log.Println("[scheduler] Skipping tick — run already in progress")
			return
		}
		log.Printf("[scheduler] Ingestion run error: %v", err)
		return
	}
	log.Printf("[scheduler] %s", sum.Message())
}
