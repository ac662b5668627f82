package ingest

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
)

// ErrRunInProgress is returned when a trigger fires while another ingestion
// run still holds the lock.
var ErrRunInProgress = errors.New("an ingestion run is already in progress")

// JobRunner is what the HTTP handler and the cron scheduler invoke.
type JobRunner interface {
	Run(ctx context.Context) (Summary, error)
}

// Runner serializes orchestrator runs behind the shared lock so the cron
// trigger and the HTTP trigger cannot interleave upserts.
type Runner struct {
	orch *Orchestrator
	lock Locker
}

// NewRunner wraps the orchestrator with the lock. lock may be nil, in which
// case runs are not serialized (tests).
func NewRunner(orch *Orchestrator, lock Locker) *Runner {
	return &Runner{orch: orch, lock: lock}
}

// Run acquires the lock, executes one ingestion cycle and logs its summary.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.lock != nil {
		ok, err := r.lock.Acquire(ctx)
		if err != nil {
			return Summary{}, err
		}
		if !ok {
			return Summary{}, ErrRunInProgress
		}
		defer func() {
			if err := r.lock.Release(ctx); err != nil {
				log.Printf("[ingest] Lock release failed: %v", err)
			}
		}()
	}

	runID := uuid.NewString()[:8]
	log.Printf("[ingest] Run %s started", runID)

	sum, err := r.orch.Run(ctx)
	if err != nil {
		log.Printf("[ingest] Run %s aborted: %v", runID, err)
		return sum, err
	}

	log.Printf("[ingest] Run %s complete — added=%d updated=%d pairsFailed=%d swept=%d",
		runID, sum.JobsAdded, sum.JobsUpdated, sum.PairsFailed, sum.Swept)
	return sum, nil
}
