// Package worker polls the schedule store for due work and dispatches
// claimed schedules onto a bounded execution pool. Multiple worker
// processes may poll the same store; the store's atomic claim is the
// only coordination between them.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/strontium-cloud/strontium/internal/models"
	"github.com/strontium-cloud/strontium/pkg/log"
)

// Claimer is the subset of the schedule store the poll loop needs.
type Claimer interface {
	ClaimDue(ctx context.Context, limit int, workerID string) (models.Schedules, error)
	Release(ctx context.Context, id uuid.UUID, workerID string) error
	ReclaimStale(ctx context.Context, grace time.Duration) (released, failed int64, err error)
}

// ScheduleExecutor runs one claimed schedule to completion.
type ScheduleExecutor func(ctx context.Context, sched *models.Schedule)

type Worker struct {
	id           string
	claimer      Claimer
	pool         *Pool
	pollInterval time.Duration
	claimGrace   time.Duration
	executor     ScheduleExecutor
}

func New(id string, claimer Claimer, pool *Pool, pollInterval, claimGrace time.Duration, executor ScheduleExecutor) *Worker {
	if claimer == nil {
		panic("worker requires a claimer")
	}
	if id == "" {
		id = Identity()
	}
	if pool == nil {
		pool = NewPool(1)
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if executor == nil {
		executor = func(context.Context, *models.Schedule) {}
	}

	return &Worker{
		id:           id,
		claimer:      claimer,
		pool:         pool,
		pollInterval: pollInterval,
		claimGrace:   claimGrace,
		executor:     executor,
	}
}

func (w *Worker) ID() string {
	return w.id
}

// Run drives the poll loop until ctx is cancelled, then waits for
// in-flight executions to drain. Store errors are transient: the
// loop logs and retries on the next tick rather than crashing the
// process.
func (w *Worker) Run(ctx context.Context) error {
	log.Info("worker polling",
		"worker_id", w.id,
		"interval", w.pollInterval,
		"max_concurrent", cap(w.pool.sem),
	)

	for {
		select {
		case <-ctx.Done():
			w.pool.Wait()
			return nil
		default:
		}

		w.tick(ctx)

		if err := sleepWithContext(ctx, w.pollInterval); err != nil {
			w.pool.Wait()
			return nil
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	if w.claimGrace > 0 {
		if released, failed, err := w.claimer.ReclaimStale(ctx, w.claimGrace); err != nil {
			if ctx.Err() == nil {
				log.Error("failed to reclaim stale schedules", "worker_id", w.id, "error", err)
			}
		} else if released > 0 || failed > 0 {
			log.Warn("reclaimed stale claims",
				"worker_id", w.id,
				"released", released,
				"failed", failed,
			)
		}
	}

	// Claim exactly what can be dispatched right now; a fixed batch
	// size would starve other workers while rows sit undispatched.
	capacity := w.pool.Capacity()
	if capacity == 0 {
		return
	}

	claimed, err := w.claimer.ClaimDue(ctx, capacity, w.id)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("failed to claim due schedules", "worker_id", w.id, "error", err)
		}
		return
	}

	for _, sched := range claimed {
		sched := sched
		if w.pool.TrySubmit(func() { w.executor(ctx, sched) }) {
			continue
		}

		// Saturated between claim and dispatch: hand the claim back
		// immediately instead of holding it.
		if err := w.claimer.Release(ctx, sched.ID, w.id); err != nil && ctx.Err() == nil {
			log.Error("failed to release undispatched claim",
				"worker_id", w.id,
				"schedule_id", sched.ID,
				"error", err,
			)
		}
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
