package worker

import (
	"context"
	"errors"
	"time"

	"github.com/strontium-cloud/strontium/internal/launcher"
	"github.com/strontium-cloud/strontium/internal/metrics"
	"github.com/strontium-cloud/strontium/internal/models"
	"github.com/strontium-cloud/strontium/internal/recurrence"
	"github.com/strontium-cloud/strontium/internal/schedule"
	"github.com/strontium-cloud/strontium/internal/tz"
	"github.com/strontium-cloud/strontium/pkg/log"
)

type executor struct {
	store    *schedule.Store
	launcher launcher.Launcher
}

// NewExecutor wires the launcher to the store: claimed -> running ->
// launch -> record outcome and decide the schedule's next state.
func NewExecutor(store *schedule.Store, l launcher.Launcher) ScheduleExecutor {
	if store == nil {
		panic("executor requires schedule store")
	}
	if l == nil {
		panic("executor requires a launcher")
	}

	return (&executor{store: store, launcher: l}).Execute
}

func (e *executor) Execute(ctx context.Context, sched *models.Schedule) {
	if sched == nil {
		return
	}

	if err := e.store.MarkRunning(ctx, sched.ID, sched.ClaimedBy); err != nil {
		if errors.Is(err, schedule.ErrClaimLost) {
			log.Info("schedule claim changed before launch; skipping",
				"schedule_id", sched.ID,
				"worker_id", sched.ClaimedBy,
			)
			return
		}
		log.Error("failed to mark schedule running",
			"schedule_id", sched.ID,
			"error", err,
		)
		return
	}

	metrics.ExecutionsActive.Inc()
	defer metrics.ExecutionsActive.Dec()

	result, err := e.launcher.Run(ctx, sched)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Worker shutdown mid-run; the stale-claim pass of a
			// surviving worker will recover this schedule.
			log.Info("execution canceled", "schedule_id", sched.ID)
			return
		}

		now := time.Now().UTC()
		result = &launcher.Result{
			Status:     models.RunStatusFailed,
			ExitCode:   -1,
			Stderr:     err.Error(),
			StartedAt:  now,
			FinishedAt: now,
		}
	}

	run := &models.ScheduleRun{
		Status:        result.Status,
		ExitCode:      result.ExitCode,
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
		StdoutExcerpt: result.Stdout,
		StderrExcerpt: result.Stderr,
		ArtifactsPath: result.ArtifactsPath,
		TriggeredBy:   models.TriggerSourceSchedule,
		ClaimedBy:     sched.ClaimedBy,
	}
	if sched.ManualRequested {
		run.TriggeredBy = models.TriggerSourceManual
	}

	// Recording the outcome must survive a shutdown that races the
	// run's completion, so it is never bound to the worker context.
	if err := e.store.CompleteRun(context.Background(), sched, run, e.nextRunAt(sched)); err != nil {
		if errors.Is(err, schedule.ErrClaimLost) {
			log.Info("schedule claim changed mid-run; discarding result",
				"schedule_id", sched.ID,
				"worker_id", sched.ClaimedBy,
			)
			return
		}
		log.Error("failed to record run outcome",
			"schedule_id", sched.ID,
			"error", err,
		)
		return
	}

	metrics.ExecutionsTotal.WithLabelValues(string(result.Status)).Inc()
	metrics.ExecutionDurationSeconds.
		WithLabelValues(string(result.Status)).
		Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())

	log.Info("execution recorded",
		"schedule_id", sched.ID,
		"suite_id", sched.SuiteID,
		"status", result.Status,
		"exit_code", result.ExitCode,
	)
}

// nextRunAt computes the re-arm instant for recurring schedules, or
// zero for one-shots. The recurrence is evaluated in the schedule's
// own zone so cron wall-clock fields track its DST.
func (e *executor) nextRunAt(sched *models.Schedule) time.Time {
	rule, err := recurrence.Parse(sched.Recurrence)
	if err != nil || !rule.Recurs() {
		if err != nil {
			log.Error("invalid recurrence on persisted schedule",
				"schedule_id", sched.ID,
				"recurrence", sched.Recurrence,
				"error", err,
			)
		}
		return time.Time{}
	}

	loc, err := tz.Location(sched.Timezone)
	if err != nil {
		loc = time.UTC
	}

	return rule.NextAfter(time.Now().UTC(), loc)
}
