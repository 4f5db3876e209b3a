// Package schedule owns the worker-side lifecycle of persisted
// schedules: atomic claims, stale-claim reclamation, and recording
// finished runs. The database is the only coordination point between
// workers; every transition here is a conditional update whose
// RowsAffected result decides a race. This assumes a single
// transactional datastore instance. Running against multiple
// replicas would require SELECT ... FOR UPDATE SKIP LOCKED or an
// external lease service instead.
package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/strontium-cloud/strontium/internal/metrics"
	"github.com/strontium-cloud/strontium/internal/models"
	"github.com/strontium-cloud/strontium/internal/tz"
	"gorm.io/gorm"
)

var (
	// ErrClaimLost signals that another worker took over the claim,
	// usually after a stale-claim reclamation.
	ErrClaimLost = errors.New("schedule claim lost")
)

// candidateOverscan bounds how many extra due rows a claim
// transaction inspects to compensate for races lost mid-batch.
const candidateOverscan = 2

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	if db == nil {
		panic("schedule store requires a database")
	}
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// ClaimDue atomically claims up to limit due schedules for workerID,
// ordered by priority then due time. Two workers racing on the same
// row can never both receive it: the conditional update re-checks
// the scheduled state per row and a zero RowsAffected means the race
// was lost, which is not an error. Returns the claimed rows in full
// so the caller needs no second read.
func (s *Store) ClaimDue(ctx context.Context, limit int, workerID string) (models.Schedules, error) {
	if limit <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	claimed := models.Schedules{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []models.Schedule
		err := tx.
			Where(
				"status = ? AND run_at_utc <= ? AND claimed_at IS NULL",
				models.ScheduleStatusScheduled,
				now,
			).
			Order("priority DESC, run_at_utc ASC").
			Limit(limit * candidateOverscan).
			Find(&candidates).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		for i := range candidates {
			if len(claimed) == limit {
				break
			}

			result := tx.Model(&models.Schedule{}).
				Where(
					"id = ? AND status = ? AND claimed_at IS NULL",
					candidates[i].ID,
					models.ScheduleStatusScheduled,
				).
				Updates(map[string]interface{}{
					"status":     models.ScheduleStatusClaimed,
					"claimed_by": workerID,
					"claimed_at": now,
				})
			if result.Error != nil {
				if isClaimContentionErr(result.Error) {
					metrics.ClaimContentionTotal.WithLabelValues(workerID).Inc()
				}
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Another worker won the race on this row.
				metrics.ClaimContentionTotal.WithLabelValues(workerID).Inc()
				continue
			}

			row := &models.Schedule{}
			if err := tx.First(row, "id = ?", candidates[i].ID).Error; err != nil {
				return err
			}
			claimed = append(claimed, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(claimed) > 0 {
		metrics.ScheduleClaimsTotal.WithLabelValues(workerID).Add(float64(len(claimed)))
	}

	return claimed, nil
}

// Release hands a claimed-but-undispatched schedule straight back to
// the due pool. It is used when the local pool saturates and must
// not count against retry accounting: nothing ran.
func (s *Store) Release(ctx context.Context, id uuid.UUID, workerID string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Schedule{}).
		Where("id = ? AND status = ? AND claimed_by = ?", id, models.ScheduleStatusClaimed, workerID).
		Updates(map[string]interface{}{
			"status":     models.ScheduleStatusScheduled,
			"claimed_by": "",
			"claimed_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClaimLost
	}
	return nil
}

// MarkRunning transitions a schedule this worker claimed into the
// running state, stamped just before the child process is spawned.
func (s *Store) MarkRunning(ctx context.Context, id uuid.UUID, workerID string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Schedule{}).
		Where("id = ? AND status = ? AND claimed_by = ?", id, models.ScheduleStatusClaimed, workerID).
		Update("status", models.ScheduleStatusRunning)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClaimLost
	}
	return nil
}

// ReclaimStale releases claims older than grace back to scheduled,
// incrementing retry_count. A schedule whose retries are already
// exhausted moves to failed instead and never re-arms. Both claimed
// and running rows are eligible: a worker that crashed mid-run leaves
// the same stale stamp behind, so grace must exceed the execution
// timeout.
func (s *Store) ReclaimStale(ctx context.Context, grace time.Duration) (released, failed int64, err error) {
	cutoff := time.Now().UTC().Add(-grace)
	inFlight := []models.ScheduleStatus{
		models.ScheduleStatusClaimed,
		models.ScheduleStatusRunning,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Schedule{}).
			Where(
				"status IN ? AND claimed_at IS NOT NULL AND claimed_at < ? AND retry_count >= max_retries",
				inFlight,
				cutoff,
			).
			Updates(map[string]interface{}{
				"status":     models.ScheduleStatusFailed,
				"claimed_by": "",
				"claimed_at": nil,
			})
		if result.Error != nil {
			return result.Error
		}
		failed = result.RowsAffected

		result = tx.Model(&models.Schedule{}).
			Where(
				"status IN ? AND claimed_at IS NOT NULL AND claimed_at < ? AND retry_count < max_retries",
				inFlight,
				cutoff,
			).
			Updates(map[string]interface{}{
				"status":      models.ScheduleStatusScheduled,
				"claimed_by":  "",
				"claimed_at":  nil,
				"retry_count": gorm.Expr("retry_count + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		released = result.RowsAffected

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	if released > 0 {
		metrics.StaleClaimsReleasedTotal.Add(float64(released))
	}
	if failed > 0 {
		metrics.StaleClaimsExhaustedTotal.Add(float64(failed))
	}

	return released, failed, nil
}

// CompleteRun finalizes one execution in a single transaction: the
// owning schedule's claim is cleared and its next state decided,
// then the immutable run row is written. nextRunAt re-arms a
// recurring schedule when non-zero; a schedule cancelled while the
// run was in flight stays cancelled and never re-arms. Returns
// ErrClaimLost without recording anything when another worker took
// over the claim.
func (s *Store) CompleteRun(ctx context.Context, sched *models.Schedule, run *models.ScheduleRun, nextRunAt time.Time) error {
	now := time.Now().UTC()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current := &models.Schedule{}
		if err := tx.First(current, "id = ?", sched.ID).Error; err != nil {
			return err
		}
		if current.ClaimedBy != sched.ClaimedBy {
			return ErrClaimLost
		}

		updates := map[string]interface{}{
			"claimed_by":       "",
			"claimed_at":       nil,
			"manual_requested": false,
		}

		switch {
		case current.Status == models.ScheduleStatusCancelled:
			// Advisory cancellation: the run finished and is recorded,
			// but the schedule neither re-arms nor changes state.
		case !nextRunAt.IsZero():
			local, err := tz.FromUTC(nextRunAt, current.Timezone)
			if err != nil {
				return err
			}
			updates["status"] = models.ScheduleStatusScheduled
			updates["run_at_utc"] = nextRunAt
			updates["run_at_local"] = local
		case run.Status == models.RunStatusCompleted:
			updates["status"] = models.ScheduleStatusCompleted
		default:
			updates["status"] = models.ScheduleStatusFailed
		}

		result := tx.Model(&models.Schedule{}).
			Where("id = ? AND claimed_by = ?", sched.ID, sched.ClaimedBy).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrClaimLost
		}

		if run.ID == uuid.Nil {
			run.ID = uuid.New()
		}
		run.ScheduleID = sched.ID
		run.CreatedAt = now

		return tx.Create(run).Error
	})
}

// RunHistory returns the most recent finished runs for a schedule.
func (s *Store) RunHistory(ctx context.Context, scheduleID uuid.UUID, limit int) (models.ScheduleRuns, error) {
	if limit <= 0 {
		limit = 20
	}

	runs := models.ScheduleRuns{}
	err := s.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("finished_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

func isClaimContentionErr(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}
