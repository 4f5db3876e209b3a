package worker

import (
	"context"
	"time"

	"github.com/strontium-cloud/strontium/internal/models"
	"github.com/strontium-cloud/strontium/pkg/db"
	"gorm.io/gorm"
)

type Service interface {
	WithDatabase(*gorm.DB) Service
	Status() (*StatusResponse, error)
}

type service struct {
	ctx context.Context
	db  *gorm.DB
}

func New(ctx context.Context) Service {
	return &service{ctx: ctx}
}

func (s *service) WithDatabase(conn *gorm.DB) Service {
	if conn == nil {
		return s
	}
	s.db = conn
	return s
}

func (s *service) connection() *gorm.DB {
	if s.db == nil {
		s.db = db.Connection()
	}
	return s.db
}

type StatusResponse struct {
	ObservedAt    time.Time     `json:"observed_at"`
	ActiveWorkers []WorkerEntry `json:"active_workers"`
	InFlight      int64         `json:"in_flight"`
	QueueDepth    int64         `json:"queue_depth"`
	NextDueAt     *time.Time    `json:"next_due_at,omitempty"`
}

type WorkerEntry struct {
	WorkerID string    `json:"worker_id"`
	Claimed  int64     `json:"claimed"`
	Running  int64     `json:"running"`
	OldestAt time.Time `json:"oldest_claim_at"`
	LatestAt time.Time `json:"latest_claim_at"`
}

// Status reports which workers currently hold claims, derived purely
// from claim stamps on schedule rows. Workers do not register
// themselves anywhere; an idle worker is indistinguishable from a
// stopped one.
func (s *service) Status() (*StatusResponse, error) {
	var (
		now  = time.Now().UTC()
		conn = s.connection().WithContext(s.ctx)
		resp = &StatusResponse{
			ObservedAt:    now,
			ActiveWorkers: []WorkerEntry{},
		}
	)

	claims := make(models.Schedules, 0)
	err := conn.
		Where("status IN ?", []models.ScheduleStatus{
			models.ScheduleStatusClaimed,
			models.ScheduleStatusRunning,
		}).
		Order("claimed_by asc, claimed_at asc").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}

	byWorker := map[string]*WorkerEntry{}
	order := make([]string, 0, len(claims))

	for _, sched := range claims {
		if sched.ClaimedAt == nil {
			continue
		}

		entry, ok := byWorker[sched.ClaimedBy]
		if !ok {
			entry = &WorkerEntry{
				WorkerID: sched.ClaimedBy,
				OldestAt: *sched.ClaimedAt,
				LatestAt: *sched.ClaimedAt,
			}
			byWorker[sched.ClaimedBy] = entry
			order = append(order, sched.ClaimedBy)
		}

		switch sched.Status {
		case models.ScheduleStatusClaimed:
			entry.Claimed++
		case models.ScheduleStatusRunning:
			entry.Running++
			resp.InFlight++
		}

		if sched.ClaimedAt.Before(entry.OldestAt) {
			entry.OldestAt = *sched.ClaimedAt
		}
		if sched.ClaimedAt.After(entry.LatestAt) {
			entry.LatestAt = *sched.ClaimedAt
		}
	}

	for _, id := range order {
		resp.ActiveWorkers = append(resp.ActiveWorkers, *byWorker[id])
	}

	err = conn.Model(&models.Schedule{}).
		Where("status = ? AND run_at_utc <= ?", models.ScheduleStatusScheduled, now).
		Count(&resp.QueueDepth).Error
	if err != nil {
		return nil, err
	}

	var next models.Schedule
	err = conn.Model(&models.Schedule{}).
		Where("status = ?", models.ScheduleStatusScheduled).
		Order("run_at_utc asc").
		First(&next).Error
	switch err {
	case nil:
		resp.NextDueAt = &next.RunAtUTC
	case gorm.ErrRecordNotFound:
	default:
		return nil, err
	}

	return resp, nil
}
