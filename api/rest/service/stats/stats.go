package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/strontium-cloud/strontium/internal/models"
	"github.com/strontium-cloud/strontium/pkg/db"
	"gorm.io/gorm"
)

type Service interface {
	WithDatabase(*gorm.DB) Service
	Summary() (*SummaryResponse, error)
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

type SummaryResponse struct {
	ObservedAt        time.Time        `json:"observed_at"`
	SchedulesByStatus map[string]int64 `json:"schedules_by_status"`
	DueNow            int64            `json:"due_now"`
	RunsByStatus      map[string]int64 `json:"runs_by_status"`
	RecentRuns        []RecentRunEntry `json:"recent_runs"`
}

type RecentRunEntry struct {
	RunID       string    `json:"run_id"`
	ScheduleID  string    `json:"schedule_id"`
	SuiteName   string    `json:"suite_name"`
	Status      string    `json:"status"`
	TriggeredBy string    `json:"triggered_by"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

type statusCount struct {
	Status string
	Count  int64
}

// Summary aggregates a dashboard snapshot: schedule counts by status,
// the backlog of due-but-unclaimed work, run counts by outcome, and
// the most recent run rows joined to their suite names.
func (s *service) Summary() (*SummaryResponse, error) {
	var (
		now  = time.Now().UTC()
		conn = s.connection().WithContext(s.ctx)
		resp = &SummaryResponse{
			ObservedAt:        now,
			SchedulesByStatus: map[string]int64{},
			RunsByStatus:      map[string]int64{},
			RecentRuns:        []RecentRunEntry{},
		}
	)

	var counts []statusCount

	err := conn.Model(&models.Schedule{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		resp.SchedulesByStatus[c.Status] = c.Count
	}

	err = conn.Model(&models.Schedule{}).
		Where("status = ? AND run_at_utc <= ?", models.ScheduleStatusScheduled, now).
		Count(&resp.DueNow).Error
	if err != nil {
		return nil, err
	}

	counts = counts[:0]
	err = conn.Model(&models.ScheduleRun{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		resp.RunsByStatus[c.Status] = c.Count
	}

	recent := make(models.ScheduleRuns, 0)
	err = conn.
		Order("finished_at desc").
		Limit(10).
		Find(&recent).Error
	if err != nil {
		return nil, err
	}

	names, err := s.suiteNames(recent)
	if err != nil {
		return nil, err
	}

	for _, run := range recent {
		resp.RecentRuns = append(resp.RecentRuns, RecentRunEntry{
			RunID:       run.ID.String(),
			ScheduleID:  run.ScheduleID.String(),
			SuiteName:   names[run.ScheduleID],
			Status:      string(run.Status),
			TriggeredBy: string(run.TriggeredBy),
			StartedAt:   run.StartedAt,
			FinishedAt:  run.FinishedAt,
		})
	}

	return resp, nil
}

func (s *service) suiteNames(runs models.ScheduleRuns) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	if len(runs) == 0 {
		return names, nil
	}

	ids := make([]uuid.UUID, 0, len(runs))
	for _, run := range runs {
		if _, ok := names[run.ScheduleID]; !ok {
			names[run.ScheduleID] = ""
			ids = append(ids, run.ScheduleID)
		}
	}

	schedules := make(models.Schedules, 0, len(ids))
	err := s.connection().WithContext(s.ctx).
		Where("id IN ?", ids).
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}

	for _, sched := range schedules {
		names[sched.ID] = sched.SuiteName
	}

	return names, nil
}
