package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/strontium-cloud/strontium/api/rest/apierror"
	"github.com/strontium-cloud/strontium/internal/models"
	"github.com/strontium-cloud/strontium/internal/recurrence"
	schedulestore "github.com/strontium-cloud/strontium/internal/schedule"
	"github.com/strontium-cloud/strontium/internal/tz"
	"github.com/strontium-cloud/strontium/pkg/db"
	"github.com/strontium-cloud/strontium/pkg/jsonmap"
	"gorm.io/gorm"
)

// Schedule is the service surface behind the /api/schedules endpoints.
type Schedule interface {
	WithDatabase(*gorm.DB) Schedule
	List(*ListRequest) (models.Schedules, error)
	Get(uuid.UUID) (*models.Schedule, error)
	Create(*CreateRequest) (*models.Schedule, error)
	Update(uuid.UUID, *UpdateRequest) (*models.Schedule, error)
	Cancel(uuid.UUID) (*models.Schedule, error)
	RunNow(uuid.UUID) (*models.Schedule, error)
	Runs(uuid.UUID, int) (models.ScheduleRuns, error)
}

type scheduleService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Schedule {
	return &scheduleService{ctx: ctx}
}

func (s *scheduleService) WithDatabase(conn *gorm.DB) Schedule {
	if conn != nil {
		s.db = conn
	}
	return s
}

func (s *scheduleService) connection() *gorm.DB {
	if s.db == nil {
		s.db = db.Connection()
	}
	return s.db
}

type ListRequest struct {
	Status string
	ToDate time.Time
	Limit  int
	Offset int
}

func (s *scheduleService) List(req *ListRequest) (models.Schedules, error) {
	var (
		schedules = make(models.Schedules, 0)
		q         = s.connection().WithContext(s.ctx)
	)

	if req.Status != "" {
		status := models.ScheduleStatus(req.Status)
		if !status.Valid() {
			return nil, apierror.BadRequest(apierror.CodeInvalidRequest,
				fmt.Sprintf("invalid status filter: %v", req.Status))
		}
		q = q.Where("status = ?", status)
	}

	if !req.ToDate.IsZero() {
		q = q.Where("run_at_utc <= ?", req.ToDate.UTC())
	}

	if req.Limit > 0 {
		q = q.Limit(req.Limit)
	}

	if req.Offset > 0 {
		q = q.Offset(req.Offset)
	}

	if err := q.Order("run_at_utc asc").Find(&schedules).Error; err != nil {
		return nil, err
	}

	return schedules, nil
}

func (s *scheduleService) Get(id uuid.UUID) (*models.Schedule, error) {
	var sched models.Schedule

	err := s.connection().WithContext(s.ctx).
		First(&sched, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apierror.NotFound(fmt.Sprintf("schedule %v not found", id))
	}
	if err != nil {
		return nil, err
	}

	return &sched, nil
}

type CreateRequest struct {
	SuiteID          string                 `json:"suite_id"`
	SuiteName        string                 `json:"suite_name"`
	RunAt            string                 `json:"run_at"`
	Timezone         string                 `json:"timezone"`
	Recurrence       string                 `json:"recurrence"`
	Priority         int                    `json:"priority"`
	MaxRetries       *int                   `json:"max_retries,omitempty"`
	ExecutionOptions map[string]interface{} `json:"execution_options,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
	CreatedBy        string                 `json:"created_by,omitempty"`
}

func (s *scheduleService) Create(req *CreateRequest) (*models.Schedule, error) {
	if req.SuiteID == "" || req.SuiteName == "" {
		return nil, apierror.BadRequest(apierror.CodeInvalidRequest,
			"suite_id and suite_name are required")
	}

	runAtUTC, err := validateRunAt(req.RunAt, req.Timezone, time.Now())
	if err != nil {
		return nil, err
	}

	if _, err := recurrence.Parse(req.Recurrence); err != nil {
		return nil, apierror.BadRequest(apierror.CodeInvalidRecurrence, err.Error())
	}

	sched := &models.Schedule{
		ID:               uuid.New(),
		SuiteID:          req.SuiteID,
		SuiteName:        req.SuiteName,
		RunAtLocal:       req.RunAt,
		Timezone:         req.Timezone,
		RunAtUTC:         runAtUTC,
		Recurrence:       req.Recurrence,
		Status:           models.ScheduleStatusScheduled,
		Priority:         req.Priority,
		ExecutionOptions: jsonmap.FromInterfaceMap(req.ExecutionOptions),
		Notes:            req.Notes,
		CreatedBy:        req.CreatedBy,
		CreatedAt:        time.Now().UTC(),
	}

	if req.MaxRetries != nil {
		if *req.MaxRetries < 0 {
			return nil, apierror.BadRequest(apierror.CodeInvalidRequest,
				"max_retries must not be negative")
		}
		sched.MaxRetries = *req.MaxRetries
	} else {
		sched.MaxRetries = models.DefaultMaxRetries
	}

	err = s.connection().WithContext(s.ctx).Create(sched).Error
	if err != nil {
		return nil, err
	}

	return sched, nil
}

type UpdateRequest struct {
	SuiteName        *string                `json:"suite_name,omitempty"`
	RunAt            *string                `json:"run_at,omitempty"`
	Timezone         *string                `json:"timezone,omitempty"`
	Recurrence       *string                `json:"recurrence,omitempty"`
	Priority         *int                   `json:"priority,omitempty"`
	MaxRetries       *int                   `json:"max_retries,omitempty"`
	ExecutionOptions map[string]interface{} `json:"execution_options,omitempty"`
	Notes            *string                `json:"notes,omitempty"`
}

// Update mutates a schedule that no worker currently owns. Rows in
// claimed or running state reject updates with a conflict so the
// caller never edits a schedule out from under its executor.
// Providing run_at re-arms the schedule: status returns to scheduled
// and retry accounting resets.
func (s *scheduleService) Update(id uuid.UUID, req *UpdateRequest) (*models.Schedule, error) {
	var sched *models.Schedule

	err := s.connection().WithContext(s.ctx).Transaction(func(txn *gorm.DB) error {
		var current models.Schedule
		if err := txn.First(&current, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apierror.NotFound(fmt.Sprintf("schedule %v not found", id))
			}
			return err
		}

		switch current.Status {
		case models.ScheduleStatusClaimed, models.ScheduleStatusRunning:
			return apierror.Conflict(fmt.Sprintf(
				"schedule %v is %v and cannot be updated", id, current.Status))
		}

		updates := map[string]interface{}{}

		if req.SuiteName != nil {
			if *req.SuiteName == "" {
				return apierror.BadRequest(apierror.CodeInvalidRequest,
					"suite_name must not be empty")
			}
			updates["suite_name"] = *req.SuiteName
		}

		if req.RunAt != nil || req.Timezone != nil {
			runAt := current.RunAtLocal
			zone := current.Timezone
			if req.RunAt != nil {
				runAt = *req.RunAt
			}
			if req.Timezone != nil {
				zone = *req.Timezone
			}

			runAtUTC, err := validateRunAt(runAt, zone, time.Now())
			if err != nil {
				return err
			}

			updates["run_at_local"] = runAt
			updates["timezone"] = zone
			updates["run_at_utc"] = runAtUTC
			updates["status"] = models.ScheduleStatusScheduled
			updates["retry_count"] = 0
		}

		if req.Recurrence != nil {
			if _, err := recurrence.Parse(*req.Recurrence); err != nil {
				return apierror.BadRequest(apierror.CodeInvalidRecurrence, err.Error())
			}
			updates["recurrence"] = *req.Recurrence
		}

		if req.Priority != nil {
			updates["priority"] = *req.Priority
		}

		if req.MaxRetries != nil {
			if *req.MaxRetries < 0 {
				return apierror.BadRequest(apierror.CodeInvalidRequest,
					"max_retries must not be negative")
			}
			updates["max_retries"] = *req.MaxRetries
		}

		if req.ExecutionOptions != nil {
			updates["execution_options"] = jsonmap.FromInterfaceMap(req.ExecutionOptions)
		}

		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}

		if len(updates) == 0 {
			sched = &current
			return nil
		}

		updates["updated_at"] = time.Now().UTC()

		if err := txn.Model(&models.Schedule{}).
			Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return err
		}

		return txn.First(&current, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}

	if sched == nil {
		sched = &models.Schedule{}
		if err := s.connection().WithContext(s.ctx).
			First(sched, "id = ?", id).Error; err != nil {
			return nil, err
		}
	}

	return sched, nil
}

// Cancel moves a schedule to cancelled. A claimed schedule loses its
// claim so the worker's next conditional update misses and the launch
// never happens. A running schedule keeps its claim fields: the
// process in flight finishes and its run is still recorded, but the
// schedule stays cancelled afterwards.
func (s *scheduleService) Cancel(id uuid.UUID) (*models.Schedule, error) {
	var sched models.Schedule

	err := s.connection().WithContext(s.ctx).Transaction(func(txn *gorm.DB) error {
		if err := txn.First(&sched, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apierror.NotFound(fmt.Sprintf("schedule %v not found", id))
			}
			return err
		}

		switch sched.Status {
		case models.ScheduleStatusCancelled:
			return nil
		case models.ScheduleStatusCompleted, models.ScheduleStatusFailed:
			return apierror.Conflict(fmt.Sprintf(
				"schedule %v is already %v", id, sched.Status))
		}

		updates := map[string]interface{}{
			"status":     models.ScheduleStatusCancelled,
			"updated_at": time.Now().UTC(),
		}

		if sched.Status == models.ScheduleStatusClaimed ||
			sched.Status == models.ScheduleStatusScheduled {
			updates["claimed_by"] = ""
			updates["claimed_at"] = nil
		}

		if err := txn.Model(&models.Schedule{}).
			Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return err
		}

		return txn.First(&sched, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}

	return &sched, nil
}

// RunNow pulls a schedule's next execution forward to the present
// moment and marks it manually requested so the resulting run is
// attributed to an operator rather than the timer. Retry accounting
// is untouched. Schedules already claimed or running reject the
// request instead of queueing a second execution.
func (s *scheduleService) RunNow(id uuid.UUID) (*models.Schedule, error) {
	var sched models.Schedule

	err := s.connection().WithContext(s.ctx).Transaction(func(txn *gorm.DB) error {
		if err := txn.First(&sched, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apierror.NotFound(fmt.Sprintf("schedule %v not found", id))
			}
			return err
		}

		switch sched.Status {
		case models.ScheduleStatusClaimed, models.ScheduleStatusRunning:
			return apierror.Conflict(fmt.Sprintf(
				"schedule %v is %v, execution already in progress", id, sched.Status))
		}

		now := time.Now().UTC()
		local, err := tz.FromUTC(now, sched.Timezone)
		if err != nil {
			return err
		}

		err = txn.Model(&models.Schedule{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":           models.ScheduleStatusScheduled,
				"run_at_utc":       now,
				"run_at_local":     local,
				"manual_requested": true,
				"claimed_by":       "",
				"claimed_at":       nil,
				"updated_at":       now,
			}).Error
		if err != nil {
			return err
		}

		return txn.First(&sched, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}

	return &sched, nil
}

func (s *scheduleService) Runs(id uuid.UUID, limit int) (models.ScheduleRuns, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	return schedulestore.NewStore(s.connection()).RunHistory(s.ctx, id, limit)
}

func validateRunAt(runAt, zone string, now time.Time) (time.Time, error) {
	if runAt == "" {
		return time.Time{}, apierror.BadRequest(apierror.CodeInvalidRequest,
			"run_at is required")
	}

	runAtUTC, err := tz.ToUTC(runAt, zone)
	if err != nil {
		code := apierror.CodeInvalidRequest
		if tz.IsZoneError(err) {
			code = apierror.CodeInvalidTimezone
		}
		return time.Time{}, apierror.BadRequest(code, err.Error())
	}

	if !runAtUTC.After(now.UTC()) {
		return time.Time{}, apierror.BadRequest(apierror.CodeRunAtPast,
			fmt.Sprintf("run_at %v (%v) is not in the future", runAt, zone))
	}

	return runAtUTC, nil
}
