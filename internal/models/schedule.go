package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusClaimed   ScheduleStatus = "claimed"
	ScheduleStatusRunning   ScheduleStatus = "running"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusFailed    ScheduleStatus = "failed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// DefaultMaxRetries applies when a schedule is created without an
// explicit retry budget.
const DefaultMaxRetries = 3

// Valid reports whether s is one of the known lifecycle states.
func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusClaimed, ScheduleStatusRunning,
		ScheduleStatusCompleted, ScheduleStatusFailed, ScheduleStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transitions.
func (s ScheduleStatus) Terminal() bool {
	switch s {
	case ScheduleStatusCompleted, ScheduleStatusFailed, ScheduleStatusCancelled:
		return true
	}
	return false
}

// Schedule is a planned test-suite execution. RunAtUTC is derived
// from RunAtLocal and Timezone and is the only field used for due
// comparisons; the local wall-clock string is kept verbatim for
// display and recomputation.
type Schedule struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SuiteID   string    `gorm:"type:text;index;not null" json:"suite_id"`
	SuiteName string    `gorm:"type:text;not null" json:"suite_name"`

	RunAtLocal string    `gorm:"type:text;not null" json:"run_at_local"`
	Timezone   string    `gorm:"type:text;not null" json:"timezone"`
	RunAtUTC   time.Time `gorm:"index:idx_schedules_due,priority:2;not null" json:"run_at_utc"`

	// Recurrence is empty for one-shot schedules, otherwise a cron
	// expression or an @every interval.
	Recurrence string `gorm:"type:text" json:"recurrence,omitempty"`

	Status   ScheduleStatus `gorm:"type:text;index:idx_schedules_due,priority:1;not null" json:"status"`
	Priority int            `gorm:"not null;default:0" json:"priority"`

	ExecutionOptions datatypes.JSONMap `gorm:"type:json" json:"execution_options,omitempty"`

	ClaimedBy string     `gorm:"type:text;index;not null;default:''" json:"claimed_by,omitempty"`
	ClaimedAt *time.Time `gorm:"index" json:"claimed_at,omitempty"`

	// ManualRequested marks a pending run-now trigger so the next
	// recorded run is attributed to a manual trigger.
	ManualRequested bool `gorm:"not null;default:false" json:"manual_requested,omitempty"`

	RetryCount int `gorm:"not null;default:0" json:"retry_count"`
	MaxRetries int `gorm:"not null;default:3" json:"max_retries"`

	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy string    `gorm:"type:text" json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Runs []*ScheduleRun `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE" json:"runs,omitempty"`
}

type Schedules []*Schedule
