package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusTimeout   RunStatus = "timeout"
	RunStatusCancelled RunStatus = "cancelled"
)

type TriggerSource string

const (
	TriggerSourceSchedule TriggerSource = "schedule"
	TriggerSourceManual   TriggerSource = "manual"
)

// ScheduleRun records one finished execution of a schedule. Rows are
// written once, after FinishedAt is known, and never updated.
type ScheduleRun struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ScheduleID uuid.UUID `gorm:"type:uuid;index;not null" json:"schedule_id"`

	Status   RunStatus `gorm:"type:text;index;not null" json:"status"`
	ExitCode int       `gorm:"not null;default:0" json:"exit_code"`

	StartedAt  time.Time `gorm:"not null" json:"started_at"`
	FinishedAt time.Time `gorm:"not null" json:"finished_at"`

	StdoutExcerpt string `gorm:"type:text" json:"stdout_excerpt,omitempty"`
	StderrExcerpt string `gorm:"type:text" json:"stderr_excerpt,omitempty"`
	ArtifactsPath string `gorm:"type:text" json:"artifacts_path,omitempty"`

	TriggeredBy TriggerSource `gorm:"type:text;not null;default:'schedule'" json:"triggered_by"`
	ClaimedBy   string        `gorm:"type:text" json:"claimed_by,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

type ScheduleRuns []*ScheduleRun
