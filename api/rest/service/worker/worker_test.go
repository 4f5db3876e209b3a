package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/strontium-cloud/strontium/internal/models"
	"github.com/strontium-cloud/strontium/internal/testutil"
	"gorm.io/gorm"
)

type WorkerSuite struct {
	suite.Suite
	db *gorm.DB
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.db = testutil.OpenTestDB(s.T())
}

func (s *WorkerSuite) TearDownTest() {
	testutil.CloseDB(s.db)
}

func (s *WorkerSuite) createSchedule(status models.ScheduleStatus, runAt time.Time, claimedBy string) *models.Schedule {
	sched := &models.Schedule{
		ID:         uuid.New(),
		SuiteID:    "suite",
		SuiteName:  "Suite",
		RunAtLocal: runAt.Format("2006-01-02T15:04:05"),
		Timezone:   "UTC",
		RunAtUTC:   runAt,
		Status:     status,
		MaxRetries: models.DefaultMaxRetries,
		CreatedAt:  time.Now().UTC(),
	}

	if claimedBy != "" {
		now := time.Now().UTC()
		sched.ClaimedBy = claimedBy
		sched.ClaimedAt = &now
	}

	s.Require().NoError(s.db.Create(sched).Error)
	return sched
}

func (s *WorkerSuite) TestEmptyDatabase() {
	resp, err := New(context.Background()).WithDatabase(s.db).Status()
	s.Require().NoError(err)

	s.Empty(resp.ActiveWorkers)
	s.Equal(int64(0), resp.InFlight)
	s.Equal(int64(0), resp.QueueDepth)
	s.Nil(resp.NextDueAt)
}

func (s *WorkerSuite) TestClaimsGroupedByWorker() {
	now := time.Now().UTC()

	s.createSchedule(models.ScheduleStatusClaimed, now.Add(-time.Minute), "worker-a")
	s.createSchedule(models.ScheduleStatusRunning, now.Add(-time.Minute), "worker-a")
	s.createSchedule(models.ScheduleStatusRunning, now.Add(-time.Minute), "worker-b")

	resp, err := New(context.Background()).WithDatabase(s.db).Status()
	s.Require().NoError(err)

	s.Require().Len(resp.ActiveWorkers, 2)
	s.Equal(int64(2), resp.InFlight)

	byID := map[string]WorkerEntry{}
	for _, entry := range resp.ActiveWorkers {
		byID[entry.WorkerID] = entry
	}

	s.Equal(int64(1), byID["worker-a"].Claimed)
	s.Equal(int64(1), byID["worker-a"].Running)
	s.Equal(int64(1), byID["worker-b"].Running)
}

func (s *WorkerSuite) TestQueueDepthAndNextDue() {
	now := time.Now().UTC()

	s.createSchedule(models.ScheduleStatusScheduled, now.Add(-time.Minute), "")
	s.createSchedule(models.ScheduleStatusScheduled, now.Add(-2*time.Minute), "")
	s.createSchedule(models.ScheduleStatusScheduled, now.Add(time.Hour), "")

	resp, err := New(context.Background()).WithDatabase(s.db).Status()
	s.Require().NoError(err)

	s.Equal(int64(2), resp.QueueDepth)
	s.Require().NotNil(resp.NextDueAt)
	s.True(resp.NextDueAt.Before(now))
}
