package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOneShot(t *testing.T) {
	rule, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, OneShot, rule.Kind())
	assert.False(t, rule.Recurs())
	assert.True(t, rule.NextAfter(time.Now(), time.UTC).IsZero())

	rule, err = Parse("   ")
	require.NoError(t, err)
	assert.False(t, rule.Recurs())
}

func TestParseInterval(t *testing.T) {
	rule, err := Parse("@every 30m")
	require.NoError(t, err)
	assert.Equal(t, Interval, rule.Kind())
	assert.True(t, rule.Recurs())

	base := time.Date(2024, 7, 15, 11, 30, 0, 0, time.UTC)
	assert.Equal(t, base.Add(30*time.Minute), rule.NextAfter(base, time.UTC))
}

func TestParseIntervalFailures(t *testing.T) {
	_, err := Parse("@every bogus")
	assert.Error(t, err)

	_, err = Parse("@every 10s")
	assert.Error(t, err)
}

func TestParseCron(t *testing.T) {
	rule, err := Parse("0 9 * * 1")
	require.NoError(t, err)
	assert.Equal(t, Cron, rule.Kind())
	assert.Equal(t, "0 9 * * 1", rule.String())

	// Monday 2024-07-15 09:30 UTC: the next Monday-09:00 is a week out.
	base := time.Date(2024, 7, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 7, 22, 9, 0, 0, 0, time.UTC), rule.NextAfter(base, time.UTC))
}

func TestParseCronFailure(t *testing.T) {
	_, err := Parse("not a cron expression")
	assert.Error(t, err)
}

func TestNextAfterEvaluatesInZone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)

	rule, err := Parse("0 9 * * *")
	require.NoError(t, err)

	// 11:30 UTC on 2024-07-15 is 14:30 in Jerusalem (UTC+3), so the
	// next 09:00 wall-clock run lands on the 16th at 06:00 UTC.
	base := time.Date(2024, 7, 15, 11, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 7, 16, 6, 0, 0, 0, time.UTC), rule.NextAfter(base, loc))
}

func TestNextAfterStrictlyAdvances(t *testing.T) {
	for _, expr := range []string{"@every 60m", "*/5 * * * *", "0 0 * * *"} {
		rule, err := Parse(expr)
		require.NoError(t, err)

		now := time.Now().UTC()
		next := rule.NextAfter(now, time.UTC)
		assert.True(t, next.After(now), "expression %q", expr)
	}
}
