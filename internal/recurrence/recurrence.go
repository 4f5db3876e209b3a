// Package recurrence models how a schedule re-arms after each run.
// A rule is a pure value; computing the next due time performs no
// I/O, so re-arming is trivially testable.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron"
)

type Kind int

const (
	// OneShot schedules never re-arm.
	OneShot Kind = iota
	// Interval schedules re-arm a fixed duration after each run.
	Interval
	// Cron schedules re-arm on a 5-field cron expression evaluated
	// in the schedule's own timezone.
	Cron
)

const everyPrefix = "@every "

// Rule is a parsed recurrence expression.
type Rule struct {
	kind     Kind
	expr     string
	every    time.Duration
	schedule cron.Schedule
}

// Parse interprets a recurrence expression. The empty string is a
// one-shot rule, "@every <duration>" is an interval, and anything
// else must be a 5-field cron expression.
func Parse(expr string) (Rule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Rule{}, nil
	}

	if strings.HasPrefix(expr, everyPrefix) {
		every, err := time.ParseDuration(strings.TrimSpace(strings.TrimPrefix(expr, everyPrefix)))
		if err != nil {
			return Rule{}, fmt.Errorf("invalid interval recurrence %q: %w", expr, err)
		}
		if every < time.Minute {
			return Rule{}, fmt.Errorf("invalid interval recurrence %q: below one minute", expr)
		}
		return Rule{kind: Interval, expr: expr, every: every}, nil
	}

	parser := cron.NewParser(
		cron.Minute |
			cron.Hour |
			cron.Dom |
			cron.Month |
			cron.Dow,
	)

	sched, err := parser.Parse(expr)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid cron recurrence %q: %w", expr, err)
	}

	return Rule{kind: Cron, expr: expr, schedule: sched}, nil
}

func (r Rule) Kind() Kind { return r.kind }

// String returns the original expression; empty for one-shot rules.
func (r Rule) String() string { return r.expr }

// Recurs reports whether the rule ever re-arms.
func (r Rule) Recurs() bool { return r.kind != OneShot }

// NextAfter computes the first due instant strictly after t,
// evaluated in loc. One-shot rules return the zero time. A nil loc
// evaluates in UTC.
func (r Rule) NextAfter(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	switch r.kind {
	case Interval:
		return t.Add(r.every).UTC()
	case Cron:
		return r.schedule.Next(t.In(loc)).UTC()
	default:
		return time.Time{}
	}
}
