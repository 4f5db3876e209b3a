// Package tz converts the wall-clock times users enter into the
// absolute UTC instants schedules are compared against, and back.
//
// Conversions always use the IANA database entry for the schedule's
// own zone, never the server's local offset, so DST transitions are
// computed where the user lives. The transition policy is:
//
//   - A local time inside a spring-forward gap (it never occurs on
//     the wall clock) rounds forward to the first valid instant,
//     which is the transition instant itself.
//   - A local time repeated during fall-back resolves to the first
//     occurrence, i.e. the earlier UTC instant.
package tz

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrZone marks failures caused by the zone name itself, as opposed
// to a malformed wall-clock string.
var ErrZone = errors.New("invalid timezone")

// IsZoneError reports whether err originates from zone resolution.
func IsZoneError(err error) bool {
	return errors.Is(err, ErrZone)
}

// Layout is the canonical wall-clock format for schedule times.
const Layout = "2006-01-02T15:04:05"

// layouts accepted on input; seconds are optional.
var layouts = []string{Layout, "2006-01-02T15:04"}

// Location resolves an IANA zone name, rejecting the empty and
// process-local pseudo-zones.
func Location(zone string) (*time.Location, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" || strings.EqualFold(zone, "local") {
		return nil, fmt.Errorf("%w: must be an IANA zone name", ErrZone)
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown zone %q", ErrZone, zone)
	}
	return loc, nil
}

// ToUTC converts a local wall-clock string in the given IANA zone to
// the UTC instant it denotes, applying the package transition policy.
func ToUTC(local, zone string) (time.Time, error) {
	loc, err := Location(zone)
	if err != nil {
		return time.Time{}, err
	}

	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, local, loc)
		if err != nil {
			continue
		}

		// When the requested wall clock survives the round trip the
		// instant is valid; for repeated fall-back times Go resolves
		// to the earlier occurrence, which is the policy here.
		if t.Format(layout) == local {
			return t.UTC(), nil
		}

		// The wall clock changed under normalization, so the input
		// fell inside a spring-forward gap. Round to the first valid
		// instant: the transition point.
		return transitionBefore(t, loc).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid local datetime %q: expected %s", local, Layout)
}

// FromUTC renders a UTC instant as a wall-clock string in the given
// IANA zone.
func FromUTC(t time.Time, zone string) (string, error) {
	loc, err := Location(zone)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format(Layout), nil
}

// transitionBefore finds the zone transition instant immediately at
// or before t, where t is the normalized result of a gap time. The
// transition is located by bisecting the instant where the zone
// offset changes.
func transitionBefore(t time.Time, loc *time.Location) time.Time {
	lo := t.Add(-24 * time.Hour)
	hi := t

	if offsetAt(lo, loc) == offsetAt(hi, loc) {
		return t
	}

	for hi.Sub(lo) > time.Second {
		mid := lo.Add(hi.Sub(lo) / 2).Truncate(time.Second)
		if offsetAt(mid, loc) == offsetAt(lo, loc) {
			lo = mid
		} else {
			hi = mid
		}
	}

	return hi
}

func offsetAt(t time.Time, loc *time.Location) int {
	_, offset := t.In(loc).Zone()
	return offset
}
