// Package workhours adjusts instants to a fixed business-hours policy
// for latency measurement.
package workhours

import (
	"fmt"
	"time"
)

// The policy is anchored to a single civil timezone for the whole
// system; it is deliberately not configurable per actor.
const locationName = "America/Los_Angeles"

const (
	windowStartSec = 9 * 3600  // 09:00
	windowEndSec   = 12 * 3600 // 12:00 inclusive
)

// Adjuster maps instants onto the working-hours window.
type Adjuster struct {
	loc *time.Location
}

func NewAdjuster() (*Adjuster, error) {
	loc, err := time.LoadLocation(locationName)
	if err != nil {
		return nil, fmt.Errorf("load location %s: %w", locationName, err)
	}
	return &Adjuster{loc: loc}, nil
}

// NewAdjusterIn anchors the policy to an explicit location.
func NewAdjusterIn(loc *time.Location) *Adjuster {
	return &Adjuster{loc: loc}
}

// Effective returns t unchanged when its local time-of-day falls within
// the review window on a business day, and 09:00 local on the next
// business day otherwise. Saturdays and Sundays are skipped; holidays
// are not modeled.
func (a *Adjuster) Effective(t time.Time) time.Time {
	local := t.In(a.loc)
	if isBusinessDay(local.Weekday()) && inWindow(local) {
		return t
	}
	day := local
	for {
		day = day.AddDate(0, 0, 1)
		if isBusinessDay(day.Weekday()) {
			break
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, a.loc)
}

// Latency is the business-hours-adjusted latency in hours between a
// request and its resolution, clamped at zero. Either instant being
// absent leaves the latency undefined, not zero.
func (a *Adjuster) Latency(requested, closed *time.Time) *float64 {
	if requested == nil || closed == nil {
		return nil
	}
	hours := closed.Sub(a.Effective(*requested)).Hours()
	if hours < 0 {
		hours = 0
	}
	return &hours
}

func isBusinessDay(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}

func inWindow(local time.Time) bool {
	sec := local.Hour()*3600 + local.Minute()*60 + local.Second()
	return sec >= windowStartSec && sec <= windowEndSec
}
