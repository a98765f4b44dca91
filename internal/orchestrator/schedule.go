// internal/orchestrator/schedule.go
package orchestrator

import (
	"fmt"
	"time"
)

// Clock abstracts wall-clock reads so schedules are testable without
// real timers.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock is the production clock.
var RealClock Clock = realClock{}

// WindowSpec names one daily processing window. BaselineRefresh marks
// the designated window that also refreshes baselines and runs the
// long-horizon correlation sweep.
type WindowSpec struct {
	Name            string
	AnchorHour      int
	BaselineRefresh bool
}

// DefaultWindows builds one window per anchor hour. The earliest
// anchor is the designated baseline-refresh window.
func DefaultWindows(anchorHours []int) []WindowSpec {
	specs := make([]WindowSpec, 0, len(anchorHours))
	for i, h := range anchorHours {
		specs = append(specs, WindowSpec{
			Name:            fmt.Sprintf("utc-%02d00", h),
			AnchorHour:      h,
			BaselineRefresh: i == 0,
		})
	}
	return specs
}

// NextOccurrence computes when the window fires next: today's anchor
// if it is still ahead, otherwise the same anchor tomorrow. Recomputed
// from the wall clock after every run, so timer drift never accumulates.
func NextOccurrence(now time.Time, anchorHour int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), anchorHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
