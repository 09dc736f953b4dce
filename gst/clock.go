package gst

import (
	"math"
	"time"
)

// ClockTime is an unsigned nanosecond count, the engine's native time
// unit. ClockTimeNone means "no value": an infinite timeout when passed to
// Element.GetState, an unknown time everywhere else.
type ClockTime uint64

const (
	// ClockTimeNone mirrors GST_CLOCK_TIME_NONE.
	ClockTimeNone ClockTime = math.MaxUint64

	// Second is one second in ClockTime units.
	Second ClockTime = 1e9
)

// ClockTimeFromDuration converts a time.Duration into a ClockTime.
// Negative durations map to zero, which means "poll once, do not block"
// when used as a GetState timeout.
func ClockTimeFromDuration(d time.Duration) ClockTime {
	if d < 0 {
		return 0
	}
	return ClockTime(d.Nanoseconds())
}

// NsToSeconds converts a signed nanosecond count to floating-point
// seconds.
func NsToSeconds(ns int64) float64 {
	return float64(ns) / float64(Second)
}

// SecondsToNs converts floating-point seconds to a signed nanosecond
// count.
func SecondsToNs(s float64) int64 {
	return int64(s * float64(Second))
}
