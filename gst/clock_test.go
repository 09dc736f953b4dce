package gst

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockTimeFromDuration(t *testing.T) {
	assert.Equal(t, ClockTime(0), ClockTimeFromDuration(0))
	assert.Equal(t, Second, ClockTimeFromDuration(time.Second))
	assert.Equal(t, ClockTime(1500*1000*1000), ClockTimeFromDuration(1500*time.Millisecond))

	// Negative durations degrade to a non-blocking poll, not a huge
	// unsigned timeout.
	assert.Equal(t, ClockTime(0), ClockTimeFromDuration(-time.Second))
}

func TestNsToSeconds(t *testing.T) {
	assert.Equal(t, 0.0, NsToSeconds(0))
	assert.Equal(t, 1.0, NsToSeconds(1e9))
	assert.Equal(t, 2.5, NsToSeconds(2500*1000*1000))
	assert.Equal(t, -1.0, NsToSeconds(-1e9))
}

func TestSecondsToNs(t *testing.T) {
	assert.Equal(t, int64(0), SecondsToNs(0))
	assert.Equal(t, int64(1e9), SecondsToNs(1.0))
	assert.Equal(t, int64(250*1000*1000), SecondsToNs(0.25))
}

func TestSecondsRoundTrip(t *testing.T) {
	for _, ns := range []int64{0, 1e9, 90 * 1e9, 3600 * 1e9} {
		assert.Equal(t, ns, SecondsToNs(NsToSeconds(ns)))
	}
}
