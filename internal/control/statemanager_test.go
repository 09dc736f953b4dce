package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-beagle/gstkit/gst"
)

// fakeTarget scripts SetState results and answers GetState from its
// tracked state.
type fakeTarget struct {
	current    gst.State
	setReturns []gst.StateChangeReturn
	setCalls   []gst.State
	getFn      func(timeout gst.ClockTime) (gst.State, gst.State, gst.StateChangeReturn)
}

func (f *fakeTarget) SetState(s gst.State) gst.StateChangeReturn {
	f.setCalls = append(f.setCalls, s)
	ret := gst.StateChangeSuccess
	if len(f.setReturns) > 0 {
		ret = f.setReturns[0]
		f.setReturns = f.setReturns[1:]
	}
	if ret == gst.StateChangeSuccess || ret == gst.StateChangeNoPreroll {
		f.current = s
	}
	return ret
}

func (f *fakeTarget) GetState(timeout gst.ClockTime) (gst.State, gst.State, gst.StateChangeReturn) {
	if f.getFn != nil {
		return f.getFn(timeout)
	}
	return f.current, gst.StateVoidPending, gst.StateChangeSuccess
}

func quickConfig() *StateManagerConfig {
	return &StateManagerConfig{
		TransitionTimeout: 100 * time.Millisecond,
		MaxRetryAttempts:  2,
		RetryDelay:        time.Millisecond,
		HistorySize:       4,
	}
}

func TestNewStateManagerDefaults(t *testing.T) {
	sm := NewStateManager(&fakeTarget{}, nil)
	require.NotNil(t, sm.config)
	assert.Equal(t, 10*time.Second, sm.config.TransitionTimeout)
	assert.Equal(t, 3, sm.config.MaxRetryAttempts)
	assert.Equal(t, gst.StateNull, sm.TargetState())
}

func TestSetStateSynchronousSuccess(t *testing.T) {
	target := &fakeTarget{current: gst.StateNull}
	sm := NewStateManager(target, quickConfig())

	err := sm.SetState(gst.StatePaused)
	require.NoError(t, err)
	assert.Equal(t, gst.StatePaused, sm.CurrentState())
	assert.Equal(t, gst.StatePaused, sm.TargetState())

	history := sm.History()
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Equal(t, gst.StateNull, history[0].From)
	assert.Equal(t, gst.StatePaused, history[0].To)
	assert.Equal(t, 0, history[0].RetryCount)
}

func TestSetStateRetriesAfterFailure(t *testing.T) {
	target := &fakeTarget{
		setReturns: []gst.StateChangeReturn{gst.StateChangeFailure, gst.StateChangeSuccess},
	}
	sm := NewStateManager(target, quickConfig())

	err := sm.SetState(gst.StatePlaying)
	require.NoError(t, err)
	assert.Equal(t, []gst.State{gst.StatePlaying, gst.StatePlaying}, target.setCalls)

	history := sm.History()
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Equal(t, 1, history[0].RetryCount)
}

func TestSetStateGivesUpAfterMaxAttempts(t *testing.T) {
	target := &fakeTarget{
		setReturns: []gst.StateChangeReturn{gst.StateChangeFailure, gst.StateChangeFailure},
	}
	sm := NewStateManager(target, quickConfig())

	err := sm.SetState(gst.StatePlaying)
	require.Error(t, err)
	assert.Len(t, target.setCalls, 2)

	history := sm.History()
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
	assert.Error(t, history[0].Err)
}

func TestSetStateResolvesAsync(t *testing.T) {
	target := &fakeTarget{
		setReturns: []gst.StateChangeReturn{gst.StateChangeAsync},
	}
	var waited gst.ClockTime
	target.getFn = func(timeout gst.ClockTime) (gst.State, gst.State, gst.StateChangeReturn) {
		if timeout == 0 {
			return gst.StateNull, gst.StateVoidPending, gst.StateChangeSuccess
		}
		waited = timeout
		return gst.StatePaused, gst.StateVoidPending, gst.StateChangeSuccess
	}
	sm := NewStateManager(target, quickConfig())

	err := sm.SetState(gst.StatePaused)
	require.NoError(t, err)

	// The async wait uses the configured bounded timeout, never an
	// unbounded block.
	assert.Equal(t, gst.ClockTimeFromDuration(100*time.Millisecond), waited)

	// The recorded outcome is the settled return, not the transient
	// ASYNC the request itself came back with.
	history := sm.History()
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Equal(t, gst.StateChangeSuccess, history[0].Result)
}

func TestSetStateAsyncSettlesNoPreroll(t *testing.T) {
	target := &fakeTarget{
		setReturns: []gst.StateChangeReturn{gst.StateChangeAsync},
	}
	target.getFn = func(timeout gst.ClockTime) (gst.State, gst.State, gst.StateChangeReturn) {
		if timeout == 0 {
			return gst.StateNull, gst.StateVoidPending, gst.StateChangeSuccess
		}
		return gst.StatePaused, gst.StateVoidPending, gst.StateChangeNoPreroll
	}
	sm := NewStateManager(target, quickConfig())

	require.NoError(t, sm.SetState(gst.StatePaused))

	history := sm.History()
	require.Len(t, history, 1)
	assert.Equal(t, gst.StateChangeNoPreroll, history[0].Result)
	assert.True(t, history[0].NoPreroll)
}

func TestSetStateAsyncTimeout(t *testing.T) {
	target := &fakeTarget{
		setReturns: []gst.StateChangeReturn{gst.StateChangeAsync, gst.StateChangeAsync},
	}
	target.getFn = func(timeout gst.ClockTime) (gst.State, gst.State, gst.StateChangeReturn) {
		if timeout == 0 {
			return gst.StateReady, gst.StateVoidPending, gst.StateChangeSuccess
		}
		// Still in flight when the bounded wait expires.
		return gst.StateReady, gst.StatePaused, gst.StateChangeAsync
	}
	sm := NewStateManager(target, quickConfig())

	err := sm.SetState(gst.StatePaused)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestSetStateNoPreroll(t *testing.T) {
	target := &fakeTarget{
		setReturns: []gst.StateChangeReturn{gst.StateChangeNoPreroll},
	}
	sm := NewStateManager(target, quickConfig())

	// A live source cannot preroll, but the transition succeeded.
	err := sm.SetState(gst.StatePaused)
	require.NoError(t, err)

	history := sm.History()
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.True(t, history[0].NoPreroll)
}

func TestHistoryBounded(t *testing.T) {
	target := &fakeTarget{}
	sm := NewStateManager(target, quickConfig())

	for i := 0; i < 10; i++ {
		require.NoError(t, sm.SetState(gst.StatePaused))
	}
	assert.Len(t, sm.History(), 4)
}

func TestTransitionCallback(t *testing.T) {
	target := &fakeTarget{}
	sm := NewStateManager(target, quickConfig())

	var seen []Transition
	sm.SetTransitionCallback(func(tr Transition) {
		seen = append(seen, tr)
	})

	require.NoError(t, sm.SetState(gst.StatePlaying))
	require.Len(t, seen, 1)
	assert.Equal(t, gst.StatePlaying, seen[0].To)
}

func TestStats(t *testing.T) {
	target := &fakeTarget{
		setReturns: []gst.StateChangeReturn{
			gst.StateChangeSuccess,
			gst.StateChangeFailure, gst.StateChangeFailure,
		},
	}
	sm := NewStateManager(target, quickConfig())

	require.NoError(t, sm.SetState(gst.StatePaused))
	require.Error(t, sm.SetState(gst.StatePlaying))

	stats := sm.Stats()
	assert.Equal(t, 1, stats["successful_transitions"])
	assert.Equal(t, 1, stats["failed_transitions"])
	assert.Equal(t, "PLAYING", stats["target_state"])
}
