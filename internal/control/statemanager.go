package control

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/open-beagle/gstkit/gst"
)

// Target is the state-control surface the manager drives. *gst.Element
// and *gst.Pipeline both satisfy it; tests substitute fakes.
type Target interface {
	SetState(gst.State) gst.StateChangeReturn
	GetState(timeout gst.ClockTime) (current, pending gst.State, ret gst.StateChangeReturn)
}

// StateManagerConfig configures transition handling.
type StateManagerConfig struct {
	// TransitionTimeout bounds the wait for an ASYNC transition.
	TransitionTimeout time.Duration `yaml:"transition_timeout" json:"transition_timeout"`

	// MaxRetryAttempts is how often a failed transition is retried.
	MaxRetryAttempts int `yaml:"max_retry_attempts" json:"max_retry_attempts"`

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`

	// HistorySize bounds the kept transition history.
	HistorySize int `yaml:"history_size" json:"history_size"`
}

// DefaultStateManagerConfig returns the default transition configuration.
func DefaultStateManagerConfig() *StateManagerConfig {
	return &StateManagerConfig{
		TransitionTimeout: 10 * time.Second,
		MaxRetryAttempts:  3,
		RetryDelay:        2 * time.Second,
		HistorySize:       100,
	}
}

// Transition records one requested state change.
type Transition struct {
	From       gst.State
	To         gst.State
	Result     gst.StateChangeReturn
	Timestamp  time.Time
	Duration   time.Duration
	Success    bool
	NoPreroll  bool
	RetryCount int
	Err        error
}

// StateManager drives state transitions on a single target and keeps a
// bounded history of the outcomes. The engine applies requests from one
// goroutine in order; the manager serializes its own requests with a
// mutex and adds nothing around the target itself.
type StateManager struct {
	target Target
	logger *logrus.Entry
	config *StateManagerConfig

	mu          sync.RWMutex
	targetState gst.State
	history     []Transition

	transitionCallback func(Transition)
}

// NewStateManager creates a manager for the given target.
func NewStateManager(target Target, config *StateManagerConfig) *StateManager {
	if config == nil {
		config = DefaultStateManagerConfig()
	}
	return &StateManager{
		target:      target,
		logger:      logrus.WithField("component", "state-manager"),
		config:      config,
		targetState: gst.StateNull,
		history:     make([]Transition, 0, config.HistorySize),
	}
}

// SetTransitionCallback registers a callback invoked after every recorded
// transition.
func (sm *StateManager) SetTransitionCallback(cb func(Transition)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.transitionCallback = cb
}

// SetState requests a transition and waits for it to complete, retrying
// per configuration. An ASYNC result is resolved with a bounded GetState
// wait; NO_PREROLL counts as success.
func (sm *StateManager) SetState(target gst.State) error {
	sm.mu.Lock()
	sm.targetState = target
	cb := sm.transitionCallback
	sm.mu.Unlock()

	current, _, _ := sm.target.GetState(0)
	transition := Transition{
		From:      current,
		To:        target,
		Timestamp: time.Now(),
	}

	err := sm.attemptWithRetry(target, &transition)
	sm.record(transition)
	if cb != nil {
		cb(transition)
	}
	return err
}

func (sm *StateManager) attemptWithRetry(target gst.State, transition *Transition) error {
	var lastErr error

	for attempt := 0; attempt < sm.config.MaxRetryAttempts; attempt++ {
		if attempt > 0 {
			sm.logger.Debugf("Retrying transition to %s, attempt %d/%d",
				target, attempt+1, sm.config.MaxRetryAttempts)
			time.Sleep(sm.config.RetryDelay)
		}
		transition.RetryCount = attempt
		start := time.Now()

		ret := sm.target.SetState(target)
		transition.Result = ret

		switch ret {
		case gst.StateChangeFailure:
			lastErr = fmt.Errorf("transition to %s rejected", target)
			sm.logger.Warnf("Transition attempt %d failed: %v", attempt+1, lastErr)
			continue

		case gst.StateChangeAsync:
			settled, err := sm.waitForTarget(target, sm.config.TransitionTimeout)
			if err != nil {
				lastErr = err
				sm.logger.Warnf("Transition attempt %d timed out: %v", attempt+1, err)
				continue
			}
			// Record the settled return, not the transient ASYNC.
			transition.Result = settled
			if settled == gst.StateChangeNoPreroll {
				transition.NoPreroll = true
			}

		case gst.StateChangeNoPreroll:
			// Success; the element just cannot produce data until
			// it reaches PLAYING.
			transition.NoPreroll = true
		}

		transition.Duration = time.Since(start)
		transition.Success = true
		sm.logger.Infof("Transition to %s completed in %v", target, transition.Duration)
		return nil
	}

	transition.Duration = time.Since(transition.Timestamp)
	transition.Err = lastErr
	sm.logger.Errorf("Transition to %s failed after %d attempts: %v",
		target, sm.config.MaxRetryAttempts, lastErr)
	return fmt.Errorf("failed to reach %s after %d attempts: %w",
		target, sm.config.MaxRetryAttempts, lastErr)
}

// waitForTarget resolves an in-flight ASYNC transition with a single
// bounded GetState call; the engine wakes it as soon as the transition
// settles. On success it returns the settled state-change return.
func (sm *StateManager) waitForTarget(target gst.State, timeout time.Duration) (gst.StateChangeReturn, error) {
	current, pending, ret := sm.target.GetState(gst.ClockTimeFromDuration(timeout))
	switch ret {
	case gst.StateChangeFailure:
		return ret, fmt.Errorf("transition to %s failed while pending", target)
	case gst.StateChangeAsync:
		return ret, fmt.Errorf("timeout after %v waiting for %s (current %s, pending %s)",
			timeout, target, current, pending)
	}
	if current != target {
		return ret, fmt.Errorf("settled in %s instead of %s", current, target)
	}
	return ret, nil
}

// CurrentState polls the target without blocking.
func (sm *StateManager) CurrentState() gst.State {
	current, _, _ := sm.target.GetState(0)
	return current
}

// TargetState returns the most recently requested state.
func (sm *StateManager) TargetState() gst.State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.targetState
}

func (sm *StateManager) record(transition Transition) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.history = append(sm.history, transition)
	if len(sm.history) > sm.config.HistorySize {
		sm.history = sm.history[1:]
	}
}

// History returns a copy of the recorded transitions.
func (sm *StateManager) History() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	history := make([]Transition, len(sm.history))
	copy(history, sm.history)
	return history
}

// Stats summarizes the recorded transitions.
func (sm *StateManager) Stats() map[string]interface{} {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var succeeded, failed int
	var total time.Duration
	for _, tr := range sm.history {
		if tr.Success {
			succeeded++
			total += tr.Duration
		} else {
			failed++
		}
	}

	stats := map[string]interface{}{
		"target_state":           sm.targetState.String(),
		"history_size":           len(sm.history),
		"successful_transitions": succeeded,
		"failed_transitions":     failed,
	}
	if succeeded > 0 {
		stats["average_transition_time"] = (total / time.Duration(succeeded)).String()
	}
	return stats
}
