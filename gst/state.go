package gst

/*
#cgo pkg-config: gstreamer-1.0
#include <gst/gst.h>
*/
import "C"

// State mirrors GstState. An element is always in exactly one of these
// states and may additionally carry a pending state while an asynchronous
// transition is in flight.
type State int

const (
	StateVoidPending State = C.GST_STATE_VOID_PENDING
	StateNull        State = C.GST_STATE_NULL
	StateReady       State = C.GST_STATE_READY
	StatePaused      State = C.GST_STATE_PAUSED
	StatePlaying     State = C.GST_STATE_PLAYING
)

func (s State) String() string {
	switch s {
	case StateVoidPending:
		return "VOID_PENDING"
	case StateNull:
		return "NULL"
	case StateReady:
		return "READY"
	case StatePaused:
		return "PAUSED"
	case StatePlaying:
		return "PLAYING"
	default:
		return "UNKNOWN"
	}
}

// StateChangeReturn mirrors GstStateChangeReturn, the result of a state
// transition request.
type StateChangeReturn int

const (
	// StateChangeFailure means the transition was rejected. The element
	// is left in whatever state the engine decided; no recovery is
	// attempted here.
	StateChangeFailure StateChangeReturn = C.GST_STATE_CHANGE_FAILURE
	// StateChangeSuccess means the transition completed synchronously.
	StateChangeSuccess StateChangeReturn = C.GST_STATE_CHANGE_SUCCESS
	// StateChangeAsync means the transition completes later in the
	// engine's own thread. Use Element.GetState to wait for it.
	// Transitions to READY or NULL never return Async.
	StateChangeAsync StateChangeReturn = C.GST_STATE_CHANGE_ASYNC
	// StateChangeNoPreroll means the transition succeeded but the
	// element cannot produce data until it reaches PLAYING. Live
	// sources report this.
	StateChangeNoPreroll StateChangeReturn = C.GST_STATE_CHANGE_NO_PREROLL
)

func (r StateChangeReturn) String() string {
	switch r {
	case StateChangeFailure:
		return "FAILURE"
	case StateChangeSuccess:
		return "SUCCESS"
	case StateChangeAsync:
		return "ASYNC"
	case StateChangeNoPreroll:
		return "NO_PREROLL"
	default:
		return "UNKNOWN"
	}
}
