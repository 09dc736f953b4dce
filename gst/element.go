package gst

/*
#cgo pkg-config: gstreamer-1.0
#include <gst/gst.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Element wraps a single pipeline node. It adds linking, state control,
// querying and seeking on top of the shared object wrapper; it owns no
// state of its own beyond the handle and its ownership discipline.
//
// A handle may be referenced by several owning wrappers at once (one held
// by a containing pipeline, one by the caller). All mutation of the
// underlying object is serialized by the engine's own locking; Element
// adds no locks and never assumes exclusive access.
type Element struct {
	object
}

// NewElement looks up a native factory by factory name and instantiates it
// with the given instance name. An empty name lets the engine auto-generate
// one. The engine returns a floating reference which is sunk into the
// returned owning wrapper.
//
// Returns an error when the factory is unknown or instantiation fails;
// the failure is logged and left to the caller to handle.
func NewElement(factory, name string) (*Element, error) {
	cfactory := C.CString(factory)
	defer C.free(unsafe.Pointer(cfactory))

	var cname *C.gchar
	if name != "" {
		cn := C.CString(name)
		defer C.free(unsafe.Pointer(cn))
		cname = (*C.gchar)(cn)
	}

	elem := C.gst_element_factory_make((*C.gchar)(cfactory), cname)
	obj, ok := sinkObject((*C.GstObject)(unsafe.Pointer(elem)))
	if !ok {
		log.Warnf("failed to create element %q (factory %q)", name, factory)
		return nil, fmt.Errorf("no element could be created from factory %q", factory)
	}
	return &Element{object: obj}, nil
}

// ElementFromPointer adopts an existing native element handle whose
// reference-count unit the collaborator is handing over. Returns false on
// a nil pointer.
func ElementFromPointer(ptr unsafe.Pointer) (*Element, bool) {
	obj, ok := adoptObject((*C.GstObject)(ptr))
	if !ok {
		return nil, false
	}
	return &Element{object: obj}, true
}

// BorrowElement wraps a native element handle without touching its
// reference count. The wrapper must not outlive the lender of the handle.
func BorrowElement(ptr unsafe.Pointer) (*Element, bool) {
	obj, ok := borrowObject((*C.GstObject)(ptr))
	if !ok {
		return nil, false
	}
	return &Element{object: obj}, true
}

// Ref returns a second owning wrapper over the same handle. Both halves
// are independently usable and destructible; the native object goes away
// only when the last reference-count unit anywhere is released.
func (e *Element) Ref() *Element {
	return &Element{object: e.object.ref()}
}

func (e *Element) gstElement() *C.GstElement {
	return (*C.GstElement)(unsafe.Pointer(e.ptr))
}

// Link connects this element to dst. The link is attempted from source to
// destination only; the other direction is not tried. Existing pads that
// are not yet linked are preferred, and new pads are requested if the
// element type supports pads on demand. Request pads created this way must
// be released by the caller when unlinking. If several links are possible,
// only one is established.
//
// Both elements must already have been added to a common bin or pipeline;
// linking un-contained elements is undefined from the engine's point of
// view.
//
// Returns true if the elements could be linked.
func (e *Element) Link(dst *Element) bool {
	ok := C.gst_element_link(e.gstElement(), dst.gstElement()) != 0
	if !ok {
		log.Debugf("failed to link %q -> %q", e.Name(), dst.Name())
	}
	return ok
}

// Unlink disconnects all source pads of this element from the sink pads of
// dst they are linked to. A request pad created by a prior Link is not
// released here; that remains the caller's responsibility, because the
// engine does not auto-release it either.
func (e *Element) Unlink(dst *Element) {
	C.gst_element_unlink(e.gstElement(), dst.gstElement())
}

// LinkMany links every adjacent pair of elements in order: A->B, then
// B->C, and so on. On the first pair that fails it returns immediately:
// later pairs are never attempted and earlier pairs that already linked
// are left linked. No unlinking or rollback is performed; that is the
// documented contract, not an oversight.
//
// Returns true only if every pair linked.
func LinkMany(elements ...*Element) bool {
	for i := 0; i+1 < len(elements); i++ {
		if !elements[i].Link(elements[i+1]) {
			return false
		}
	}
	return true
}

// SetState requests a transition to the given state. The engine walks all
// intermediate states and may complete the remainder of the change
// asynchronously in its own thread, in which case Async is returned and
// GetState can be used to wait for completion. Transitions to READY or
// NULL never return Async.
func (e *Element) SetState(state State) StateChangeReturn {
	return StateChangeReturn(C.gst_element_set_state(e.gstElement(), C.GstState(state)))
}

// GetState returns the current and pending state of the element.
//
// For an element that reported Async from SetState, GetState blocks the
// calling thread for up to timeout waiting for the transition to resolve,
// returning Success or Failure as soon as it does. A timeout of zero polls
// once without blocking; ClockTimeNone waits forever. For an element with
// no transition in flight the current and pending state are returned
// immediately.
//
// NoPreroll means the element changed state successfully but cannot
// provide data yet; live sources only produce data in PLAYING.
//
// This is the only blocking operation on Element.
func (e *Element) GetState(timeout ClockTime) (current, pending State, ret StateChangeReturn) {
	var ccur, cpend C.GstState
	r := C.gst_element_get_state(e.gstElement(), &ccur, &cpend, C.GstClockTime(timeout))
	return State(ccur), State(cpend), StateChangeReturn(r)
}

// SetNull requests a transition to NULL.
func (e *Element) SetNull() StateChangeReturn {
	return e.SetState(StateNull)
}

// SetReady requests a transition to READY.
func (e *Element) SetReady() StateChangeReturn {
	return e.SetState(StateReady)
}

// Pause requests a transition to PAUSED.
func (e *Element) Pause() StateChangeReturn {
	return e.SetState(StatePaused)
}

// Play requests a transition to PLAYING.
func (e *Element) Play() StateChangeReturn {
	return e.SetState(StatePlaying)
}

// IsNull reports whether a blocking GetState resolves to NULL with
// Success.
func (e *Element) IsNull() bool {
	current, _, ret := e.GetState(ClockTimeNone)
	return current == StateNull && ret == StateChangeSuccess
}

// IsReady reports whether a blocking GetState resolves to READY with
// Success.
func (e *Element) IsReady() bool {
	current, _, ret := e.GetState(ClockTimeNone)
	return current == StateReady && ret == StateChangeSuccess
}

// IsPaused reports whether a blocking GetState resolves to PAUSED with
// Success.
func (e *Element) IsPaused() bool {
	current, _, ret := e.GetState(ClockTimeNone)
	return current == StatePaused && ret == StateChangeSuccess
}

// IsPlaying reports whether a blocking GetState resolves to PLAYING with
// Success.
func (e *Element) IsPlaying() bool {
	current, _, ret := e.GetState(ClockTimeNone)
	return current == StatePlaying && ret == StateChangeSuccess
}

// SendEvent sends an event to the element. The call takes ownership of
// the event handle; ref it first to reuse it afterwards.
func (e *Element) SendEvent(event unsafe.Pointer) bool {
	return C.gst_element_send_event(e.gstElement(), (*C.GstEvent)(event)) != 0
}

// SeekSimple seeks to the given position relative to the start of the
// stream. In a prerolled PAUSED or PLAYING pipeline this is guaranteed to
// return true on seekable media and false on media that is certainly not
// seekable, such as a live stream. For segment seeks or rate changes use
// Seek.
func (e *Element) SeekSimple(format Format, flags SeekFlags, pos int64) bool {
	return C.gst_element_seek_simple(e.gstElement(), C.GstFormat(format),
		C.GstSeekFlags(flags), C.gint64(pos)) != 0
}

// Seek sends a full segment seek event to the element, including a signed
// playback rate; a negative rate plays the segment in reverse.
func (e *Element) Seek(rate float64, format Format, flags SeekFlags,
	startType SeekType, start int64, stopType SeekType, stop int64) bool {
	return C.gst_element_seek(e.gstElement(), C.gdouble(rate), C.GstFormat(format),
		C.GstSeekFlags(flags), C.GstSeekType(startType), C.gint64(start),
		C.GstSeekType(stopType), C.gint64(stop)) != 0
}

// QueryDuration queries the total stream duration in the given format.
// The query is usually answered only once the pipeline is prerolled, i.e.
// it reached PAUSED or PLAYING. Returns false while the duration is
// unknown; there is no numeric sentinel.
func (e *Element) QueryDuration(format Format) (int64, bool) {
	var d C.gint64
	if C.gst_element_query_duration(e.gstElement(), C.GstFormat(format), &d) == 0 {
		return 0, false
	}
	return int64(d), true
}

// QueryPosition queries the stream position in the given format, a value
// between zero and the stream duration when that is known. Like
// QueryDuration this usually only works once the pipeline is prerolled.
func (e *Element) QueryPosition(format Format) (int64, bool) {
	var pos C.gint64
	if C.gst_element_query_position(e.gstElement(), C.GstFormat(format), &pos) == 0 {
		return 0, false
	}
	return int64(pos), true
}

// DurationNs is QueryDuration in nanoseconds.
func (e *Element) DurationNs() (int64, bool) {
	return e.QueryDuration(FormatTime)
}

// DurationS is QueryDuration in floating-point seconds.
func (e *Element) DurationS() (float64, bool) {
	ns, ok := e.DurationNs()
	if !ok {
		return 0, false
	}
	return NsToSeconds(ns), true
}

// PositionNs is QueryPosition in nanoseconds.
func (e *Element) PositionNs() (int64, bool) {
	return e.QueryPosition(FormatTime)
}

// PositionS is QueryPosition in floating-point seconds.
func (e *Element) PositionS() (float64, bool) {
	ns, ok := e.PositionNs()
	if !ok {
		return 0, false
	}
	return NsToSeconds(ns), true
}

// PositionPct returns the position as a fraction of the duration in the
// range 0..1. It is defined only when both position and duration are
// known; otherwise it is absent.
func (e *Element) PositionPct() (float64, bool) {
	pos, posOK := e.PositionNs()
	dur, durOK := e.DurationNs()
	if !posOK || !durOK {
		return 0, false
	}
	return float64(pos) / float64(dur), true
}

// SetPositionNs seeks to a position in nanoseconds.
func (e *Element) SetPositionNs(ns int64) bool {
	return e.SeekSimple(FormatTime, SeekFlagFlush, ns)
}

// SetPositionS seeks to a position in seconds.
func (e *Element) SetPositionS(s float64) bool {
	return e.SetPositionNs(SecondsToNs(s))
}

// SetPositionPct seeks to a position given as a fraction 0..1 of the
// duration. Returns false while the duration is unknown.
func (e *Element) SetPositionPct(pct float64) bool {
	dur, ok := e.DurationNs()
	if !ok {
		return false
	}
	return e.SetPositionNs(int64(float64(dur) * pct))
}

// SetSpeed changes the playback rate while preserving what has already
// played. A rate of zero pauses the element; this is a state transition,
// not a seek. A positive rate seeks from the current position to the end
// of the stream at that rate. A negative rate seeks from the start of the
// stream to the current position, playing that span in reverse. Returns
// false when the current position is unknown.
func (e *Element) SetSpeed(rate float64) bool {
	const flags = SeekFlagSkip | SeekFlagAccurate | SeekFlagFlush

	if rate == 0 {
		return e.SetState(StatePaused) != StateChangeFailure
	}

	pos, ok := e.QueryPosition(FormatTime)
	if !ok {
		return false
	}

	if rate > 0 {
		return e.Seek(rate, FormatTime, flags, SeekTypeSet, pos, SeekTypeSet, -1)
	}
	return e.Seek(rate, FormatTime, flags, SeekTypeSet, 0, SeekTypeSet, pos)
}

// StaticPad retrieves an already-existing pad by name. Pads that would
// have to be requested on demand are not returned here; absent means the
// element has no such static pad.
func (e *Element) StaticPad(name string) (*Pad, bool) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	pad := C.gst_element_get_static_pad(e.gstElement(), (*C.gchar)(cname))
	return wrapPad((*C.GstPad)(pad))
}

// Bus returns the element's message bus. Only a top-level pipeline is
// expected to provide one; absent otherwise.
func (e *Element) Bus() (*Bus, bool) {
	bus := C.gst_element_get_bus(e.gstElement())
	return wrapBus(bus)
}

// ElementProperty reads an element-valued property of this object, for
// example the current source of a playback bin. The returned wrapper owns
// its own reference-count unit; a floating reference from the engine is
// sunk on the way out, the same normalization applied at factory
// construction. Absent when the property is missing or does not hold an
// element.
func (e *Element) ElementProperty(name string) (*Element, bool) {
	var value C.GValue
	if !e.getPropertyValue(name, &value) {
		return nil, false
	}
	defer C.g_value_unset(&value)

	if C.g_type_check_value_holds(&value, C.gst_element_get_type()) == 0 {
		return nil, false
	}
	ptr := C.g_value_get_object(&value)
	if ptr == nil {
		return nil, false
	}
	obj, ok := sinkObject((*C.GstObject)(unsafe.Pointer(ptr)))
	if !ok {
		return nil, false
	}
	return &Element{object: obj}, true
}
