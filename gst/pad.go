package gst

/*
#cgo pkg-config: gstreamer-1.0
#include <gst/gst.h>
*/
import "C"

import "unsafe"

// PadDirection mirrors GstPadDirection.
type PadDirection int

const (
	PadUnknown PadDirection = C.GST_PAD_UNKNOWN
	PadSrc     PadDirection = C.GST_PAD_SRC
	PadSink    PadDirection = C.GST_PAD_SINK
)

func (d PadDirection) String() string {
	switch d {
	case PadSrc:
		return "src"
	case PadSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Pad is a named connection point of an element. Negotiation internals
// stay inside the engine; the wrapper only exposes identity and link
// status for the control surface.
type Pad struct {
	object
}

// wrapPad adopts a pad handle returned with a new reference-count unit,
// absent on NULL.
func wrapPad(ptr *C.GstPad) (*Pad, bool) {
	obj, ok := adoptObject((*C.GstObject)(unsafe.Pointer(ptr)))
	if !ok {
		return nil, false
	}
	return &Pad{object: obj}, true
}

// PadFromPointer adopts an existing native pad handle whose reference-count
// unit the collaborator is handing over. Returns false on a nil pointer.
func PadFromPointer(ptr unsafe.Pointer) (*Pad, bool) {
	return wrapPad((*C.GstPad)(ptr))
}

// Ref returns a second owning wrapper over the same pad.
func (p *Pad) Ref() *Pad {
	return &Pad{object: p.object.ref()}
}

func (p *Pad) gstPad() *C.GstPad {
	return (*C.GstPad)(unsafe.Pointer(p.ptr))
}

// Direction returns the direction of the pad.
func (p *Pad) Direction() PadDirection {
	return PadDirection(C.gst_pad_get_direction(p.gstPad()))
}

// IsLinked reports whether the pad is linked to a peer.
func (p *Pad) IsLinked() bool {
	return C.gst_pad_is_linked(p.gstPad()) != 0
}

// Peer returns the pad this pad is linked to, absent when unlinked.
func (p *Pad) Peer() (*Pad, bool) {
	return wrapPad(C.gst_pad_get_peer(p.gstPad()))
}
