package gst

/*
#cgo pkg-config: gstreamer-1.0
#include <gst/gst.h>

// Message accessors are macros or inline functions in the headers.
static GstMessageType gstkit_message_type(GstMessage *msg) {
	return GST_MESSAGE_TYPE(msg);
}
static const gchar *gstkit_message_src_name(GstMessage *msg) {
	return GST_MESSAGE_SRC_NAME(msg);
}
static void gstkit_message_unref(GstMessage *msg) {
	gst_message_unref(msg);
}
static GstMessage *gstkit_message_ref(GstMessage *msg) {
	return gst_message_ref(msg);
}
*/
import "C"

import "unsafe"

// MessageType mirrors the subset of GstMessageType the control surface
// observes. Message delivery semantics belong to the engine.
type MessageType int

const (
	MessageUnknown         MessageType = C.GST_MESSAGE_UNKNOWN
	MessageEOS             MessageType = C.GST_MESSAGE_EOS
	MessageError           MessageType = C.GST_MESSAGE_ERROR
	MessageWarning         MessageType = C.GST_MESSAGE_WARNING
	MessageInfo            MessageType = C.GST_MESSAGE_INFO
	MessageBuffering       MessageType = C.GST_MESSAGE_BUFFERING
	MessageStateChanged    MessageType = C.GST_MESSAGE_STATE_CHANGED
	MessageAsyncDone       MessageType = C.GST_MESSAGE_ASYNC_DONE
	MessageDurationChanged MessageType = C.GST_MESSAGE_DURATION_CHANGED
	MessageAny             MessageType = C.GST_MESSAGE_ANY
)

func (t MessageType) String() string {
	switch t {
	case MessageEOS:
		return "eos"
	case MessageError:
		return "error"
	case MessageWarning:
		return "warning"
	case MessageInfo:
		return "info"
	case MessageBuffering:
		return "buffering"
	case MessageStateChanged:
		return "state-changed"
	case MessageAsyncDone:
		return "async-done"
	case MessageDurationChanged:
		return "duration-changed"
	default:
		return "unknown"
	}
}

// Bus is the message bus of a top-level pipeline.
type Bus struct {
	object
}

// wrapBus adopts a bus handle returned with a new reference-count unit,
// absent on NULL. Elements below the top-level pipeline have no usable
// bus.
func wrapBus(ptr *C.GstBus) (*Bus, bool) {
	obj, ok := adoptObject((*C.GstObject)(unsafe.Pointer(ptr)))
	if !ok {
		return nil, false
	}
	return &Bus{object: obj}, true
}

// BusFromPointer adopts an existing native bus handle whose
// reference-count unit the collaborator is handing over.
func BusFromPointer(ptr unsafe.Pointer) (*Bus, bool) {
	return wrapBus((*C.GstBus)(ptr))
}

func (b *Bus) gstBus() *C.GstBus {
	return (*C.GstBus)(unsafe.Pointer(b.ptr))
}

// TimedPop waits up to timeout for a message on the bus. A timeout of
// zero polls without blocking; ClockTimeNone waits forever. The caller
// must Unref the returned message.
func (b *Bus) TimedPop(timeout ClockTime) (*Message, bool) {
	msg := C.gst_bus_timed_pop(b.gstBus(), C.GstClockTime(timeout))
	if msg == nil {
		return nil, false
	}
	return &Message{ptr: msg}, true
}

// Pop returns the next pending message without blocking.
func (b *Bus) Pop() (*Message, bool) {
	return b.TimedPop(0)
}

// Message is a single message popped from a bus. Messages are refcounted
// mini objects, not full engine objects, so they carry their own narrow
// ownership contract: every popped message must be released with Unref.
type Message struct {
	ptr *C.GstMessage
}

// Type returns the type of the message.
func (m *Message) Type() MessageType {
	return MessageType(C.gstkit_message_type(m.ptr))
}

// SourceName returns the name of the object that posted the message, or
// "" when the source is gone.
func (m *Message) SourceName() string {
	cname := C.gstkit_message_src_name(m.ptr)
	if cname == nil {
		return ""
	}
	return C.GoString(cname)
}

// ParseError parses an error message into its text. Empty for messages
// that are not errors.
func (m *Message) ParseError() string {
	if m.Type() != MessageError {
		return ""
	}
	var gerr *C.GError
	var debug *C.gchar
	C.gst_message_parse_error(m.ptr, &gerr, &debug)
	defer C.g_error_free(gerr)
	defer C.g_free(C.gpointer(debug))
	return C.GoString(gerr.message)
}

// Ref takes an additional reference-count unit and returns a second
// independent wrapper over the message.
func (m *Message) Ref() *Message {
	return &Message{ptr: C.gstkit_message_ref(m.ptr)}
}

// Unref releases the message.
func (m *Message) Unref() {
	if m.ptr == nil {
		return
	}
	C.gstkit_message_unref(m.ptr)
	m.ptr = nil
}
