package gst

/*
#cgo pkg-config: gstreamer-1.0
#include <gst/gst.h>
#include <stdlib.h>

// g_object_set is variadic and cannot be called through cgo, so each
// property type gets a fixed-arity helper. The value width must match the
// property type exactly or the varargs are read wrong.
static void gstkit_set_string(GObject *obj, const gchar *name, const gchar *value) {
	g_object_set(obj, name, value, NULL);
}
static void gstkit_set_int(GObject *obj, const gchar *name, gint value) {
	g_object_set(obj, name, value, NULL);
}
static void gstkit_set_int64(GObject *obj, const gchar *name, gint64 value) {
	g_object_set(obj, name, value, NULL);
}
static void gstkit_set_uint(GObject *obj, const gchar *name, guint value) {
	g_object_set(obj, name, value, NULL);
}
static void gstkit_set_uint64(GObject *obj, const gchar *name, guint64 value) {
	g_object_set(obj, name, value, NULL);
}
static void gstkit_set_bool(GObject *obj, const gchar *name, gboolean value) {
	g_object_set(obj, name, value, NULL);
}
static void gstkit_set_double(GObject *obj, const gchar *name, gdouble value) {
	g_object_set(obj, name, value, NULL);
}
static void gstkit_set_object(GObject *obj, const gchar *name, gpointer value) {
	g_object_set(obj, name, value, NULL);
}

static GParamSpec *gstkit_find_property(GObject *obj, const gchar *name) {
	return g_object_class_find_property(G_OBJECT_GET_CLASS(obj), name);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// ownership is the discipline a wrapper applies to its handle.
type ownership uint8

const (
	// owning wrappers hold exactly one reference-count unit and release
	// it exactly once, on Unref.
	owning ownership = iota
	// borrowed wrappers never ref or unref; they must not outlive the
	// lender of the handle.
	borrowed
	// inert wrappers have already given up their unit, either by Unref
	// or by transferring it into native code. They must not be used.
	inert
)

// object is the wrapper base shared by Element, Pad, Bus and Pipeline:
// a non-nil native handle plus its ownership discipline. All construction
// goes through the null-checked constructors below; no other code may wrap
// a native pointer.
type object struct {
	ptr  *C.GstObject
	mode ownership
}

// adoptObject wraps a handle whose reference-count unit is being handed
// over by the caller. Returns false on a NULL pointer.
func adoptObject(ptr *C.GstObject) (object, bool) {
	if ptr == nil {
		return object{}, false
	}
	return object{ptr: ptr, mode: owning}, true
}

// sinkObject claims a possibly-floating reference and wraps it as owning.
// This is the one-shot normalization step performed at factory-construction
// time: the engine hands out a floating unit that must be sunk before it is
// safe to hold.
func sinkObject(ptr *C.GstObject) (object, bool) {
	if ptr == nil {
		return object{}, false
	}
	C.gst_object_ref_sink(C.gpointer(unsafe.Pointer(ptr)))
	return object{ptr: ptr, mode: owning}, true
}

// acquireObject takes an additional reference-count unit on the handle and
// wraps it as owning. The lender keeps its own unit.
func acquireObject(ptr *C.GstObject) (object, bool) {
	if ptr == nil {
		return object{}, false
	}
	C.gst_object_ref(C.gpointer(unsafe.Pointer(ptr)))
	return object{ptr: ptr, mode: owning}, true
}

// borrowObject wraps a handle without touching its reference count. The
// wrapper must not outlive whoever lent the handle; that is a scoping rule
// for the caller, not something the wrapper can enforce.
func borrowObject(ptr *C.GstObject) (object, bool) {
	if ptr == nil {
		return object{}, false
	}
	return object{ptr: ptr, mode: borrowed}, true
}

// ref takes a new unit on the same handle and returns a second, independent
// owning wrapper. Both halves are usable and must each be unreffed; the
// native object is destroyed only when the last unit anywhere is released.
func (o *object) ref() object {
	C.gst_object_ref(C.gpointer(unsafe.Pointer(o.ptr)))
	return object{ptr: o.ptr, mode: owning}
}

// Unref releases the wrapper's reference-count unit. Only an owning
// wrapper releases anything; borrowed and inert wrappers are untouched.
// After Unref the wrapper is inert.
func (o *object) Unref() {
	if o.mode != owning {
		return
	}
	o.mode = inert
	C.gst_object_unref(C.gpointer(unsafe.Pointer(o.ptr)))
}

// Transfer consumes the wrapper's unit and returns the bare handle for a
// native call that accepts ownership. The wrapper is inert afterwards, so
// the transferred unit cannot be released a second time.
func (o *object) Transfer() unsafe.Pointer {
	o.mode = inert
	return unsafe.Pointer(o.ptr)
}

// Handle returns the native pointer without any ownership change. The
// caller must not keep it beyond the wrapper's lifetime.
func (o *object) Handle() unsafe.Pointer {
	return unsafe.Pointer(o.ptr)
}

func (o *object) gobj() *C.GObject {
	return (*C.GObject)(unsafe.Pointer(o.ptr))
}

// Name returns the name of the underlying object.
func (o *object) Name() string {
	cname := C.gst_object_get_name(o.ptr)
	if cname == nil {
		return ""
	}
	defer C.g_free(C.gpointer(cname))
	return C.GoString(cname)
}

// SetName sets the name of the underlying object.
func (o *object) SetName(name string) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.gst_object_set_name(o.ptr, (*C.gchar)(cname))
}

// SetProperty sets a scalar or object-valued property by name. The generic
// GValue marshaling system stays inside the engine; only the types the
// control surface needs are supported here.
func (o *object) SetProperty(name string, value interface{}) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	switch v := value.(type) {
	case string:
		cv := C.CString(v)
		defer C.free(unsafe.Pointer(cv))
		C.gstkit_set_string(o.gobj(), (*C.gchar)(cname), (*C.gchar)(cv))
	case int:
		C.gstkit_set_int(o.gobj(), (*C.gchar)(cname), C.gint(v))
	case int64:
		C.gstkit_set_int64(o.gobj(), (*C.gchar)(cname), C.gint64(v))
	case uint:
		C.gstkit_set_uint(o.gobj(), (*C.gchar)(cname), C.guint(v))
	case uint64:
		C.gstkit_set_uint64(o.gobj(), (*C.gchar)(cname), C.guint64(v))
	case bool:
		b := C.gboolean(0)
		if v {
			b = 1
		}
		C.gstkit_set_bool(o.gobj(), (*C.gchar)(cname), b)
	case float64:
		C.gstkit_set_double(o.gobj(), (*C.gchar)(cname), C.gdouble(v))
	case *Element:
		// The element round-trips as a stable handle reference; the
		// engine refs it for the property slot, the wrapper keeps its
		// own unit.
		C.gstkit_set_object(o.gobj(), (*C.gchar)(cname), C.gpointer(v.Handle()))
	default:
		return fmt.Errorf("unsupported property type %T for %q", value, name)
	}
	return nil
}

// getPropertyValue reads a property into a GValue. The caller must unset
// the value. Returns false if the object has no such property.
func (o *object) getPropertyValue(name string, value *C.GValue) bool {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	pspec := C.gstkit_find_property(o.gobj(), (*C.gchar)(cname))
	if pspec == nil {
		return false
	}
	C.g_value_init(value, pspec.value_type)
	C.g_object_get_property(o.gobj(), (*C.gchar)(cname), value)
	return true
}
