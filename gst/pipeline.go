package gst

/*
#cgo pkg-config: gstreamer-1.0
#include <gst/gst.h>
#include <stdlib.h>

static GstBin *gstkit_as_bin(GstObject *obj) {
	return GST_BIN(obj);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Pipeline is a top-level container element. It embeds Element, so state
// control, querying and seeking apply to the pipeline as a whole, and it
// is the one element whose Bus is usable.
type Pipeline struct {
	Element
}

// NewPipeline creates an empty pipeline. An empty name lets the engine
// auto-generate one. The floating reference is sunk into the returned
// owning wrapper, as with element construction.
func NewPipeline(name string) (*Pipeline, error) {
	var cname *C.gchar
	if name != "" {
		cn := C.CString(name)
		defer C.free(unsafe.Pointer(cn))
		cname = (*C.gchar)(cn)
	}

	pipeline := C.gst_pipeline_new(cname)
	obj, ok := sinkObject((*C.GstObject)(unsafe.Pointer(pipeline)))
	if !ok {
		log.Warnf("failed to create pipeline %q", name)
		return nil, fmt.Errorf("pipeline %q could not be created", name)
	}
	return &Pipeline{Element: Element{object: obj}}, nil
}

func (p *Pipeline) bin() *C.GstBin {
	return C.gstkit_as_bin(p.ptr)
}

// Add puts an element into the pipeline. The pipeline sinks the element's
// floating reference or, for an already-owned element, takes a unit of its
// own; the caller's wrapper keeps its unit either way. Elements must be
// added before they are linked.
func (p *Pipeline) Add(e *Element) bool {
	return C.gst_bin_add(p.bin(), e.gstElement()) != 0
}

// AddMany adds elements in order, stopping at the first failure.
func (p *Pipeline) AddMany(elements ...*Element) bool {
	for _, e := range elements {
		if !p.Add(e) {
			return false
		}
	}
	return true
}

// Remove takes an element out of the pipeline, releasing the pipeline's
// reference-count unit. The caller's wrapper is unaffected.
func (p *Pipeline) Remove(e *Element) bool {
	return C.gst_bin_remove(p.bin(), e.gstElement()) != 0
}

// ByName finds a contained element by name, absent when no element with
// that name was added.
func (p *Pipeline) ByName(name string) (*Element, bool) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	elem := C.gst_bin_get_by_name(p.bin(), (*C.gchar)(cname))
	obj, ok := adoptObject((*C.GstObject)(unsafe.Pointer(elem)))
	if !ok {
		return nil, false
	}
	return &Element{object: obj}, true
}
