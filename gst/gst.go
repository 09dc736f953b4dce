// Package gst is a thin control-surface binding to the GStreamer C API.
//
// The package wraps native objects (elements, pads, the message bus) behind
// opaque handles and a strict ownership discipline: every wrapper is either
// owning (holds exactly one reference-count unit, released exactly once),
// borrowed (never refs or unrefs), or inert after its unit has been
// transferred into native code. Construction from a native pointer goes
// through null-checked constructors only; every engine call that can return
// NULL surfaces that as an absent value, never as a wrapper around nil.
//
// Media processing, caps negotiation and plugin discovery stay inside the
// engine. This package only drives control: element creation, linking,
// state transitions, and position/duration/seek queries.
package gst

/*
#cgo pkg-config: gstreamer-1.0
#include <gst/gst.h>
*/
import "C"

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "gst")

var initOnce sync.Once

// Init initializes the GStreamer library. It is safe to call more than
// once; only the first call has any effect. Every program using this
// package must call Init before creating elements.
func Init() {
	initOnce.Do(func() {
		C.gst_init(nil, nil)
		log.Debugf("GStreamer initialized: %s", Version())
	})
}

// Version returns the version string of the linked GStreamer library.
func Version() string {
	cstr := C.gst_version_string()
	defer C.g_free(C.gpointer(cstr))
	return C.GoString(cstr)
}
