package gst

/*
#cgo pkg-config: gstreamer-1.0
#include <gst/gst.h>
*/
import "C"

// Format mirrors GstFormat, the unit of position, duration and seek
// values.
type Format int

const (
	FormatUndefined Format = C.GST_FORMAT_UNDEFINED
	FormatDefault   Format = C.GST_FORMAT_DEFAULT
	FormatBytes     Format = C.GST_FORMAT_BYTES
	FormatTime      Format = C.GST_FORMAT_TIME
	FormatBuffers   Format = C.GST_FORMAT_BUFFERS
	FormatPercent   Format = C.GST_FORMAT_PERCENT
)

// SeekFlags mirrors GstSeekFlags. Flags combine with bitwise or.
type SeekFlags int

const (
	SeekFlagNone     SeekFlags = C.GST_SEEK_FLAG_NONE
	SeekFlagFlush    SeekFlags = C.GST_SEEK_FLAG_FLUSH
	SeekFlagAccurate SeekFlags = C.GST_SEEK_FLAG_ACCURATE
	SeekFlagKeyUnit  SeekFlags = C.GST_SEEK_FLAG_KEY_UNIT
	SeekFlagSegment  SeekFlags = C.GST_SEEK_FLAG_SEGMENT
	SeekFlagSkip     SeekFlags = C.GST_SEEK_FLAG_SKIP
)

// SeekType mirrors GstSeekType, how the start and stop values of a seek
// segment are interpreted.
type SeekType int

const (
	SeekTypeNone SeekType = C.GST_SEEK_TYPE_NONE
	SeekTypeSet  SeekType = C.GST_SEEK_TYPE_SET
	SeekTypeEnd  SeekType = C.GST_SEEK_TYPE_END
)
