package offsetlog

import "errors"

// ErrCorruptFrame is returned when a frame's trailing length field does not
// match its leading one, or the frame would run past the end of the file.
var ErrCorruptFrame = errors.New("offsetlog: corrupt frame")

// ErrOffsetOutOfRange is returned by Get when the requested offset is at or
// past the log's current append point.
var ErrOffsetOutOfRange = errors.New("offsetlog: offset out of range")

// ErrAppend wraps any failure encountered while appending, including a
// partial write or a failed fsync. The log's append point is left unchanged
// on this error; the caller may retry.
var ErrAppend = errors.New("offsetlog: append failed")

// ErrGet wraps any I/O failure encountered while reading a frame, as
// distinct from ErrCorruptFrame (a frame that was read fine but fails its
// own self-check).
var ErrGet = errors.New("offsetlog: get failed")
