// Package offsetlog implements the append-only, length-framed binary log
// that is the source of truth for an ssbdb store.
//
// Each frame on disk is:
//
//	[4-byte BE payload length][payload][4-byte BE payload length][next-offset]
//
// where next-offset is the byte offset of the following frame, encoded as
// either 4 or 8 bytes depending on the FrameWidth the log was opened with.
// The width is fixed for the lifetime of a given file; OffsetLog does not
// attempt to detect a mismatch between the width it was opened with and
// the width frames already on disk were written with.
//
// The file is strictly append-only. Appends are serialized through a
// single in-process writer lock; reads may proceed concurrently with other
// reads but never with an in-flight append.
package offsetlog
