package offsetlog

import (
	"errors"
	"io"
)

// Iterator walks a log forward from a starting offset. It is not safe for
// concurrent use by multiple goroutines, but may run concurrently with
// other readers and with Get; it only ever blocks on appends.
type Iterator struct {
	log    *OffsetLog
	offset uint64
}

// IterAtOffset returns an Iterator positioned to read the frame at start
// next. Passing 0 starts at the beginning of the log.
func (l *OffsetLog) IterAtOffset(start uint64) *Iterator {
	return &Iterator{log: l, offset: start}
}

// Next decodes the frame at the iterator's current position and advances
// it to the offset recorded in that frame's trailing field. It returns
// io.EOF once the current position has reached the log's append point, and
// also treats a torn or undersized tail (e.g. a process killed mid-append)
// as end of iteration rather than an error.
func (it *Iterator) Next() (Entry, error) {
	it.log.mu.RLock()
	defer it.log.mu.RUnlock()

	if it.offset >= uint64(it.log.size) {
		return Entry{}, io.EOF
	}
	payload, next, err := it.log.readFrame(it.offset)
	if err != nil {
		if errors.Is(err, ErrCorruptFrame) || errors.Is(err, ErrOffsetOutOfRange) {
			return Entry{}, io.EOF
		}
		return Entry{}, err
	}
	entry := Entry{Offset: it.offset, Payload: payload}
	it.offset = next
	return entry, nil
}
