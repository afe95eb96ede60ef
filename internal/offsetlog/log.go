package offsetlog

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

// FrameWidth is the on-disk size, in bytes, of a frame's trailing
// next-offset field. It is fixed for the lifetime of a log file; mixing
// widths on the same file produces a corrupt log.
type FrameWidth int

const (
	Width32 FrameWidth = 4
	Width64 FrameWidth = 8
)

// FsyncPolicy controls when Append/AppendBatch calls down to File.Sync.
type FsyncPolicy int

const (
	// FsyncNever never calls Sync; durability is left to the OS page cache.
	FsyncNever FsyncPolicy = iota
	// FsyncPerBatch calls Sync once after each Append/AppendBatch call.
	FsyncPerBatch
	// FsyncPerEntry is currently equivalent to FsyncPerBatch, since a
	// batch is written with a single syscall; it exists so callers can
	// express intent even before a split-write path is added.
	FsyncPerEntry
)

const lengthFieldSize = 4

// Entry is one decoded frame, tagged with the byte offset it starts at.
type Entry struct {
	Offset  uint64
	Payload []byte
}

// OffsetLog is a single append-only, length-framed binary log file.
type OffsetLog struct {
	mu    sync.RWMutex
	f     *os.File
	path  string
	width FrameWidth
	fsync FsyncPolicy
	size  int64
}

// Open opens or creates the log file at path. The frame width and fsync
// policy apply to all future appends; an existing file is trusted to have
// been written with the same width.
func Open(path string, width FrameWidth, policy FsyncPolicy) (*OffsetLog, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("offsetlog: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("offsetlog: stat %s: %w", path, err)
	}
	return &OffsetLog{
		f:     f,
		path:  path,
		width: width,
		fsync: policy,
		size:  info.Size(),
	}, nil
}

// Close closes the underlying file.
func (l *OffsetLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// Path returns the file path the log was opened with.
func (l *OffsetLog) Path() string { return l.path }

// Size returns the current append point, i.e. the byte offset a new frame
// would be written at.
func (l *OffsetLog) Size() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(l.size)
}

func frameSize(payloadLen int, width FrameWidth) int64 {
	return int64(lengthFieldSize) + int64(payloadLen) + int64(lengthFieldSize) + int64(width)
}

func (l *OffsetLog) encodeFrame(dst []byte, payload []byte, nextOffset uint64) []byte {
	var lenBuf [lengthFieldSize]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, payload...)
	dst = append(dst, lenBuf[:]...)
	switch l.width {
	case Width32:
		var nb [4]byte
		binary.BigEndian.PutUint32(nb[:], uint32(nextOffset))
		dst = append(dst, nb[:]...)
	default:
		var nb [8]byte
		binary.BigEndian.PutUint64(nb[:], nextOffset)
		dst = append(dst, nb[:]...)
	}
	return dst
}

// Append writes a single frame and returns the offset it was written at.
func (l *OffsetLog) Append(payload []byte) (uint64, error) {
	return l.AppendBatch([][]byte{payload})
}

// AppendBatch writes one frame per payload, back to back, as a single
// write. It returns the offset of the first frame written. On any failure
// the file is truncated back to its pre-call size, so a partial write never
// leaves a dangling frame on disk.
func (l *OffsetLog) AppendBatch(payloads [][]byte) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	startOffset := uint64(l.size)
	offset := startOffset
	var buf []byte
	for _, p := range payloads {
		next := offset + uint64(frameSize(len(p), l.width))
		buf = l.encodeFrame(buf, p, next)
		offset = next
	}

	n, err := l.f.WriteAt(buf, int64(startOffset))
	if err != nil {
		l.f.Truncate(int64(startOffset))
		return 0, fmt.Errorf("%w: %v", ErrAppend, err)
	}
	if n != len(buf) {
		l.f.Truncate(int64(startOffset))
		return 0, fmt.Errorf("%w: short write (%d of %d bytes)", ErrAppend, n, len(buf))
	}
	if l.fsync != FsyncNever {
		if err := l.f.Sync(); err != nil {
			l.f.Truncate(int64(startOffset))
			return 0, fmt.Errorf("%w: fsync: %v", ErrAppend, err)
		}
	}
	l.size = int64(offset)
	return startOffset, nil
}

// Get reads the payload of the frame starting at offset, verifying the
// frame's own leading/trailing length fields agree.
func (l *OffsetLog) Get(offset uint64) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	payload, _, err := l.readFrame(offset)
	return payload, err
}

// readFrame decodes the frame at offset and also returns the next-offset
// value stored in its trailing field, so the iterator can walk the log
// using exactly what was written rather than a recomputed value.
func (l *OffsetLog) readFrame(offset uint64) ([]byte, uint64, error) {
	if offset >= uint64(l.size) {
		return nil, 0, ErrOffsetOutOfRange
	}
	var lenBuf [lengthFieldSize]byte
	if _, err := l.f.ReadAt(lenBuf[:], int64(offset)); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrGet, err)
	}
	payloadLen := binary.BigEndian.Uint32(lenBuf[:])
	fsz := frameSize(int(payloadLen), l.width)
	if offset+uint64(fsz) > uint64(l.size) {
		return nil, 0, ErrCorruptFrame
	}
	full := make([]byte, fsz)
	if _, err := l.f.ReadAt(full, int64(offset)); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrGet, err)
	}
	payload := full[lengthFieldSize : lengthFieldSize+payloadLen]
	trailingStart := lengthFieldSize + payloadLen
	trailingLen := binary.BigEndian.Uint32(full[trailingStart : trailingStart+lengthFieldSize])
	if trailingLen != payloadLen {
		return nil, 0, ErrCorruptFrame
	}
	nextField := full[trailingStart+lengthFieldSize:]
	var next uint64
	switch l.width {
	case Width32:
		next = uint64(binary.BigEndian.Uint32(nextField))
	default:
		next = binary.BigEndian.Uint64(nextField)
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, next, nil
}
