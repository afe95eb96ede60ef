package offsetlog

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestAppendAndGet_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.offset")

	log, err := Open(path, Width32, FsyncNever)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer log.Close()

	payload := []byte(`{"key":"%abc.sha256","value":{"author":"@x.ed25519","sequence":1}}`)
	offset, err := log.Append(payload)
	if err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if offset != 0 {
		t.Errorf("first append offset = %d, want 0", offset)
	}

	got, err := log.Get(offset)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Get() = %q, want %q", got, payload)
	}
}

func TestAppendBatch_SequentialOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.offset")

	log, err := Open(path, Width32, FsyncNever)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer log.Close()

	payloads := [][]byte{
		[]byte("one"),
		[]byte("two"),
		[]byte("three"),
	}
	start, err := log.AppendBatch(payloads)
	if err != nil {
		t.Fatalf("AppendBatch() failed: %v", err)
	}
	if start != 0 {
		t.Fatalf("start offset = %d, want 0", start)
	}

	it := log.IterAtOffset(0)
	var got [][]byte
	for {
		entry, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next() failed: %v", err)
		}
		got = append(got, entry.Payload)
	}
	if len(got) != len(payloads) {
		t.Fatalf("iterated %d entries, want %d", len(got), len(payloads))
	}
	for i := range payloads {
		if !bytes.Equal(got[i], payloads[i]) {
			t.Errorf("entry %d = %q, want %q", i, got[i], payloads[i])
		}
	}
}

func TestGet_OffsetOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.offset")

	log, err := Open(path, Width32, FsyncNever)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer log.Close()

	if _, err := log.Append([]byte("hello")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	if _, err := log.Get(9999); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("Get() err = %v, want ErrOffsetOutOfRange", err)
	}
}

func TestIterAtOffset_StopsCleanlyOnTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.offset")

	log, err := Open(path, Width32, FsyncNever)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if _, err := log.AppendBatch([][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}); err != nil {
		t.Fatalf("AppendBatch() failed: %v", err)
	}
	fullSize := log.Size()
	if err := log.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// Simulate a process killed mid-append: truncate off the last few bytes
	// of the final frame so it can no longer self-verify.
	if err := os.Truncate(path, int64(fullSize)-2); err != nil {
		t.Fatalf("Truncate() failed: %v", err)
	}

	log, err = Open(path, Width32, FsyncNever)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer log.Close()

	it := log.IterAtOffset(0)
	var count int
	for {
		_, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next() failed: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("iterated %d complete frames, want 2 (the torn third frame should stop iteration, not error)", count)
	}
}

func TestAppend_FailedWriteLeavesSizeUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.offset")

	log, err := Open(path, Width32, FsyncNever)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer log.Close()

	if _, err := log.Append([]byte("first")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	sizeAfterFirst := log.Size()

	// Close the underlying file out from under the log to force a write
	// error, and confirm the cached append point doesn't advance.
	log.f.Close()
	if _, err := log.Append([]byte("second")); err == nil {
		t.Fatal("Append() on closed file succeeded, want error")
	}
	if log.Size() != sizeAfterFirst {
		t.Errorf("Size() = %d after failed append, want unchanged %d", log.Size(), sizeAfterFirst)
	}
}

func TestWidth64_NextOffsetRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.offset")

	log, err := Open(path, Width64, FsyncNever)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer log.Close()

	if _, err := log.AppendBatch([][]byte{[]byte("x"), []byte("y")}); err != nil {
		t.Fatalf("AppendBatch() failed: %v", err)
	}

	it := log.IterAtOffset(0)
	first, err := it.Next()
	if err != nil {
		t.Fatalf("Next() failed: %v", err)
	}
	if !bytes.Equal(first.Payload, []byte("x")) {
		t.Errorf("first payload = %q, want %q", first.Payload, "x")
	}
	second, err := it.Next()
	if err != nil {
		t.Fatalf("Next() failed: %v", err)
	}
	if !bytes.Equal(second.Payload, []byte("y")) {
		t.Errorf("second payload = %q, want %q", second.Payload, "y")
	}
	if _, err := it.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("final Next() err = %v, want io.EOF", err)
	}
}
