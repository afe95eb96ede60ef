package ssbdb

import (
	"io"
	"log/slog"

	"github.com/roach88/ssbdb/internal/indexer"
	"github.com/roach88/ssbdb/internal/offsetlog"
)

// Option configures a Store at Open time.
type Option func(*Store)

// WithLogger sets the logger the indexing pipeline reports through.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithChunkSize sets how many frames the indexing pipeline commits per
// transaction. Default: indexer.DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(s *Store) { s.chunkSize = n }
}

// WithFrameWidth sets the offset log's next-offset field width. It only
// matters for a log being created for the first time; an existing file is
// trusted to already match. Default: offsetlog.Width32.
func WithFrameWidth(w offsetlog.FrameWidth) Option {
	return func(s *Store) { s.frameWidth = w }
}

// WithFsyncPolicy sets the offset log's fsync policy. Default:
// offsetlog.FsyncPerBatch.
func WithFsyncPolicy(p offsetlog.FsyncPolicy) Option {
	return func(s *Store) { s.fsync = p }
}

func defaultStore(basePath string) *Store {
	return &Store{
		logPath:    basePath + ".offset",
		idxPath:    basePath + ".sqlite3",
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		chunkSize:  indexer.DefaultChunkSize,
		frameWidth: offsetlog.Width32,
		fsync:      offsetlog.FsyncPerBatch,
	}
}
