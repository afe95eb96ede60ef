package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ssbdb/internal/envelope"
	"github.com/roach88/ssbdb/internal/offsetlog"
	"github.com/roach88/ssbdb/internal/sqlindex"
)

// DefaultChunkSize is the number of frames indexed per committed
// transaction.
const DefaultChunkSize = 10000

// Result reports what a single UpdateIndexesFromOffsetFile run did.
type Result struct {
	FramesIndexed      int
	FramesSkipped      int
	HighWaterMark       int64
	HighWaterMarkValid  bool
}

// UpdateIndexesFromOffsetFile walks log starting just after the index's
// current high-water mark and indexes every frame it finds, chunkSize
// frames per committed transaction. A chunkSize <= 0 uses DefaultChunkSize.
// A nil logger discards all log output.
func UpdateIndexesFromOffsetFile(ctx context.Context, log *offsetlog.OffsetLog, idx *sqlindex.Store, chunkSize int, logger *slog.Logger) (Result, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	maxSeq, hasMax, err := idx.GetLatest(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnableToGetLatestSequence, err)
	}

	result := Result{HighWaterMark: maxSeq, HighWaterMarkValid: hasMax}

	var start uint64
	skip := 0
	if hasMax {
		start = uint64(maxSeq)
		skip = 1
	}
	it := log.IterAtOffset(start)

	for {
		chunk, done, err := collectChunk(it, chunkSize, &skip)
		if err != nil {
			return result, fmt.Errorf("indexer: read log: %w", err)
		}
		if len(chunk) > 0 {
			indexed, skipped, lastOffset, err := applyChunk(ctx, idx, chunk, logger)
			if err != nil {
				return result, fmt.Errorf("%w: %v", ErrSqliteAppend, err)
			}
			result.FramesIndexed += indexed
			result.FramesSkipped += skipped
			result.HighWaterMark = lastOffset
			result.HighWaterMarkValid = true
			logger.Info("indexed chunk", "indexed", indexed, "skipped", skipped, "high_water_mark", lastOffset)
		}
		if done {
			break
		}
	}
	return result, nil
}

// collectChunk pulls up to size post-skip entries from it. done reports
// whether the iterator is exhausted.
func collectChunk(it *offsetlog.Iterator, size int, skip *int) ([]offsetlog.Entry, bool, error) {
	var chunk []offsetlog.Entry
	for len(chunk) < size {
		entry, err := it.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return chunk, true, nil
			}
			return chunk, false, err
		}
		if *skip > 0 {
			*skip--
			continue
		}
		chunk = append(chunk, entry)
	}
	return chunk, false, nil
}

// applyChunk indexes one chunk of frames inside a single transaction. A
// tombstone or malformed frame is counted as skipped and otherwise
// ignored. lastOffset is the offset of the chunk's last frame, used as the
// new high-water mark regardless of whether that particular frame was
// indexed or skipped, since every offset up to and including it has now
// been considered.
func applyChunk(ctx context.Context, idx *sqlindex.Store, chunk []offsetlog.Entry, logger *slog.Logger) (indexed, skipped int, lastOffset int64, err error) {
	tx, err := idx.BeginTx(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, entry := range chunk {
		env, perr := envelope.ParseEnvelope(entry.Payload)
		if perr != nil {
			skipped++
			logger.Debug("skipping frame", "offset", entry.Offset, "reason", perr)
			continue
		}
		keyID, kerr := tx.FindOrCreateKey(ctx, env.Key)
		if kerr != nil {
			err = kerr
			return
		}
		authorID, aerr := tx.FindOrCreateAuthor(ctx, env.Author)
		if aerr != nil {
			err = aerr
			return
		}
		if ierr := tx.InsertMessage(ctx, int32(env.Sequence), int64(entry.Offset), keyID, authorID); ierr != nil {
			err = ierr
			return
		}
		indexed++
	}

	lastOffset = int64(chunk[len(chunk)-1].Offset)
	if cerr := tx.Commit(); cerr != nil {
		err = cerr
		return
	}
	return indexed, skipped, lastOffset, nil
}
