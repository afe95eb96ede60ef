package ssbdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/roach88/ssbdb/internal/envelope"
	"github.com/roach88/ssbdb/internal/indexer"
	"github.com/roach88/ssbdb/internal/legacyid"
	"github.com/roach88/ssbdb/internal/offsetlog"
	"github.com/roach88/ssbdb/internal/sqlindex"
)

// Store is an offset log plus its relational index, presented as the
// query façade legacy replication needs.
type Store struct {
	logMu sync.RWMutex
	idxMu sync.Mutex

	log *offsetlog.OffsetLog
	idx *sqlindex.Store

	logPath    string
	idxPath    string
	logger     *slog.Logger
	chunkSize  int
	frameWidth offsetlog.FrameWidth
	fsync      offsetlog.FsyncPolicy
}

// Open opens or creates the log and index files at basePath+".offset" and
// basePath+".sqlite3", then brings the index up to date with the log
// before returning.
func Open(basePath string, opts ...Option) (*Store, error) {
	s := defaultStore(basePath)
	for _, opt := range opts {
		opt(s)
	}

	log, err := offsetlog.Open(s.logPath, s.frameWidth, s.fsync)
	if err != nil {
		return nil, fmt.Errorf("ssbdb: open offset log: %w", err)
	}
	idx, err := sqlindex.Open(s.idxPath)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("ssbdb: open index: %w", err)
	}
	s.log = log
	s.idx = idx

	if _, err := s.updateIndexes(context.Background()); err != nil {
		log.Close()
		idx.Close()
		return nil, indexerError(err)
	}
	return s, nil
}

// Close closes the log and index files.
func (s *Store) Close() error {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	s.idxMu.Lock()
	defer s.idxMu.Unlock()

	var errs []error
	if err := s.log.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.idx.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Store) updateIndexes(ctx context.Context) (indexer.Result, error) {
	s.idxMu.Lock()
	defer s.idxMu.Unlock()
	s.logMu.RLock()
	defer s.logMu.RUnlock()
	return indexer.UpdateIndexesFromOffsetFile(ctx, s.log, s.idx, s.chunkSize, s.logger)
}

// indexerError tags an indexer failure with the Code that distinguishes a
// failure to read the index's high-water mark from a failed chunk commit.
func indexerError(err error) *Error {
	if errors.Is(err, indexer.ErrUnableToGetLatestSequence) {
		return &Error{Code: CodeUnableToGetLatestSequence, Err: err}
	}
	return &Error{Code: CodeSqliteAppend, Err: err}
}

// AppendBatch appends messages to the log and synchronously brings the
// index up to date. feedID is advisory only: ssbdb does not verify that
// every payload's parsed author actually matches it.
func (s *Store) AppendBatch(feedID legacyid.FeedID, messages [][]byte) error {
	s.logMu.Lock()
	_, err := s.log.AppendBatch(messages)
	s.logMu.Unlock()
	if err != nil {
		return &Error{Code: CodeOffsetAppend, Err: err}
	}

	if _, err := s.updateIndexes(context.Background()); err != nil {
		return indexerError(err)
	}
	return nil
}

// GetEntryByKey returns the raw message frame with the given key.
func (s *Store) GetEntryByKey(key legacyid.MessageKey) ([]byte, error) {
	s.idxMu.Lock()
	flumeSeq, err := s.idx.FindMessageFlumeSeqByKey(context.Background(), key.String())
	s.idxMu.Unlock()
	if err != nil {
		return nil, &Error{Code: CodeMessageNotFound, Err: err}
	}

	s.logMu.RLock()
	payload, err := s.log.Get(uint64(flumeSeq))
	s.logMu.RUnlock()
	if err != nil {
		return nil, &Error{Code: CodeOffsetGet, Err: err}
	}
	return payload, nil
}

// GetEntryBySeq returns the raw message frame for feedID's message at
// sequence. found is false, with no error, if no such message is indexed.
func (s *Store) GetEntryBySeq(feedID legacyid.FeedID, sequence int32) (payload []byte, found bool, err error) {
	s.idxMu.Lock()
	flumeSeq, found, ferr := s.idx.FindMessageFlumeSeqByAuthorAndSequence(context.Background(), feedID.String(), sequence)
	s.idxMu.Unlock()
	if ferr != nil {
		return nil, false, &Error{Code: CodeMessageNotFound, Err: ferr}
	}
	if !found {
		return nil, false, nil
	}

	s.logMu.RLock()
	payload, gerr := s.log.Get(uint64(flumeSeq))
	s.logMu.RUnlock()
	if gerr != nil {
		return nil, false, &Error{Code: CodeOffsetGet, Err: gerr}
	}
	return payload, true, nil
}

// GetFeedLatestSequence returns the highest sequence number indexed for
// feedID. found is false, with no error, if the feed has no indexed
// messages.
func (s *Store) GetFeedLatestSequence(feedID legacyid.FeedID) (seq int32, found bool, err error) {
	s.idxMu.Lock()
	defer s.idxMu.Unlock()
	seq, found, err = s.idx.FindFeedLatestSeq(context.Background(), feedID.String())
	if err != nil {
		return 0, false, &Error{Code: CodeFeedNotFound, Err: err}
	}
	return seq, found, nil
}

// GetEntriesNewerThanSequence returns, in log order, the entries of
// feedID's feed with sequence greater than after. includeKeys and
// includeValues select the projection: both true returns the raw frame,
// keys-only returns just the "key" field's bytes, values-only returns an
// order-preserving re-serialization of the "value" field, and both false
// is a usage error. limit, if non-nil, bounds the number of entries
// returned. An entry that fails to parse under a projection that requires
// parsing is dropped from the result rather than failing the whole call.
func (s *Store) GetEntriesNewerThanSequence(feedID legacyid.FeedID, after int32, limit *int64, includeKeys, includeValues bool) ([][]byte, error) {
	if !includeKeys && !includeValues {
		return nil, &Error{Code: CodeIncludeKeysIncludeValuesBothFalse, Err: ErrIncludeKeysIncludeValuesBothFalse}
	}

	s.idxMu.Lock()
	flumeSeqs, err := s.idx.FindFeedFlumeSeqsNewerThan(context.Background(), feedID.String(), after, limit)
	s.idxMu.Unlock()
	if err != nil {
		return nil, &Error{Code: CodeFeedNotFound, Err: err}
	}

	s.logMu.RLock()
	defer s.logMu.RUnlock()

	out := make([][]byte, 0, len(flumeSeqs))
	for _, flumeSeq := range flumeSeqs {
		raw, err := s.log.Get(uint64(flumeSeq))
		if err != nil {
			return nil, &Error{Code: CodeOffsetGet, Err: err}
		}

		switch {
		case includeKeys && includeValues:
			out = append(out, raw)
		case includeKeys:
			key, perr := envelope.ExtractKey(raw)
			if perr != nil {
				continue
			}
			out = append(out, []byte(key))
		default:
			val, perr := envelope.ExtractValue(raw)
			if perr != nil {
				continue
			}
			encoded, eerr := envelope.Encode(val)
			if eerr != nil {
				continue
			}
			out = append(out, encoded)
		}
	}
	return out, nil
}

// RebuildIndexes discards the relational index and reconstructs it from
// the offset log from scratch.
func (s *Store) RebuildIndexes() error {
	s.idxMu.Lock()
	defer s.idxMu.Unlock()

	if err := s.idx.Close(); err != nil {
		return &Error{Code: CodeSqliteAppend, Err: err}
	}
	if err := os.Remove(s.idxPath); err != nil && !os.IsNotExist(err) {
		return &Error{Code: CodeSqliteAppend, Err: err}
	}

	idx, err := sqlindex.Open(s.idxPath)
	if err != nil {
		return &Error{Code: CodeSqliteAppend, Err: err}
	}
	s.idx = idx

	s.logMu.RLock()
	_, err = indexer.UpdateIndexesFromOffsetFile(context.Background(), s.log, s.idx, s.chunkSize, s.logger)
	s.logMu.RUnlock()
	if err != nil {
		return indexerError(err)
	}
	return nil
}
