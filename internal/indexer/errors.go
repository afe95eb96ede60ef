package indexer

import "errors"

// ErrSqliteAppend wraps any failure encountered while committing an
// indexed chunk to the relational index. The failing chunk's effects are
// rolled back, so the high-water mark is left at its pre-chunk value and a
// retry is safe.
var ErrSqliteAppend = errors.New("indexer: failed to append to index")

// ErrUnableToGetLatestSequence wraps a failure to read the index's current
// high-water mark, the step that determines where in the log indexing
// should resume. Distinct from ErrSqliteAppend: no chunk has been attempted
// yet, so there is nothing to roll back.
var ErrUnableToGetLatestSequence = errors.New("indexer: unable to get latest sequence")
