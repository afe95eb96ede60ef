// Package sqlindex is the relational index over an offset log: three
// tables (authors, keys, messages) that let the query façade answer "by
// key", "by author and sequence", and "newer than sequence" lookups without
// scanning the log.
//
// messages.flume_seq is the log offset the row was derived from and is
// never recomputed; it is both the index's primary key and the pointer
// back into the offset log. authors and keys are deduplicated by a
// select-then-insert-then-reselect pattern, which is safe under the
// single-writer discipline SetMaxOpenConns(1) enforces.
package sqlindex
