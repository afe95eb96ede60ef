// Package ssbdb is the query façade over an offset log and its relational
// index: Store composes internal/offsetlog, internal/sqlindex, and
// internal/indexer behind the five operations a legacy replication
// consumer needs — append a batch of messages, fetch one by key or by
// feed-and-sequence, read a feed's latest sequence, and page through a
// feed's messages newer than a given sequence.
//
// A Store owns two backing files at basePath: basePath+".offset" (the log)
// and basePath+".sqlite3" (the index). Appends hold the log's writer lock
// exclusively; index reads and writes are serialized behind a single
// mutex, matching sqlindex's single-connection discipline.
package ssbdb
