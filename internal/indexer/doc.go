// Package indexer brings a sqlindex.Store up to date with an offsetlog.OffsetLog.
//
// UpdateIndexesFromOffsetFile resumes from the index's own high-water mark
// (the highest flume_seq already indexed), skips the one frame already
// recorded there, and walks the remainder of the log in fixed-size chunks,
// committing one transaction per chunk. A frame that is a tombstone or
// fails to parse is silently skipped rather than aborting the run — the
// same tolerance the offset log itself extends to a torn final write.
package indexer
