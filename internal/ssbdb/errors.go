package ssbdb

import (
	"errors"
	"fmt"
)

// Code names a taxonomy of failure modes a Store operation can fail with.
type Code string

const (
	CodeMessageNotFound                   Code = "MessageNotFound"
	CodeFeedNotFound                      Code = "FeedNotFound"
	CodeOffsetAppend                      Code = "OffsetAppendError"
	CodeOffsetGet                         Code = "OffsetGetError"
	CodeSqliteAppend                      Code = "SqliteAppendError"
	CodeUnableToGetLatestSequence         Code = "UnableToGetLatestSequence"
	CodeIncludeKeysIncludeValuesBothFalse Code = "IncludeKeysIncludeValuesBothFalse"
)

// Error is a Store operation failure tagged with its Code, so callers can
// branch on failure mode with errors.As without string-matching messages.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ssbdb: %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("ssbdb: %s", e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrIncludeKeysIncludeValuesBothFalse is the wrapped error on an
// IncludeKeysIncludeValuesBothFalse Error: a query projection must ask for
// at least one of the key or the value.
var ErrIncludeKeysIncludeValuesBothFalse = errors.New("ssbdb: include_keys and include_values were both false")
