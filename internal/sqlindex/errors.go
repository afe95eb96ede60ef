package sqlindex

import "errors"

// ErrNotFound is returned by lookups that found no matching row.
var ErrNotFound = errors.New("sqlindex: not found")
