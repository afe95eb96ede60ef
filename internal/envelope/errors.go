package envelope

import "errors"

// ErrTombstone is returned by ParseEnvelope when the frame's payload is a
// tombstone (every byte is zero), not a real message.
var ErrTombstone = errors.New("envelope: tombstone frame")

// ErrMalformed is returned by ParseEnvelope or Extract* when the payload
// cannot be parsed as a well-formed envelope, or is missing a field the
// caller needs.
var ErrMalformed = errors.New("envelope: malformed message")

// ErrNotObject is returned by ExtractValue when the decoded root is not a
// JSON object, so it has no top-level "key"/"value" fields.
var ErrNotObject = errors.New("envelope: root is not a JSON object")

// ErrNoValueField is returned by ExtractValue when the root object has no
// "value" field.
var ErrNoValueField = errors.New("envelope: no value field")
