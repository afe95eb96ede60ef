package envelope

import (
	"encoding/json"
	"fmt"
)

// Envelope holds the three fields the indexer needs out of a message: the
// message's own key, its author's feed id, and its sequence number within
// that feed.
type Envelope struct {
	Key      string
	Author   string
	Sequence uint32
}

type envelopeShape struct {
	Key   string `json:"key"`
	Value struct {
		Author   string `json:"author"`
		Sequence uint32 `json:"sequence"`
	} `json:"value"`
}

type keyShape struct {
	Key string `json:"key"`
}

// IsTombstone reports whether payload consists entirely of zero bytes,
// including the vacuous case of an empty payload.
func IsTombstone(payload []byte) bool {
	for _, b := range payload {
		if b != 0 {
			return false
		}
	}
	return true
}

// ParseEnvelope decodes the indexable fields of a message frame. It returns
// ErrTombstone for a tombstone frame and ErrMalformed for anything that
// fails to parse as JSON or is missing a required field; both are meant to
// be treated identically by callers that tolerate per-entry indexing
// failures.
func ParseEnvelope(payload []byte) (*Envelope, error) {
	if IsTombstone(payload) {
		return nil, ErrTombstone
	}
	var shape envelopeShape
	if err := json.Unmarshal(payload, &shape); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if shape.Key == "" || shape.Value.Author == "" {
		return nil, fmt.Errorf("%w: missing key or value.author", ErrMalformed)
	}
	return &Envelope{
		Key:      shape.Key,
		Author:   shape.Value.Author,
		Sequence: shape.Value.Sequence,
	}, nil
}

// ExtractKey parses only the top-level "key" field out of a message frame,
// for the key-only query projection.
func ExtractKey(payload []byte) (string, error) {
	var shape keyShape
	if err := json.Unmarshal(payload, &shape); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if shape.Key == "" {
		return "", fmt.Errorf("%w: missing key", ErrMalformed)
	}
	return shape.Key, nil
}

// ExtractValue decodes payload and returns the order-preserving value of
// its top-level "value" field, for the value-only query projection.
func ExtractValue(payload []byte) (OrderedValue, error) {
	root, err := Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	obj, ok := root.(OrderedObject)
	if !ok {
		return nil, ErrNotObject
	}
	for _, pair := range obj {
		if pair.Key == "value" {
			return pair.Value, nil
		}
	}
	return nil, ErrNoValueField
}
