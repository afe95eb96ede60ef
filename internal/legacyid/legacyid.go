package legacyid

import (
	"fmt"
	"strings"
)

// FeedID is a feed's identifier in legacy SSB string form, e.g.
// "@U5GvOKP/YUza9k53DSXxT0mk3PIrnyAmessvNfZl5E0=.ed25519".
type FeedID string

// MessageKey is a message's identifier in legacy SSB string form, e.g.
// "%/v5mCnV/kmnVtnF3zXtD4tbzoEQo4kRq/0d/bgxP1WI=.sha256".
type MessageKey string

// NewFeedID validates that s has the legacy feed id shape ("@...suffix")
// and returns it as a FeedID. It does not decode or verify the embedded
// key material.
func NewFeedID(s string) (FeedID, error) {
	if !strings.HasPrefix(s, "@") || !strings.Contains(s, ".") {
		return "", fmt.Errorf("legacyid: %q is not a legacy feed id", s)
	}
	return FeedID(s), nil
}

// NewMessageKey validates that s has the legacy message key shape
// ("%...suffix") and returns it as a MessageKey. It does not decode or
// verify the embedded digest.
func NewMessageKey(s string) (MessageKey, error) {
	if !strings.HasPrefix(s, "%") || !strings.Contains(s, ".") {
		return "", fmt.Errorf("legacyid: %q is not a legacy message key", s)
	}
	return MessageKey(s), nil
}

func (f FeedID) String() string { return string(f) }

func (k MessageKey) String() string { return string(k) }
