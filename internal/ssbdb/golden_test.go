package ssbdb

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ssbdb/internal/legacyid"
)

// TestValueOnlyProjection_Golden pins the exact byte layout the
// value-only projection produces for a message whose value object has a
// deliberately unsorted field order and a string field containing '<',
// '>', and '&', so a regression to map-based JSON encoding (which
// reorders keys) or to json.Marshal-based string encoding (which
// HTML-escapes those characters) both fail this test even though the
// decoded data would still be deep-equal.
func TestValueOnlyProjection_Golden(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	defer s.Close()

	feed := legacyid.FeedID("@alice.ed25519")
	payload := []byte(`{"key":"%one.sha256","value":{"sequence":1,"author":"@alice.ed25519","previous":null,"content":{"type":"post","text":"R&D <hello>","recps":["@bob.ed25519"]}}}`)
	require.NoError(t, s.AppendBatch(feed, [][]byte{payload}))

	values, err := s.GetEntriesNewerThanSequence(feed, 0, nil, false, true)
	require.NoError(t, err)
	require.Len(t, values, 1)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "value_only_projection", values[0])
}
