package ssbdb

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ssbdb/internal/legacyid"
)

func envelopeFor(author string, seq int32) []byte {
	return []byte(fmt.Sprintf(
		`{"key":"%%msg%d.sha256","value":{"author":%q,"sequence":%d}}`,
		seq, author, seq,
	))
}

// Invariant 2: get_latest (surfaced here as GetFeedLatestSequence) is
// non-decreasing across any sequence of successful appends.
func TestProperty_HighWaterMonotonicity(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	defer s.Close()

	feed := legacyid.FeedID("@alice.ed25519")
	var last int32 = -1
	for seq := int32(1); seq <= 20; seq++ {
		require.NoError(t, s.AppendBatch(feed, [][]byte{envelopeFor(feed.String(), seq)}))
		cur, found, err := s.GetFeedLatestSequence(feed)
		require.NoError(t, err)
		require.True(t, found)
		assert.GreaterOrEqual(t, cur, last)
		last = cur
	}
}

// Invariant 5: inserting a zeroed-byte frame between real frames does not
// change any query result.
func TestProperty_TombstoneTolerance(t *testing.T) {
	feed := legacyid.FeedID("@alice.ed25519")

	withoutTombstone := filepath.Join(t.TempDir(), "clean")
	s1, err := Open(withoutTombstone)
	require.NoError(t, err)
	defer s1.Close()
	require.NoError(t, s1.AppendBatch(feed, [][]byte{
		envelopeFor(feed.String(), 1),
		envelopeFor(feed.String(), 2),
		envelopeFor(feed.String(), 3),
	}))

	withTombstone := filepath.Join(t.TempDir(), "tombstoned")
	s2, err := Open(withTombstone)
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.AppendBatch(feed, [][]byte{envelopeFor(feed.String(), 1)}))
	require.NoError(t, s2.AppendBatch(feed, [][]byte{make([]byte, 16)}))
	require.NoError(t, s2.AppendBatch(feed, [][]byte{envelopeFor(feed.String(), 2)}))
	require.NoError(t, s2.AppendBatch(feed, [][]byte{make([]byte, 16)}))
	require.NoError(t, s2.AppendBatch(feed, [][]byte{envelopeFor(feed.String(), 3)}))

	seq1, found1, err := s1.GetFeedLatestSequence(feed)
	require.NoError(t, err)
	seq2, found2, err := s2.GetFeedLatestSequence(feed)
	require.NoError(t, err)
	assert.Equal(t, found1, found2)
	assert.Equal(t, seq1, seq2)

	entries1, err := s1.GetEntriesNewerThanSequence(feed, 0, nil, true, true)
	require.NoError(t, err)
	entries2, err := s2.GetEntriesNewerThanSequence(feed, 0, nil, true, true)
	require.NoError(t, err)
	assert.Equal(t, entries1, entries2)
}

// Invariant 6: get_entries_newer_than_sequence(.., false, false) always
// errors; the other three flag combinations succeed.
func TestProperty_ProjectionExclusivity(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	defer s.Close()

	feed := legacyid.FeedID("@alice.ed25519")
	require.NoError(t, s.AppendBatch(feed, [][]byte{envelopeFor(feed.String(), 1)}))

	cases := []struct {
		name                         string
		includeKeys, includeValues   bool
		wantErr                      bool
	}{
		{"both true", true, true, false},
		{"keys only", true, false, false},
		{"values only", false, true, false},
		{"both false", false, false, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := s.GetEntriesNewerThanSequence(feed, 0, nil, c.includeKeys, c.includeValues)
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// The value-only projection must reproduce a string field's '<', '>', and
// '&' bytes literally: re-verifying a message's signature depends on the
// projection matching the original .value byte layout exactly, and Go's
// encoding/json HTML-escapes those characters by default.
func TestProperty_ValueProjectionDoesNotHTMLEscape(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	defer s.Close()

	feed := legacyid.FeedID("@alice.ed25519")
	payload := []byte(`{"key":"%one.sha256","value":{"author":"@alice.ed25519","sequence":1,"text":"a<b && b>c, R&D"}}`)
	require.NoError(t, s.AppendBatch(feed, [][]byte{payload}))

	values, err := s.GetEntriesNewerThanSequence(feed, 0, nil, false, true)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, `{"author":"@alice.ed25519","sequence":1,"text":"a<b && b>c, R&D"}`, string(values[0]))
}

// Invariant 4: rebuild_indexes followed by any query produces the same
// result as not rebuilding.
func TestProperty_RebuildFixpoint(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	defer s.Close()

	feed := legacyid.FeedID("@alice.ed25519")
	for seq := int32(1); seq <= 10; seq++ {
		require.NoError(t, s.AppendBatch(feed, [][]byte{envelopeFor(feed.String(), seq)}))
	}

	before, err := s.GetEntriesNewerThanSequence(feed, 0, nil, true, true)
	require.NoError(t, err)

	require.NoError(t, s.RebuildIndexes())

	after, err := s.GetEntriesNewerThanSequence(feed, 0, nil, true, true)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}
