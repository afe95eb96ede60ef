package fixtures

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/ssbdb/internal/envelope"
	"github.com/roach88/ssbdb/internal/offsetlog"
)

// EntryMeta records what a generated fixture entry's envelope actually
// contains, since generated keys are random and a test needs some way to
// recover one to look up.
type EntryMeta struct {
	Author   string
	Sequence uint32
	Key      string
}

// Fixture is an expanded scenario: one JSON payload per log entry, in the
// order they'd be appended, with a parallel manifest for the real
// (non-tombstone) entries.
type Fixture struct {
	Payloads [][]byte
	Entries  []EntryMeta
}

// Build expands sc into a Fixture.
func (sc *Scenario) Build() (*Fixture, error) {
	fx := &Fixture{}
	sinceTombstone := 0

	emit := func(payload []byte, meta *EntryMeta) {
		fx.Payloads = append(fx.Payloads, payload)
		if meta != nil {
			fx.Entries = append(fx.Entries, *meta)
		}
		sinceTombstone++
		if sc.TombstoneEvery > 0 && sinceTombstone >= sc.TombstoneEvery {
			fx.Payloads = append(fx.Payloads, make([]byte, 16))
			sinceTombstone = 0
		}
	}

	for _, feed := range sc.Feeds {
		for seq := uint32(1); seq <= feed.Count; seq++ {
			key := newSyntheticKey()
			payload, err := buildEnvelopeJSON(key, feed.Author, seq, nil)
			if err != nil {
				return nil, err
			}
			emit(payload, &EntryMeta{Author: feed.Author, Sequence: seq, Key: key})
		}
		for _, m := range feed.Messages {
			key := m.Key
			if key == "" {
				key = newSyntheticKey()
			}
			payload, err := buildEnvelopeJSON(key, feed.Author, m.Sequence, m.Extra)
			if err != nil {
				return nil, err
			}
			emit(payload, &EntryMeta{Author: feed.Author, Sequence: m.Sequence, Key: key})
		}
	}
	return fx, nil
}

// BuildLog expands sc and appends every generated entry, in order, to a
// freshly opened offset log at path.
func (sc *Scenario) BuildLog(path string, width offsetlog.FrameWidth) (*offsetlog.OffsetLog, *Fixture, error) {
	fx, err := sc.Build()
	if err != nil {
		return nil, nil, err
	}
	log, err := offsetlog.Open(path, width, offsetlog.FsyncNever)
	if err != nil {
		return nil, nil, err
	}
	if len(fx.Payloads) > 0 {
		if _, err := log.AppendBatch(fx.Payloads); err != nil {
			log.Close()
			return nil, nil, err
		}
	}
	return log, fx, nil
}

func newSyntheticKey() string {
	return fmt.Sprintf("%%%s.sha256", uuid.NewString())
}

// buildEnvelopeJSON constructs an order-preserving envelope payload with a
// fixed, realistic field order: key, then value.author, value.sequence,
// and any extra fields in sorted order.
func buildEnvelopeJSON(key, author string, sequence uint32, extra map[string]any) ([]byte, error) {
	valuePairs := envelope.OrderedObject{
		{Key: "author", Value: envelope.OrderedString(author)},
		{Key: "sequence", Value: envelope.OrderedNumber(strconv.FormatUint(uint64(sequence), 10))},
	}

	extraKeys := make([]string, 0, len(extra))
	for k := range extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		v, err := toOrderedValue(extra[k])
		if err != nil {
			return nil, err
		}
		valuePairs = append(valuePairs, envelope.OrderedPair{Key: k, Value: v})
	}

	root := envelope.OrderedObject{
		{Key: "key", Value: envelope.OrderedString(key)},
		{Key: "value", Value: valuePairs},
	}
	return envelope.Encode(root)
}

func toOrderedValue(v any) (envelope.OrderedValue, error) {
	switch val := v.(type) {
	case string:
		return envelope.OrderedString(val), nil
	case int:
		return envelope.OrderedNumber(strconv.Itoa(val)), nil
	case int64:
		return envelope.OrderedNumber(strconv.FormatInt(val, 10)), nil
	case float64:
		return envelope.OrderedNumber(strconv.FormatFloat(val, 'f', -1, 64)), nil
	case bool:
		return envelope.OrderedBool(val), nil
	case nil:
		return envelope.OrderedNull{}, nil
	default:
		return nil, fmt.Errorf("fixtures: unsupported extra value type %T", v)
	}
}
