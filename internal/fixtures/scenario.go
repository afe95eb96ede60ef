package fixtures

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes a set of feeds to synthesize into an offset log.
type Scenario struct {
	// Name identifies the scenario, for test output.
	Name string `yaml:"name"`

	// Feeds lists the feeds to generate messages for.
	Feeds []FeedSpec `yaml:"feeds"`

	// TombstoneEvery, if nonzero, inserts a tombstone frame (16 zeroed
	// bytes) after every N real frames across the whole scenario (interleaved
	// in generation order), to exercise tombstone tolerance.
	TombstoneEvery int `yaml:"tombstone_every,omitempty"`
}

// FeedSpec describes one feed's messages. Count generates that many
// sequential messages (sequence 1..Count) with synthetic keys; Messages
// lists explicit messages appended after any generated ones.
type FeedSpec struct {
	Author   string         `yaml:"author"`
	Count    uint32         `yaml:"count,omitempty"`
	Messages []EnvelopeSpec `yaml:"messages,omitempty"`
}

// EnvelopeSpec describes one explicit message. An empty Key is replaced
// with a generated one.
type EnvelopeSpec struct {
	Sequence uint32         `yaml:"sequence"`
	Key      string         `yaml:"key,omitempty"`
	Extra    map[string]any `yaml:"extra,omitempty"`
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read %s: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("fixtures: parse %s: %w", path, err)
	}
	return &sc, nil
}
