// Package envelope decodes the minimal fields of an SSB message envelope
// needed for indexing (key, author, sequence), and provides an
// order-preserving JSON value representation for the value-only query
// projection.
//
// The order-preserving requirement is the subtle half of this package: an
// SSB message's signature was computed over the exact byte layout of its
// "value" object, key order included. Re-serializing that object through
// Go's map-based encoding/json would silently reorder keys and produce
// bytes a downstream verifier would reject. OrderedValue exists to decode
// and re-encode a JSON value while preserving the original object key
// order, at the cost of being a slice of pairs instead of a map.
package envelope
