// Package fact defines the datom: the single (entity, attribute, value,
// tombstone) tuple every node carries a batch of, and the canonical ordering
// facts must be serialized in so that equal fact sets hash identically.
package fact

import (
	"sort"

	"facio.dev/attr"
	"facio.dev/eid"
)

// T is one datom. Value holds a scalar of one of the runtime types the
// codec package recognizes (bool, byte, int32, int64, string, []byte,
// time.Time, codec.ZonedTimestamp, eid.T).
type T struct {
	Eid     eid.T
	Attr    attr.Name
	Value   any
	Deleted bool
}

// Slice is a sortable collection of facts.
type Slice []T

func (s Slice) Len() int      { return len(s) }
func (s Slice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Less orders facts by (eid, attr), with assertions before retractions of the
// same key, matching the canonical node-serialization order and the fold
// order Index.AddFacts relies on.
func (s Slice) Less(i, j int) bool {
	a, b := s[i], s[j]
	if a.Eid != b.Eid {
		return a.Eid.Less(b.Eid)
	}
	if a.Attr != b.Attr {
		return a.Attr < b.Attr
	}
	return !a.Deleted && b.Deleted
}

// Canonical returns a stably-sorted copy of s in the order Node serialization
// requires: by (eid, attr), assertions before retractions.
func (s Slice) Canonical() Slice {
	out := make(Slice, len(s))
	copy(out, s)
	sort.Stable(out)
	return out
}
