// Package eid defines the entity identifier: an ordered pair of an instance
// id and a per-instance local counter, together with the monotonic allocator
// that hands them out.
package eid

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"facio.dev/ferr"
)

// ReservedLocal is the exclusive upper bound of the local-id range reserved
// for schema and system facts (iid = 0).
const ReservedLocal = 1000

// T is an entity identifier: (instance id, local counter), ordered first by
// IID then by Local.
type T struct {
	IID   uint32
	Local uint64
}

// Zero is the unset entity identifier.
var Zero T

// IsZero reports whether e is the unset value.
func (e T) IsZero() bool { return e == Zero }

// Less orders entity identifiers first by instance, then by local counter,
// matching the canonical fact ordering of (eid, attr) pairs.
func (e T) Less(o T) bool {
	if e.IID != o.IID {
		return e.IID < o.IID
	}
	return e.Local < o.Local
}

// String renders an EID as "iid:local" for logging and debug output.
func (e T) String() string {
	return strconv.FormatUint(uint64(e.IID), 10) + ":" + strconv.FormatUint(e.Local, 10)
}

// Parse parses the output of String back into a T.
func Parse(s string) (e T, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		err = ferr.New(ferr.SchemaError, fmt.Sprintf("malformed eid %q", s))
		return
	}
	var iid, local uint64
	if iid, err = strconv.ParseUint(parts[0], 10, 32); err != nil {
		return
	}
	if local, err = strconv.ParseUint(parts[1], 10, 64); err != nil {
		return
	}
	e = T{IID: uint32(iid), Local: local}
	return
}

// Bytes renders an EID as a 12 byte big-endian key (4 bytes IID, 8 bytes
// Local), preserving numeric order as byte order for index keys.
func (e T) Bytes() []byte {
	b := make([]byte, 12)
	binary.BigEndian.PutUint32(b[:4], e.IID)
	binary.BigEndian.PutUint64(b[4:], e.Local)
	return b
}

// FromBytes parses the 12 byte form produced by Bytes.
func FromBytes(b []byte) (e T, err error) {
	if len(b) != 12 {
		err = ferr.New(ferr.CorruptedNode, "eid: wrong byte length")
		return
	}
	e.IID = binary.BigEndian.Uint32(b[:4])
	e.Local = binary.BigEndian.Uint64(b[4:])
	return
}

// MarshalJSON renders an EID as its string form, quoted.
func (e T) MarshalJSON() ([]byte, error) {
	return []byte(`"` + e.String() + `"`), nil
}

// UnmarshalJSON parses the quoted string form produced by MarshalJSON.
func (e *T) UnmarshalJSON(b []byte) (err error) {
	s := strings.Trim(string(b), `"`)
	*e, err = Parse(s)
	return
}

// Allocator hands out monotonically increasing local ids for one instance,
// starting above the reserved system range.
type Allocator struct {
	iid   uint32
	local uint64
}

// NewAllocator creates an allocator for the given instance id, with its
// counter seeded just above the reserved range (or just above resumeFrom,
// whichever is greater, so a reopened database continues where it left off).
func NewAllocator(iid uint32, resumeFrom uint64) *Allocator {
	local := uint64(ReservedLocal)
	if resumeFrom+1 > local {
		local = resumeFrom + 1
	}
	return &Allocator{iid: iid, local: local}
}

// Next returns the next unused EID for this instance. It returns
// EidSpaceExhausted once the local counter would wrap.
func (a *Allocator) Next() (e T, err error) {
	if a.local == 0 {
		err = ferr.New(ferr.EidSpaceExhausted, "local counter exhausted")
		return
	}
	e = T{IID: a.iid, Local: a.local}
	a.local++
	return
}
