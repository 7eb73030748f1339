// Package hash is the content-hash identity of a DAG node: a fixed-width
// sha256 digest of a node's canonical serialized bytes, plus the null-hash
// sentinel used in place of a parent reference at the root of the DAG.
package hash

import (
	"bytes"
	"encoding/json"

	"facio.dev/ferr"
	"facio.dev/hex"
	"facio.dev/sha256"
)

// Size is the byte length of a Hash.
const Size = sha256.Size

// T is a fixed-width content hash.
type T [Size]byte

// Null is the all-zero sentinel meaning "no parent".
var Null T

// IsNull reports whether h is the null hash.
func (h T) IsNull() bool { return h == Null }

// Of computes the content hash of b.
func Of(b []byte) T {
	return T(sha256.Sum256(b))
}

// Less orders hashes by their byte representation, for use as a sort or map
// key where a deterministic order is required (node replay, GC reporting).
func (h T) Less(o T) bool { return bytes.Compare(h[:], o[:]) < 0 }

// Bytes returns the raw digest bytes.
func (h T) Bytes() []byte { return h[:] }

// String renders the hash as lowercase hex.
func (h T) String() string { return hex.Enc(h[:]) }

// FromHex parses a lowercase hex string produced by String.
func FromHex(s string) (h T, err error) {
	var b []byte
	if b, err = hex.Dec(s); err != nil {
		err = ferr.Wrap(ferr.CorruptedNode, err, "hash: invalid hex")
		return
	}
	if len(b) != Size {
		err = ferr.New(ferr.CorruptedNode, "hash: wrong byte length")
		return
	}
	copy(h[:], b)
	return
}

// MarshalText implements encoding.TextMarshaler.
func (h T) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *T) UnmarshalText(b []byte) (err error) {
	*h, err = FromHex(string(b))
	return
}

// MarshalJSON implements json.Marshaler.
func (h T) MarshalJSON() ([]byte, error) { return json.Marshal(h.String()) }

// UnmarshalJSON implements json.Unmarshaler.
func (h *T) UnmarshalJSON(b []byte) (err error) {
	var s string
	if err = json.Unmarshal(b, &s); err != nil {
		return
	}
	*h, err = FromHex(s)
	return
}
