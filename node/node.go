// Package node is the DAG vertex: Root, Leaf and Merge variants unified into
// one wire shape, content-addressed by a hash of their canonical
// serialization. Parents are referenced by hash only.
package node

import (
	"bytes"
	"io"

	"facio.dev/attr"
	"facio.dev/codec"
	"facio.dev/eid"
	"facio.dev/fact"
	"facio.dev/ferr"
	"facio.dev/hash"
)

// Kind classifies a node by its parent null-ness.
type Kind int

const (
	// Root has no parents.
	Root Kind = iota
	// Leaf has exactly one parent; a linear commit.
	Leaf
	// Merge has two parents; reconciles divergent histories.
	Merge
)

// Source identifies the writer of a node.
type Source struct {
	IID          uint32
	InstanceBits byte
}

// T is one DAG vertex.
type T struct {
	Parent1   hash.T
	Parent2   hash.T
	Source    Source
	Timestamp int64
	Facts     fact.Slice
}

// Kind classifies n by its parents' null-ness. A single parent lives in
// Parent2; Parent1 set with Parent2 null is not a legal combination.
func (n *T) Kind() Kind {
	switch {
	case n.Parent1.IsNull() && n.Parent2.IsNull():
		return Root
	case n.Parent1.IsNull() && !n.Parent2.IsNull():
		return Leaf
	default:
		return Merge
	}
}

// NewRoot builds a parentless node.
func NewRoot(src Source, now int64, facts fact.Slice) *T {
	return &T{Source: src, Timestamp: now, Facts: facts}
}

// NewLeaf builds a single-parent node. The parent goes in Parent2; Parent1
// stays null.
func NewLeaf(parent hash.T, src Source, now int64, facts fact.Slice) *T {
	return &T{Parent2: parent, Source: src, Timestamp: now, Facts: facts}
}

// NewMerge builds a two-parent node reconciling p1 and p2.
func NewMerge(p1, p2 hash.T, src Source, now int64, diff fact.Slice) *T {
	return &T{Parent1: p1, Parent2: p2, Source: src, Timestamp: now, Facts: diff}
}

// CanonicalBytes renders n's wire form with Facts sorted into canonical
// (eid, attr) order, exactly as required before hashing: equal fact sets
// with an equal header must yield equal bytes.
func (n *T) CanonicalBytes() []byte {
	return n.serialize(n.Facts.Canonical())
}

func (n *T) serialize(facts fact.Slice) []byte {
	buf := new(bytes.Buffer)
	buf.Write(n.Parent1.Bytes())
	buf.Write(n.Parent2.Bytes())
	_ = codec.Encode(buf, int32(n.Source.IID))
	_ = codec.Encode(buf, n.Source.InstanceBits)
	_ = codec.Encode(buf, n.Timestamp)
	_ = codec.Encode(buf, int32(len(facts)))
	for _, f := range facts {
		_ = codec.Encode(buf, f.Eid)
		_ = codec.Encode(buf, string(f.Attr))
		_ = codec.Encode(buf, f.Value)
		_ = codec.Encode(buf, f.Deleted)
	}
	return buf.Bytes()
}

// Hash returns the content hash of n's canonical bytes.
func (n *T) Hash() hash.T { return hash.Of(n.CanonicalBytes()) }

// Deserialize parses the wire form produced by CanonicalBytes. It does not
// re-sort the recovered facts. An illegal parent combination (Parent1 set
// while Parent2 is null) fails with CorruptedNode.
func Deserialize(b []byte) (n *T, err error) {
	r := bytes.NewReader(b)
	n = &T{}
	p1 := make([]byte, hash.Size)
	p2 := make([]byte, hash.Size)
	if _, err = io.ReadFull(r, p1); err != nil {
		err = ferr.Wrap(ferr.CorruptedNode, err, "node: read parent1")
		return
	}
	if _, err = io.ReadFull(r, p2); err != nil {
		err = ferr.Wrap(ferr.CorruptedNode, err, "node: read parent2")
		return
	}
	copy(n.Parent1[:], p1)
	copy(n.Parent2[:], p2)
	if !n.Parent1.IsNull() && n.Parent2.IsNull() {
		err = ferr.New(ferr.CorruptedNode, "node: parent1 set while parent2 is null")
		return
	}

	iid, err := decodeAs[int32](r, "iid")
	if err != nil {
		return
	}
	n.Source.IID = uint32(iid)

	bits, err := decodeAs[byte](r, "instance bits")
	if err != nil {
		return
	}
	n.Source.InstanceBits = bits

	ts, err := decodeAs[int64](r, "timestamp")
	if err != nil {
		return
	}
	n.Timestamp = ts

	count, err := decodeAs[int32](r, "fact count")
	if err != nil {
		return
	}
	if count < 0 {
		err = ferr.New(ferr.CorruptedNode, "node: negative fact count")
		return
	}

	n.Facts = make(fact.Slice, 0, count)
	for i := int32(0); i < count; i++ {
		var f fact.T
		if f, err = decodeFact(r); err != nil {
			return
		}
		n.Facts = append(n.Facts, f)
	}
	return
}

func decodeAs[X any](r io.Reader, what string) (x X, err error) {
	var v any
	if v, err = codec.Decode(r); err != nil {
		return
	}
	x, ok := v.(X)
	if !ok {
		err = ferr.New(ferr.CorruptedNode, "node: expected "+what)
	}
	return
}

func decodeFact(r io.Reader) (f fact.T, err error) {
	var e eid.T
	if e, err = decodeAs[eid.T](r, "eid"); err != nil {
		return
	}
	f.Eid = e

	var name string
	if name, err = decodeAs[string](r, "attr name"); err != nil {
		return
	}
	f.Attr = attr.Name(name)

	if f.Value, err = codec.Decode(r); err != nil {
		return
	}

	var deleted bool
	if deleted, err = decodeAs[bool](r, "deleted flag"); err != nil {
		return
	}
	f.Deleted = deleted
	return
}
