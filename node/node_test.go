package node

import (
	"testing"

	"github.com/stretchr/testify/require"

	"facio.dev/eid"
	"facio.dev/fact"
	"facio.dev/hash"
)

func sampleFacts() fact.Slice {
	return fact.Slice{
		{Eid: eid.T{IID: 1, Local: 1001}, Attr: "User.login", Value: "a"},
		{Eid: eid.T{IID: 1, Local: 1001}, Attr: "User.strs", Value: "x"},
	}
}

func TestRootSerializationRoundTrip(t *testing.T) {
	n := NewRoot(Source{IID: 1, InstanceBits: 0}, 1732000000000, sampleFacts())
	b := n.CanonicalBytes()
	got, err := Deserialize(b)
	require.NoError(t, err)
	require.Equal(t, Root, got.Kind())
	require.True(t, got.Parent1.IsNull())
	require.True(t, got.Parent2.IsNull())
	require.Equal(t, n.Timestamp, got.Timestamp)
	require.Equal(t, len(n.Facts), len(got.Facts))
}

func TestHashDeterminism(t *testing.T) {
	n1 := NewRoot(Source{IID: 1}, 1000, sampleFacts())
	n2 := NewRoot(Source{IID: 1}, 1000, sampleFacts())
	require.Equal(t, n1.Hash(), n2.Hash())
}

func TestHashIgnoresInputFactOrder(t *testing.T) {
	fs := sampleFacts()
	reversed := fact.Slice{fs[1], fs[0]}
	n1 := NewRoot(Source{IID: 1}, 1000, fs)
	n2 := NewRoot(Source{IID: 1}, 1000, reversed)
	require.Equal(t, n1.Hash(), n2.Hash())
}

func TestLeafKind(t *testing.T) {
	parent := hash.Of([]byte("parent"))
	n := NewLeaf(parent, Source{IID: 1}, 1000, sampleFacts())
	require.Equal(t, Leaf, n.Kind())
}

func TestMergeKind(t *testing.T) {
	p1 := hash.Of([]byte("p1"))
	p2 := hash.Of([]byte("p2"))
	n := NewMerge(p1, p2, Source{IID: 1}, 1000, sampleFacts())
	require.Equal(t, Merge, n.Kind())
}

func TestDeserializeRejectsIllegalParentCombination(t *testing.T) {
	p1 := hash.Of([]byte("p1"))
	n := &T{Parent1: p1}
	b := n.CanonicalBytes()
	_, err := Deserialize(b)
	require.Error(t, err)
}

func TestDeserializeTruncatedBytes(t *testing.T) {
	n := NewRoot(Source{IID: 1}, 1000, sampleFacts())
	b := n.CanonicalBytes()
	_, err := Deserialize(b[:len(b)-5])
	require.Error(t, err)
}
