package db

import (
	"testing"

	"github.com/stretchr/testify/require"

	"facio.dev/attr"
	"facio.dev/codec"
	"facio.dev/eid"
	"facio.dev/fact"
	"facio.dev/node"
	"facio.dev/schema"
	"facio.dev/store"
	"facio.dev/store/memstore"
)

func testSchema(t *testing.T) *schema.T {
	t.Helper()
	s := schema.New()
	require.NoError(t, s.Declare(
		attr.T{Name: "User.login", Kind: codec.TagString, Unique: true},
		attr.T{Name: "User.age", Kind: codec.TagInt64},
	))
	return s
}

func TestOpenGenesis(t *testing.T) {
	s := memstore.New()
	d, err := Open(s, testSchema(t), node.Source{IID: 1})
	require.NoError(t, err)
	require.True(t, d.Head().IsNull())
	require.False(t, d.Index().Exists(eid.T{IID: 1, Local: 1000}))
}

func TestTransactThenReopen(t *testing.T) {
	s := memstore.New()
	sch := testSchema(t)
	d, err := Open(s, sch, node.Source{IID: 1})
	require.NoError(t, err)

	alloc := eid.NewAllocator(1, 0)
	e, _ := alloc.Next()
	facts := fact.Slice{
		{Eid: e, Attr: "User.login", Value: "ada"},
		{Eid: e, Attr: "User.age", Value: int64(30)},
	}
	d, err = d.Transact(facts, 1000)
	require.NoError(t, err)
	require.False(t, d.Head().IsNull())

	got, ok := d.Entity("User.login", "ada")
	require.True(t, ok)
	require.Equal(t, e, got)

	reopened, err := Open(s, sch, node.Source{IID: 1})
	require.NoError(t, err)
	require.Equal(t, d.Head(), reopened.Head())
	reGot, ok := reopened.Entity("User.login", "ada")
	require.True(t, ok)
	require.Equal(t, e, reGot)
}

func TestTransactRejectsUniquenessViolation(t *testing.T) {
	s := memstore.New()
	sch := testSchema(t)
	d, err := Open(s, sch, node.Source{IID: 1})
	require.NoError(t, err)

	alloc := eid.NewAllocator(1, 0)
	e1, _ := alloc.Next()
	d, err = d.Transact(fact.Slice{{Eid: e1, Attr: "User.login", Value: "ada"}}, 1)
	require.NoError(t, err)

	e2, _ := alloc.Next()
	before := d.Head()
	_, err = d.Transact(fact.Slice{{Eid: e2, Attr: "User.login", Value: "ada"}}, 2)
	require.Error(t, err)
	require.Equal(t, before, d.Head(), "rejected transaction must not advance head")
}

func TestUnreachableReportsDanglingNode(t *testing.T) {
	s := memstore.New()
	sch := testSchema(t)
	d, err := Open(s, sch, node.Source{IID: 1})
	require.NoError(t, err)

	alloc := eid.NewAllocator(1, 0)
	e, _ := alloc.Next()
	d, err = d.Transact(fact.Slice{{Eid: e, Attr: "User.login", Value: "ada"}}, 1)
	require.NoError(t, err)

	// A commit built but never made head: its node bytes land in the store
	// the same way Transact would write them, but nothing points at it.
	abandoned := node.NewLeaf(d.Head(), node.Source{IID: 1}, 2, fact.Slice{
		{Eid: e, Attr: "User.age", Value: int64(99)},
	})
	key := store.Key{NS: store.NodesNS, Name: abandoned.Hash().String()}
	require.NoError(t, s.Add(key, abandoned.CanonicalBytes()))

	unreachable, err := d.Unreachable()
	require.NoError(t, err)
	require.Len(t, unreachable, 1)
	require.Equal(t, abandoned.Hash(), unreachable[0])
}
