package index

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"facio.dev/attr"
	"facio.dev/codec"
	"facio.dev/eid"
	"facio.dev/fact"
	"facio.dev/schema"
)

func testSchema(t *testing.T) *schema.T {
	t.Helper()
	s := schema.New()
	require.NoError(t, s.Declare(
		attr.T{Name: "User.login", Kind: codec.TagString, Unique: true},
		attr.T{Name: "User.strs", Kind: codec.TagString, List: true},
	))
	return s
}

func TestUniquenessViolation(t *testing.T) {
	s := testSchema(t)
	e1 := eid.T{IID: 1, Local: 1001}
	e2 := eid.T{IID: 1, Local: 1002}
	ix, err := Empty().AddFacts(s, fact.Slice{{Eid: e1, Attr: "User.login", Value: "a"}})
	require.NoError(t, err)

	_, err = ix.AddFacts(s, fact.Slice{{Eid: e2, Attr: "User.login", Value: "a"}})
	require.Error(t, err)
	var uv *UniquenessViolationErr
	require.ErrorAs(t, err, &uv)
	require.Equal(t, e1, uv.Existing)
	require.Equal(t, e2, uv.New)
}

func TestRetractionAppliedAfterAssertionRegardlessOfOrder(t *testing.T) {
	s := testSchema(t)
	e := eid.T{IID: 1, Local: 1001}
	fs := fact.Slice{
		{Eid: e, Attr: "User.login", Value: "a", Deleted: true},
		{Eid: e, Attr: "User.login", Value: "a"},
	}
	ix, err := Empty().AddFacts(s, fs)
	require.NoError(t, err)
	_, ok := ix.EntityByUnique("User.login", "a")
	require.False(t, ok, "assertion then retraction of the same value must leave no live holder")
}

func TestReassertAfterRetraction(t *testing.T) {
	s := testSchema(t)
	e := eid.T{IID: 1, Local: 1001}
	e2 := eid.T{IID: 1, Local: 1002}
	ix, err := Empty().AddFacts(s, fact.Slice{
		{Eid: e, Attr: "User.login", Value: "a"},
		{Eid: e, Attr: "User.login", Value: "a", Deleted: true},
	})
	require.NoError(t, err)
	ix, err = ix.AddFacts(s, fact.Slice{{Eid: e2, Attr: "User.login", Value: "a"}})
	require.NoError(t, err)
	got, ok := ix.EntityByUnique("User.login", "a")
	require.True(t, ok)
	require.Equal(t, e2, got)
}

func TestReassignWithoutRetractionClearsStaleAveVaeEntries(t *testing.T) {
	s := testSchema(t)
	e1 := eid.T{IID: 1, Local: 1001}
	ix, err := Empty().AddFacts(s, fact.Slice{{Eid: e1, Attr: "User.login", Value: "a"}})
	require.NoError(t, err)

	// second transaction reassigns User.login without retracting "a" first.
	ix, err = ix.AddFacts(s, fact.Slice{{Eid: e1, Attr: "User.login", Value: "b"}})
	require.NoError(t, err)
	require.Empty(t, ix.EntitiesByAttrValue("User.login", "a"),
		"stale holder of the overwritten value must be cleared")
	require.Empty(t, ix.ReferencesTo(eid.T{}), "sanity: unrelated vae lookups unaffected")

	e2 := eid.T{IID: 1, Local: 1002}
	ix, err = ix.AddFacts(s, fact.Slice{{Eid: e2, Attr: "User.login", Value: "a"}})
	require.NoError(t, err, "a different entity must be free to claim the now-unheld value")

	got, ok := ix.EntityByUnique("User.login", "b")
	require.True(t, ok)
	require.Equal(t, e1, got)
}

func TestListValuesPreserveInsertionOrder(t *testing.T) {
	s := testSchema(t)
	e := eid.T{IID: 1, Local: 1001}
	ix, err := Empty().AddFacts(s, fact.Slice{
		{Eid: e, Attr: "User.strs", Value: "x"},
		{Eid: e, Attr: "User.strs", Value: "y"},
		{Eid: e, Attr: "User.strs", Value: "z"},
	})
	require.NoError(t, err)
	require.Equal(t, []any{"x", "y", "z"}, ix.ValuesOf(e, "User.strs"))
}

func TestAddFactsDoesNotMutateReceiver(t *testing.T) {
	s := testSchema(t)
	e := eid.T{IID: 1, Local: 1001}
	before := Empty()
	after, err := before.AddFacts(s, fact.Slice{{Eid: e, Attr: "User.login", Value: "a"}})
	require.NoError(t, err)
	require.False(t, before.Exists(e))
	require.True(t, after.Exists(e))
}

func TestUndeclaredAttributeIsSchemaError(t *testing.T) {
	s := schema.New()
	e := eid.T{IID: 1, Local: 1001}
	_, err := Empty().AddFacts(s, fact.Slice{{Eid: e, Attr: "Nope.x", Value: "a"}})
	require.Error(t, err)
}

// TestManyRandomListValuesSurviveFolding throws a large batch of randomly
// sized values at a single list attribute and checks every one survives the
// fold, leaning on frand to generate varied-length fixtures instead of a
// handful of fixed cases.
func TestManyRandomListValuesSurviveFolding(t *testing.T) {
	s := testSchema(t)
	e := eid.T{IID: 1, Local: 1001}
	n := frand.Intn(40) + 10
	var fs fact.Slice
	want := make([]any, n)
	for i := 0; i < n; i++ {
		v := string(frand.Bytes(frand.Intn(12) + 1))
		fs = append(fs, fact.T{Eid: e, Attr: "User.strs", Value: v})
		want[i] = v
	}
	ix, err := Empty().AddFacts(s, fs)
	require.NoError(t, err)
	require.Equal(t, want, ix.ValuesOf(e, "User.strs"))
}
