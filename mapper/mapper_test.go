package mapper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"facio.dev/attr"
	"facio.dev/codec"
	"facio.dev/eid"
	"facio.dev/index"
	"facio.dev/schema"
)

type Addr struct {
	Id   eid.T
	Addr string `fact:"addr"`
}

type User struct {
	Id      eid.T
	Login   string   `fact:"login"`
	Strs    []string `fact:"strs"`
	MainRef Addr     `fact:"addr"`
	OptAddr *Addr    `fact:"optAddr"`
	Addrs   []Addr   `fact:"addrs"`
}

func userSchema(t *testing.T) *schema.T {
	t.Helper()
	s := schema.New()
	require.NoError(t, s.Declare(
		attr.T{Name: "User.login", Kind: codec.TagString, Unique: true},
		attr.T{Name: "User.strs", Kind: codec.TagString, List: true},
		attr.T{Name: "User.addr", Kind: codec.TagEID},
		attr.T{Name: "User.optAddr", Kind: codec.TagEID},
		attr.T{Name: "User.addrs", Kind: codec.TagEID, List: true},
		attr.T{Name: "Addr.addr", Kind: codec.TagString},
	))
	return s
}

func TestDestructReconstructRoundTripWithFullQuery(t *testing.T) {
	sch := userSchema(t)
	alloc := eid.NewAllocator(1, 0)
	u := User{
		Login:   "a",
		Strs:    []string{"x", "y"},
		MainRef: Addr{Addr: "h"},
		OptAddr: nil,
		Addrs:   []Addr{{Addr: "l"}},
	}
	facts, root, err := Destruct(alloc, &u)
	require.NoError(t, err)
	require.False(t, root.IsZero())

	ix, err := index.Empty().AddFacts(sch, facts)
	require.NoError(t, err)

	q := Query{"addr": nil, "optAddr": nil, "addrs": nil}
	got, err := Reconstruct[User](ix, root, &q)
	require.NoError(t, err)
	require.Equal(t, "a", got.Login)
	require.Equal(t, []string{"x", "y"}, got.Strs)
	require.Equal(t, "h", got.MainRef.Addr)
	require.Nil(t, got.OptAddr, "destructuring an absent optional reference must emit no fact to resolve")
	require.Len(t, got.Addrs, 1)
	require.Equal(t, "l", got.Addrs[0].Addr)
}

func TestReconstructWithEmptyQueryDoesNotRecurseReferences(t *testing.T) {
	sch := userSchema(t)
	alloc := eid.NewAllocator(1, 0)
	u := User{Login: "a", MainRef: Addr{Addr: "h"}}
	facts, root, err := Destruct(alloc, &u)
	require.NoError(t, err)

	ix, err := index.Empty().AddFacts(sch, facts)
	require.NoError(t, err)

	got, err := Reconstruct[User](ix, root, nil)
	require.NoError(t, err)
	require.Equal(t, "a", got.Login)
	require.Equal(t, "", got.MainRef.Addr, "nested reference must not be recursed without a Query entry")
	require.Nil(t, got.OptAddr)
}

func TestAbsentScalarUsesZeroValue(t *testing.T) {
	sch := userSchema(t)
	alloc := eid.NewAllocator(1, 0)
	facts, root, err := Destruct(alloc, &User{Login: "solo"})
	require.NoError(t, err)
	ix, err := index.Empty().AddFacts(sch, facts)
	require.NoError(t, err)

	got, err := Reconstruct[User](ix, root, nil)
	require.NoError(t, err)
	require.Equal(t, "solo", got.Login)
	require.Empty(t, got.Strs)
}

func TestDestructReusesExistingId(t *testing.T) {
	alloc := eid.NewAllocator(1, 0)
	fixed := eid.T{IID: 9, Local: 1500}
	u := User{Id: fixed, Login: "a"}
	_, root, err := Destruct(alloc, &u)
	require.NoError(t, err)
	require.Equal(t, fixed, root)
}
