package badgerstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"facio.dev/ferr"
	"facio.dev/store"
)

func open(t *testing.T) *T {
	t.Helper()
	s, err := Open(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddLoad(t *testing.T) {
	s := open(t)
	k := store.Key{NS: store.NodesNS, Name: "deadbeef"}
	require.NoError(t, s.Add(k, []byte("payload")))
	v, err := s.Load(k)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), v)
}

func TestAddTwiceFails(t *testing.T) {
	s := open(t)
	k := store.Key{NS: store.NodesNS, Name: "deadbeef"}
	require.NoError(t, s.Add(k, []byte("1")))
	err := s.Add(k, []byte("2"))
	require.True(t, ferr.Is(err, ferr.AlreadyExists))
}

func TestLoadMissingKeyReturnsNilNotError(t *testing.T) {
	s := open(t)
	v, err := s.Load(store.Key{NS: store.NodesNS, Name: "absent"})
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestOverwriteRequiresExistingKey(t *testing.T) {
	s := open(t)
	err := s.Overwrite(store.HeadKey, []byte("x"))
	require.True(t, ferr.Is(err, ferr.NotFound))
	require.NoError(t, s.Add(store.HeadKey, []byte("x")))
	require.NoError(t, s.Overwrite(store.HeadKey, []byte("y")))
	v, err := s.Load(store.HeadKey)
	require.NoError(t, err)
	require.Equal(t, []byte("y"), v)
}

func TestKeysAndSubNamespaces(t *testing.T) {
	s := open(t)
	require.NoError(t, s.Add(store.Key{NS: store.NodesNS, Name: "h1"}, []byte("1")))
	require.NoError(t, s.Add(store.Key{NS: store.NodesNS, Name: "h2"}, []byte("2")))
	require.NoError(t, s.Add(store.HeadKey, []byte("head")))

	names, err := s.Keys(store.NodesNS)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"h1", "h2"}, names)

	children, err := s.SubNamespaces(store.Root)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"nodes", "refs"}, children)
}
