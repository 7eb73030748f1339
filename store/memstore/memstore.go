// Package memstore is an in-memory realization of store.I, for tests and for
// embedding facio without a filesystem. It keeps one concurrent map of full
// key path to value, using xsync.MapOf the same way a hot-path cache would,
// so concurrent readers never contend with each other or with a writer on a
// different key.
package memstore

import (
	"sort"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"

	"facio.dev/ferr"
	"facio.dev/store"
)

// T is an in-memory key/value store keyed by the full slash-joined path.
type T struct {
	m *xsync.MapOf[string, []byte]
}

// New returns an empty in-memory store.
func New() *T {
	return &T{m: xsync.NewMapOf[string, []byte]()}
}

func fullKey(k store.Key) string { return k.String() }

func (s *T) Add(key store.Key, value []byte) (err error) {
	cp := append([]byte(nil), value...)
	_, loaded := s.m.LoadOrStore(fullKey(key), cp)
	if loaded {
		return ferr.New(ferr.AlreadyExists, "memstore: key exists: "+key.String())
	}
	return nil
}

func (s *T) Overwrite(key store.Key, value []byte) (err error) {
	cp := append([]byte(nil), value...)
	k := fullKey(key)
	if _, ok := s.m.Load(k); !ok {
		return ferr.New(ferr.NotFound, "memstore: key absent: "+key.String())
	}
	s.m.Store(k, cp)
	return nil
}

func (s *T) Load(key store.Key) (value []byte, err error) {
	v, ok := s.m.Load(fullKey(key))
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *T) HasKey(key store.Key) (ok bool, err error) {
	_, ok = s.m.Load(fullKey(key))
	return
}

func (s *T) Keys(ns store.Namespace) (names []string, err error) {
	prefix := ns.String()
	if prefix != "" {
		prefix += "/"
	}
	seen := map[string]bool{}
	s.m.Range(func(k string, _ []byte) bool {
		if !strings.HasPrefix(k, prefix) {
			return true
		}
		rest := k[len(prefix):]
		if !strings.Contains(rest, "/") && rest != "" {
			seen[rest] = true
		}
		return true
	})
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return
}

func (s *T) SubNamespaces(ns store.Namespace) (children []string, err error) {
	prefix := ns.String()
	if prefix != "" {
		prefix += "/"
	}
	seen := map[string]bool{}
	s.m.Range(func(k string, _ []byte) bool {
		if !strings.HasPrefix(k, prefix) {
			return true
		}
		rest := k[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			seen[rest[:i]] = true
		}
		return true
	})
	for n := range seen {
		children = append(children, n)
	}
	sort.Strings(children)
	return
}

func (s *T) Close() error { return nil }

var _ store.I = (*T)(nil)
