// Package store defines the namespaced, content-addressed key/value contract
// that the node DAG and the mutable head pointer are persisted through. It
// makes no assumption about the backing medium: store/badgerstore realizes it
// on top of a badger database, store/memstore realizes it in memory for tests
// and in-process embedding.
package store

import (
	"io"
	"strings"
)

// Namespace is an ordered path of segments a key lives under, e.g.
// Namespace{"nodes"} or Namespace{"refs"}.
type Namespace []string

// Root is the empty namespace.
var Root = Namespace(nil)

// Child returns a new namespace with seg appended.
func (n Namespace) Child(seg string) Namespace {
	out := make(Namespace, len(n)+1)
	copy(out, n)
	out[len(n)] = seg
	return out
}

// String renders a namespace as a slash-joined path, used by backends that
// need a single string key prefix.
func (n Namespace) String() string { return strings.Join(n, "/") }

// Key identifies a single value: a namespace plus a name within it.
type Key struct {
	NS   Namespace
	Name string
}

// String renders a Key as a single slash-joined path.
func (k Key) String() string {
	if len(k.NS) == 0 {
		return k.Name
	}
	return k.NS.String() + "/" + k.Name
}

// Adder creates a value under a key that must not already exist.
type Adder interface {
	// Add writes value under key. It returns AlreadyExists if the key is
	// already present; the store is responsible for making the check and the
	// write atomic against concurrent Adders of the same key.
	Add(key Key, value by) (err er)
}

// Overwriter replaces the value of a key that must already exist, such as a
// head pointer. It returns NotFound if the key has never been Add-ed.
type Overwriter interface {
	Overwrite(key Key, value by) (err er)
}

// Loader retrieves a previously stored value.
type Loader interface {
	// Load returns (nil, nil) if key has never been written; a non-nil err
	// means the read itself failed.
	Load(key Key) (value by, err er)
}

// Haser reports presence without paying for a full load.
type Haser interface {
	HasKey(key Key) (ok bo, err er)
}

// Lister enumerates the names directly present in a namespace.
type Lister interface {
	Keys(ns Namespace) (names []string, err er)
}

// Namespacer enumerates the immediate child namespaces of a namespace.
type Namespacer interface {
	SubNamespaces(ns Namespace) (children []string, err er)
}

// I is the full namespaced KV contract the node DAG and head pointer are
// persisted through.
type I interface {
	Adder
	Overwriter
	Loader
	Haser
	Lister
	Namespacer
	io.Closer
}

// NodesNS is the namespace under which serialized DAG nodes are stored,
// keyed by their content hash in hex.
var NodesNS = Namespace{"nodes"}

// RefsNS is the namespace under which mutable named pointers (the current
// head, named branches) are stored.
var RefsNS = Namespace{"refs"}

// HeadKey is the key of the single mutable pointer to the current head node.
var HeadKey = Key{NS: RefsNS, Name: "head"}
