// Package db is the database façade: Open replays the node DAG reachable
// from head into an Index, Transact commits a new Leaf, Pull delegates to
// the object mapper, and Entity answers a unique-attribute lookup. A T value
// is immutable; every mutating operation returns a new T, so concurrent
// readers always observe a consistent snapshot.
package db

import (
	"github.com/puzpuzpuz/xsync/v3"

	"facio.dev/attr"
	"facio.dev/eid"
	"facio.dev/fact"
	"facio.dev/ferr"
	"facio.dev/hash"
	"facio.dev/index"
	"facio.dev/log"
	"facio.dev/mapper"
	"facio.dev/node"
	"facio.dev/schema"
	"facio.dev/store"
)

// T is an immutable snapshot of the database: a storage handle, the schema
// in force, the current head hash, and the Index folded from every node
// reachable from it.
type T struct {
	store  store.I
	schema *schema.T
	source node.Source
	head   hash.T
	index  *index.T
	nodes  *xsync.MapOf[hash.T, *node.T]
}

// Open loads the current head from s (genesis if absent) and replays the
// node DAG into an Index.
func Open(s store.I, sch *schema.T, src node.Source) (t *T, err error) {
	t = &T{store: s, schema: sch, source: src, nodes: xsync.NewMapOf[hash.T, *node.T]()}
	var headBytes []byte
	if headBytes, err = s.Load(store.HeadKey); err != nil {
		return nil, err
	}
	if headBytes == nil {
		log.I.Ln("no existing head, starting from genesis")
		t.index = index.Empty()
		return t, nil
	}
	var h hash.T
	if h, err = hash.FromHex(string(headBytes)); err != nil {
		return nil, err
	}
	t.head = h
	if t.index, err = t.replay(h); err != nil {
		return nil, err
	}
	return t, nil
}

// replay walks parents from h, accumulating facts in reverse-post-order
// (oldest ancestor first) and folding them into a fresh Index.
func (t *T) replay(h hash.T) (*index.T, error) {
	var order []hash.T
	seen := map[hash.T]bool{}
	var walk func(h hash.T) error
	walk = func(h hash.T) error {
		if h.IsNull() || seen[h] {
			return nil
		}
		seen[h] = true
		n, err := t.loadNode(h)
		if err != nil {
			return err
		}
		if err := walk(n.Parent1); err != nil {
			return err
		}
		if err := walk(n.Parent2); err != nil {
			return err
		}
		order = append(order, h)
		return nil
	}
	if err := walk(h); err != nil {
		return nil, err
	}
	ix := index.Empty()
	for _, nh := range order {
		n, _ := t.loadNode(nh)
		var err error
		if ix, err = ix.AddFacts(t.schema, n.Facts); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

func (t *T) loadNode(h hash.T) (*node.T, error) {
	if n, ok := t.nodes.Load(h); ok {
		return n, nil
	}
	b, err := t.store.Load(store.Key{NS: store.NodesNS, Name: h.String()})
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ferr.New(ferr.CorruptedNode, "db: referenced node not found: "+h.String())
	}
	n, err := node.Deserialize(b)
	if err != nil {
		return nil, err
	}
	t.nodes.Store(h, n)
	return n, nil
}

// Transact folds facts into the current Index, commits a Leaf node whose
// parent is the current head, and advances head. It returns a new T; the
// receiver is left untouched.
func (t *T) Transact(facts fact.Slice, now int64) (*T, error) {
	newIndex, err := t.index.AddFacts(t.schema, facts)
	if err != nil {
		return t, err
	}
	n := node.NewLeaf(t.head, t.source, now, facts)
	h := n.Hash()
	key := store.Key{NS: store.NodesNS, Name: h.String()}
	if err = t.store.Add(key, n.CanonicalBytes()); err != nil && !ferr.Is(err, ferr.AlreadyExists) {
		return t, err
	}
	headVal := []byte(h.String())
	if t.head.IsNull() {
		if err = t.store.Add(store.HeadKey, headVal); err != nil {
			return t, err
		}
	} else if err = t.store.Overwrite(store.HeadKey, headVal); err != nil {
		return t, err
	}
	out := &T{store: t.store, schema: t.schema, source: t.source, head: h, index: newIndex, nodes: t.nodes}
	out.nodes.Store(h, n)
	return out, nil
}

// Merge reconciles two heads by building a Merge node carrying the facts
// present in other's index but not in t's (a shallow diff sufficient when
// neither side has retracted what the other asserted; true conflict
// resolution across retractions is left to the caller).
func (t *T) Merge(other *T, now int64) (*T, error) {
	diff := other.index.DiffAssertionsNotIn(t.index)
	n := node.NewMerge(t.head, other.head, t.source, now, diff)
	h := n.Hash()
	key := store.Key{NS: store.NodesNS, Name: h.String()}
	if err := t.store.Add(key, n.CanonicalBytes()); err != nil && !ferr.Is(err, ferr.AlreadyExists) {
		return t, err
	}
	newIndex, err := t.index.AddFacts(t.schema, diff)
	if err != nil {
		return t, err
	}
	if err = t.store.Overwrite(store.HeadKey, []byte(h.String())); err != nil {
		return t, err
	}
	out := &T{store: t.store, schema: t.schema, source: t.source, head: h, index: newIndex, nodes: t.nodes}
	out.nodes.Store(h, n)
	return out, nil
}

// Pull reconstructs a value object of type V rooted at e, following q.
func Pull[V any](t *T, e eid.T, q *mapper.Query) (V, error) {
	return mapper.Reconstruct[V](t.index, e, q)
}

// Entity answers a unique-attribute lookup.
func (t *T) Entity(a attr.Name, v any) (eid.T, bool) {
	return t.index.EntityByUnique(a, v)
}

// Head returns the current head hash (the null hash before any commit).
func (t *T) Head() hash.T { return t.head }

// Index exposes the current materialized view, e.g. for custom queries
// beyond Pull/Entity.
func (t *T) Index() *index.T { return t.index }

// Unreachable walks every stored node hash and reports the ones not
// reachable from the current head: read-only diagnostic for dangling
// commits abandoned before their head overwrite (see package node).
func (t *T) Unreachable() ([]hash.T, error) {
	names, err := t.store.Keys(store.NodesNS)
	if err != nil {
		return nil, err
	}
	reachable := map[hash.T]bool{}
	var walk func(h hash.T) error
	walk = func(h hash.T) error {
		if h.IsNull() || reachable[h] {
			return nil
		}
		reachable[h] = true
		n, err := t.loadNode(h)
		if err != nil {
			return err
		}
		if err := walk(n.Parent1); err != nil {
			return err
		}
		return walk(n.Parent2)
	}
	if err = walk(t.head); err != nil {
		return nil, err
	}
	var out []hash.T
	for _, name := range names {
		h, err := hash.FromHex(name)
		if err != nil {
			continue
		}
		if !reachable[h] {
			out = append(out, h)
		}
	}
	return out, nil
}
