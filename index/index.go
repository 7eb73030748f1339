// Package index is the materialized view over a fact multiset: three maps
// (EAV, AVE, VAE) folded from facts in canonical order, with value semantics
// — AddFacts never mutates the Index it was called on, it returns a new one.
package index

import (
	"fmt"

	"facio.dev/attr"
	"facio.dev/eid"
	"facio.dev/fact"
	"facio.dev/ferr"
	"facio.dev/schema"
)

// valueSeq pairs a fact's value with the order it was inserted in, so
// list-attribute lookups can return values in stored order even though map
// iteration order is not stable.
type valueSeq struct {
	seq   uint64
	value any
}

// T is an immutable snapshot of the materialized indexes.
type T struct {
	eav map[eid.T]map[attr.Name][]valueSeq
	ave map[attr.Name]map[any]map[eid.T]bool
	vae map[any]map[attr.Name]map[eid.T]bool
	seq uint64
}

// Empty returns an Index over no facts.
func Empty() *T {
	return &T{
		eav: map[eid.T]map[attr.Name][]valueSeq{},
		ave: map[attr.Name]map[any]map[eid.T]bool{},
		vae: map[any]map[attr.Name]map[eid.T]bool{},
	}
}

func (ix *T) clone() *T {
	out := &T{
		eav: make(map[eid.T]map[attr.Name][]valueSeq, len(ix.eav)),
		ave: make(map[attr.Name]map[any]map[eid.T]bool, len(ix.ave)),
		vae: make(map[any]map[attr.Name]map[eid.T]bool, len(ix.vae)),
		seq: ix.seq,
	}
	for e, byAttr := range ix.eav {
		na := make(map[attr.Name][]valueSeq, len(byAttr))
		for a, vs := range byAttr {
			nv := make([]valueSeq, len(vs))
			copy(nv, vs)
			na[a] = nv
		}
		out.eav[e] = na
	}
	for a, byVal := range ix.ave {
		nv := make(map[any]map[eid.T]bool, len(byVal))
		for v, es := range byVal {
			ne := make(map[eid.T]bool, len(es))
			for e := range es {
				ne[e] = true
			}
			nv[v] = ne
		}
		out.ave[a] = nv
	}
	for v, byAttr := range ix.vae {
		na := make(map[attr.Name]map[eid.T]bool, len(byAttr))
		for a, es := range byAttr {
			ne := make(map[eid.T]bool, len(es))
			for e := range es {
				ne[e] = true
			}
			na[a] = ne
		}
		out.vae[v] = na
	}
	return out
}

// UniquenessViolationErr carries the conflicting EIDs so a caller can report
// which existing entity blocked the write.
type UniquenessViolationErr struct {
	Attr     attr.Name
	Value    any
	Existing eid.T
	New      eid.T
}

func (e *UniquenessViolationErr) Error() string {
	return fmt.Sprintf("uniqueness violation on %s=%v: existing %s, new %s",
		e.Attr, e.Value, e.Existing, e.New)
}

func (e *UniquenessViolationErr) Unwrap() error {
	return ferr.New(ferr.UniquenessViolation, e.Error())
}

// AddFacts folds fs into a new Index, leaving ix unmodified. Facts are
// canonicalized (assertions before retractions of the same (eid, attr)) so
// callers may pass facts in any order. Returns a UniquenessViolationErr,
// wrapping ferr.UniquenessViolation, the instant a unique attribute would
// gain a second live holder; ix is returned unchanged alongside the error.
func (ix *T) AddFacts(sch *schema.T, fs fact.Slice) (*T, error) {
	out := ix.clone()
	for _, f := range fs.Canonical() {
		a, err := sch.Require(f.Attr)
		if err != nil {
			return ix, err
		}
		if f.Deleted {
			out.retract(a, f)
			continue
		}
		if err := out.assert(a, f); err != nil {
			return ix, err
		}
	}
	return out, nil
}

// keyOf normalizes a fact value into a hashable map key: []byte is not
// comparable, so it is keyed by its string conversion while the original
// value is still what gets stored in the EAV value lists.
func keyOf(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func (out *T) assert(a attr.T, f fact.T) error {
	vk := keyOf(f.Value)
	if a.Unique {
		if holders, ok := out.ave[f.Attr]; ok {
			if existing := firstOtherHolder(holders[vk], f.Eid); !existing.IsZero() {
				return &UniquenessViolationErr{Attr: f.Attr, Value: f.Value, Existing: existing, New: f.Eid}
			}
		}
	}
	byAttr, ok := out.eav[f.Eid]
	if !ok {
		byAttr = map[attr.Name][]valueSeq{}
		out.eav[f.Eid] = byAttr
	}
	if !a.List {
		for _, old := range byAttr[f.Attr] {
			ovk := keyOf(old.value)
			if holders, ok := out.ave[f.Attr]; ok {
				delete(holders[ovk], f.Eid)
			}
			if byVal, ok := out.vae[ovk]; ok {
				delete(byVal[f.Attr], f.Eid)
			}
		}
		byAttr[f.Attr] = nil
	}
	out.seq++
	byAttr[f.Attr] = append(byAttr[f.Attr], valueSeq{seq: out.seq, value: f.Value})

	if _, ok := out.ave[f.Attr]; !ok {
		out.ave[f.Attr] = map[any]map[eid.T]bool{}
	}
	if _, ok := out.ave[f.Attr][vk]; !ok {
		out.ave[f.Attr][vk] = map[eid.T]bool{}
	}
	out.ave[f.Attr][vk][f.Eid] = true

	if _, ok := out.vae[vk]; !ok {
		out.vae[vk] = map[attr.Name]map[eid.T]bool{}
	}
	if _, ok := out.vae[vk][f.Attr]; !ok {
		out.vae[vk][f.Attr] = map[eid.T]bool{}
	}
	out.vae[vk][f.Attr][f.Eid] = true
	return nil
}

func firstOtherHolder(holders map[eid.T]bool, self eid.T) eid.T {
	for e := range holders {
		if e != self {
			return e
		}
	}
	return eid.Zero
}

func (out *T) retract(a attr.T, f fact.T) {
	vk := keyOf(f.Value)
	if byAttr, ok := out.eav[f.Eid]; ok {
		vs := byAttr[f.Attr]
		filtered := vs[:0]
		for _, v := range vs {
			if keyOf(v.value) != vk {
				filtered = append(filtered, v)
			}
		}
		byAttr[f.Attr] = filtered
	}
	if holders, ok := out.ave[f.Attr]; ok {
		if es, ok := holders[vk]; ok {
			delete(es, f.Eid)
		}
	}
	if byAttr, ok := out.vae[vk]; ok {
		if es, ok := byAttr[f.Attr]; ok {
			delete(es, f.Eid)
		}
	}
}

// ValuesOf returns the live values of (e, a) in stored (insertion) order.
func (ix *T) ValuesOf(e eid.T, a attr.Name) []any {
	vs := ix.eav[e][a]
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v.value
	}
	return out
}

// Exists reports whether e has any live fact at all.
func (ix *T) Exists(e eid.T) bool {
	byAttr, ok := ix.eav[e]
	if !ok {
		return false
	}
	for _, vs := range byAttr {
		if len(vs) > 0 {
			return true
		}
	}
	return false
}

// EntitiesByAttrValue returns every live entity holding (a, v).
func (ix *T) EntitiesByAttrValue(a attr.Name, v any) []eid.T {
	holders := ix.ave[a][keyOf(v)]
	out := make([]eid.T, 0, len(holders))
	for e := range holders {
		out = append(out, e)
	}
	return out
}

// EntityByUnique returns the single entity holding (a, v) for a unique
// attribute, if any.
func (ix *T) EntityByUnique(a attr.Name, v any) (eid.T, bool) {
	es := ix.EntitiesByAttrValue(a, v)
	if len(es) == 0 {
		return eid.Zero, false
	}
	return es[0], true
}

// DiffAssertionsNotIn returns every live fact in ix that has no corresponding
// live value in other, used to build the fact set a Merge node must carry to
// bring other up to date with ix's assertions.
func (ix *T) DiffAssertionsNotIn(other *T) fact.Slice {
	var out fact.Slice
	for e, byAttr := range ix.eav {
		for a, vs := range byAttr {
			existing := other.ValuesOf(e, a)
			have := make(map[any]bool, len(existing))
			for _, v := range existing {
				have[keyOf(v)] = true
			}
			for _, v := range vs {
				if !have[keyOf(v.value)] {
					out = append(out, fact.T{Eid: e, Attr: a, Value: v.value})
				}
			}
		}
	}
	return out.Canonical()
}

// ReferencesTo returns every (attr, eid) pair that holds a reference whose
// value equals target, used for reverse reference walking.
func (ix *T) ReferencesTo(target eid.T) map[attr.Name][]eid.T {
	out := map[attr.Name][]eid.T{}
	for a, es := range ix.vae[keyOf(target)] {
		for e := range es {
			out[a] = append(out[a], e)
		}
	}
	return out
}
