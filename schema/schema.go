// Package schema is the registry of declared attributes: it enforces that an
// attribute name is never redeclared with a different kind, that unique
// attributes are scalar, and it can round-trip itself to and from facts so
// the schema evolves inside the same append-only history as the data it
// describes (per the reserved EID range, see package facio.dev/eid).
package schema

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"facio.dev/attr"
	"facio.dev/codec"
	"facio.dev/eid"
	"facio.dev/fact"
	"facio.dev/ferr"
	"facio.dev/hash"
)

// T is a registry of declared attributes keyed by name.
type T struct {
	attrs map[attr.Name]attr.T
}

// New returns an empty schema.
func New() *T { return &T{attrs: map[attr.Name]attr.T{}} }

// Declare adds attrs to the registry. An attribute already present under the
// same name must have an identical Kind; a mismatch is a SchemaError, as is
// an invalid attribute (see attr.T.Validate).
func (s *T) Declare(attrs ...attr.T) error {
	for _, a := range attrs {
		if err := a.Validate(); err != nil {
			return err
		}
		if existing, ok := s.attrs[a.Name]; ok && existing.Kind != a.Kind {
			return ferr.New(ferr.SchemaError,
				fmt.Sprintf("attr %s redeclared with a different type", a.Name))
		}
		s.attrs[a.Name] = a
	}
	return nil
}

// Lookup returns the declared attribute for name, if any.
func (s *T) Lookup(name attr.Name) (a attr.T, ok bool) {
	a, ok = s.attrs[name]
	return
}

// Require returns the declared attribute for name, failing with SchemaError
// if it was never declared.
func (s *T) Require(name attr.Name) (a attr.T, err error) {
	var ok bool
	if a, ok = s.attrs[name]; !ok {
		err = ferr.New(ferr.SchemaError, "undeclared attribute "+string(name))
	}
	return
}

// All returns every declared attribute, sorted by name for deterministic
// iteration.
func (s *T) All() []attr.T {
	out := make([]attr.T, 0, len(s.attrs))
	for _, a := range s.attrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// entityYAML is the on-disk shape of a schema descriptor: one entity maps to
// its declared attributes.
type entityYAML struct {
	Entity     string   `yaml:"entity"`
	Unique     []string `yaml:"unique,omitempty"`
	Scalar     []string `yaml:"scalar,omitempty"`
	List       []string `yaml:"list,omitempty"`
	References []string `yaml:"references,omitempty"`
}

// LoadYAML parses a declarative schema descriptor: a list of entities, each
// naming its unique, scalar, list-valued and reference-valued properties.
// Unique and reference properties are always scalar EID or value kinds;
// list-valued properties may name any of the others to mark them repeated.
func LoadYAML(r io.Reader) (*T, error) {
	var entities []entityYAML
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&entities); err != nil {
		return nil, ferr.Wrap(ferr.SchemaError, err, "schema: invalid yaml")
	}
	s := New()
	listSet := func(names []string) map[string]bool {
		m := make(map[string]bool, len(names))
		for _, n := range names {
			m[n] = true
		}
		return m
	}
	for _, e := range entities {
		lists := listSet(e.List)
		declare := func(prop string, unique bool, kind codec.Tag) error {
			name := attr.Name(e.Entity + "." + prop)
			return s.Declare(attr.T{Name: name, Kind: kind, Unique: unique, List: lists[prop]})
		}
		for _, p := range e.Unique {
			if err := declare(p, true, codec.TagString); err != nil {
				return nil, err
			}
		}
		for _, p := range e.Scalar {
			if err := declare(p, false, codec.TagString); err != nil {
				return nil, err
			}
		}
		for _, p := range e.References {
			if err := declare(p, false, codec.TagEID); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Attribute property names used when a schema is round-tripped through
// facts, under the reserved EID range.
const (
	propKind   attr.Name = "Schema.kind"
	propUnique attr.Name = "Schema.unique"
	propList   attr.Name = "Schema.list"
)

// eidFor derives a deterministic reserved-range EID for an attribute name, so
// that the same attribute always maps to the same synthetic entity across
// processes.
func eidFor(name attr.Name) eid.T {
	h := hash.Of([]byte(name))
	local := uint64(h[0])<<24 | uint64(h[1])<<16 | uint64(h[2])<<8 | uint64(h[3])
	local %= eid.ReservedLocal
	return eid.T{IID: 0, Local: local}
}

// AsFacts renders the schema as facts under synthetic, reserved-range EIDs,
// one fact per attribute property, so it can be committed alongside data.
func (s *T) AsFacts() fact.Slice {
	var out fact.Slice
	for _, a := range s.All() {
		e := eidFor(a.Name)
		out = append(out,
			fact.T{Eid: e, Attr: propKind, Value: byte(a.Kind)},
			fact.T{Eid: e, Attr: propUnique, Value: a.Unique},
			fact.T{Eid: e, Attr: propList, Value: a.List},
		)
	}
	return out
}

// FromFacts rebuilds a schema from facts previously produced by AsFacts. It
// recovers each attribute's name only insofar as it was passed in names
// (synthetic EIDs are not reversible), so a caller that persists and later
// reloads a schema this way must also persist the attribute name list
// separately, e.g. alongside its own configuration.
func FromFacts(names []attr.Name, facts fact.Slice) (*T, error) {
	byEid := map[eid.T]map[attr.Name]any{}
	for _, f := range facts {
		if f.Deleted {
			continue
		}
		m, ok := byEid[f.Eid]
		if !ok {
			m = map[attr.Name]any{}
			byEid[f.Eid] = m
		}
		m[f.Attr] = f.Value
	}
	s := New()
	for _, name := range names {
		e := eidFor(name)
		m, ok := byEid[e]
		if !ok {
			continue
		}
		kind, _ := m[propKind].(byte)
		unique, _ := m[propUnique].(bool)
		list, _ := m[propList].(bool)
		if err := s.Declare(attr.T{Name: name, Kind: codec.Tag(kind), Unique: unique, List: list}); err != nil {
			return nil, err
		}
	}
	return s, nil
}
