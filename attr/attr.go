// Package attr defines attribute identity: a dotted "<Type>.<prop>" name
// together with its scalar kind, uniqueness and list cardinality. Attributes
// are declared once in a schema.T (package facio.dev/schema) and referenced
// by every fact.
package attr

import (
	"strings"

	"facio.dev/codec"
	"facio.dev/ferr"
)

// Name is an attribute identifier of the form "Type.prop".
type Name string

// Split returns the entity type and property name halves of a Name.
func (n Name) Split() (entity, prop string, err error) {
	s := string(n)
	i := strings.IndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		err = ferr.New(ferr.SchemaError, "attr: malformed name "+s)
		return
	}
	return s[:i], s[i+1:], nil
}

// T is one declared attribute.
type T struct {
	Name   Name
	Kind   codec.Tag
	Unique bool
	List   bool
}

// Validate checks the attribute's internal consistency: a unique attribute
// cannot be list-valued, and its name must parse.
func (a T) Validate() error {
	if _, _, err := a.Name.Split(); err != nil {
		return err
	}
	if a.Unique && a.List {
		return ferr.New(ferr.SchemaError, "attr: unique attribute "+string(a.Name)+" cannot be list-valued")
	}
	return nil
}
