// Package mapper translates between Go value objects and facts: Destruct
// walks a value via reflection, driven by `fact:"Type.prop"` struct tags
// (generalizing the tag-driven reflect.Value walk an env-tagged config
// loader uses for flat structs to arbitrarily nested value objects),
// allocating an EID per object and emitting one fact
// per property. Reconstruct runs the walk in reverse, steered by a Query that
// says which otherwise-skipped references to resolve.
package mapper

import (
	"reflect"
	"strings"
	"time"

	"facio.dev/attr"
	"facio.dev/codec"
	"facio.dev/eid"
	"facio.dev/fact"
	"facio.dev/ferr"
)

// Reader is the read surface Reconstruct needs from an Index: live values of
// an (entity, attribute) pair in stored order, and entity existence.
type Reader interface {
	ValuesOf(e eid.T, a attr.Name) []any
	Exists(e eid.T) bool
}

// Query steers reconstruction: a nil entry for a property name means resolve
// that reference fully with default policy; a non-nil entry recurses with
// that sub-query applied to the referenced object.
type Query map[string]*Query

var (
	eidType  = reflect.TypeOf(eid.T{})
	timeType = reflect.TypeOf(time.Time{})
	zoneType = reflect.TypeOf(codec.ZonedTimestamp{})
)

func isScalarType(t reflect.Type) bool {
	switch t {
	case eidType, timeType, zoneType:
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.Uint8, reflect.Int32, reflect.Int64, reflect.String:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8 // []byte
	}
	return false
}

func structType(t reflect.Type) (reflect.Type, bool) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct && !isScalarType(t) {
		return t, true
	}
	return t, false
}

// Destruct allocates an EID for v (reusing v's "Id" field if it is already
// set) and returns every fact describing v and, recursively, its nested
// objects. An absent optional nested pointer (nil) emits no fact; a list
// emits one fact per element, in order.
func Destruct(alloc *eid.Allocator, v any) (fact.Slice, eid.T, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, eid.Zero, ferr.New(ferr.SchemaError, "mapper: cannot destruct a nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, eid.Zero, ferr.New(ferr.SchemaError, "mapper: destruct requires a struct")
	}
	var out fact.Slice
	e, err := destructStruct(alloc, rv, &out)
	return out, e, err
}

func destructStruct(alloc *eid.Allocator, rv reflect.Value, out *fact.Slice) (eid.T, error) {
	entity := rv.Type().Name()
	e := allocOrReuse(alloc, rv)
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Name == "Id" {
			continue
		}
		tag := f.Tag.Get("fact")
		if tag == "" || tag == "-" {
			continue
		}
		name := attr.Name(entity + "." + tag)
		fv := rv.Field(i)
		if err := destructField(alloc, e, name, fv, out); err != nil {
			return eid.Zero, err
		}
	}
	return e, nil
}

func allocOrReuse(alloc *eid.Allocator, rv reflect.Value) eid.T {
	idField := rv.FieldByName("Id")
	if idField.IsValid() && idField.Type() == eidType {
		if existing, ok := idField.Interface().(eid.T); ok && !existing.IsZero() {
			return existing
		}
	}
	e, _ := alloc.Next()
	if idField.IsValid() && idField.CanSet() && idField.Type() == eidType {
		idField.Set(reflect.ValueOf(e))
	}
	return e
}

func destructField(alloc *eid.Allocator, owner eid.T, name attr.Name, fv reflect.Value, out *fact.Slice) error {
	ft := fv.Type()

	if ft.Kind() == reflect.Slice && ft != reflect.TypeOf([]byte(nil)) {
		for i := 0; i < fv.Len(); i++ {
			if err := destructScalarOrRef(alloc, owner, name, fv.Index(i), out); err != nil {
				return err
			}
		}
		return nil
	}
	return destructScalarOrRef(alloc, owner, name, fv, out)
}

func destructScalarOrRef(alloc *eid.Allocator, owner eid.T, name attr.Name, fv reflect.Value, out *fact.Slice) error {
	ft := fv.Type()
	if ft.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return nil // optional nested object absent: no fact emitted
		}
		childEid, err := destructStruct(alloc, fv.Elem(), out)
		if err != nil {
			return err
		}
		*out = append(*out, fact.T{Eid: owner, Attr: name, Value: childEid})
		return nil
	}
	if _, isStruct := structType(ft); isStruct {
		childEid, err := destructStruct(alloc, fv, out)
		if err != nil {
			return err
		}
		*out = append(*out, fact.T{Eid: owner, Attr: name, Value: childEid})
		return nil
	}
	val, err := scalarValue(fv)
	if err != nil {
		return err
	}
	*out = append(*out, fact.T{Eid: owner, Attr: name, Value: val})
	return nil
}

func scalarValue(fv reflect.Value) (any, error) {
	switch v := fv.Interface().(type) {
	case bool, byte, int32, int64, string, []byte, time.Time, codec.ZonedTimestamp, eid.T:
		return v, nil
	default:
		return nil, ferr.New(ferr.SchemaError, "mapper: unsupported scalar field type "+fv.Type().String())
	}
}

// Reconstruct rebuilds a T from the facts reachable from root through r,
// following q to decide which references to resolve. Absent scalars take the
// Go zero value of their field type; absent optional references are left
// nil; lists read all live values in stored order.
func Reconstruct[T any](r Reader, root eid.T, q *Query) (out T, err error) {
	rt := reflect.TypeOf(out)
	ptr := rt.Kind() == reflect.Ptr
	elemType := rt
	if ptr {
		elemType = rt.Elem()
	}
	rv := reflect.New(elemType).Elem()
	if err = reconstructStruct(r, root, rv, q); err != nil {
		return
	}
	if ptr {
		out = rv.Addr().Interface().(T)
	} else {
		out = rv.Interface().(T)
	}
	return
}

func reconstructStruct(r Reader, root eid.T, rv reflect.Value, q *Query) error {
	entity := rv.Type().Name()
	if idField := rv.FieldByName("Id"); idField.IsValid() && idField.CanSet() && idField.Type() == eidType {
		idField.Set(reflect.ValueOf(root))
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Name == "Id" {
			continue
		}
		tag := f.Tag.Get("fact")
		if tag == "" || tag == "-" {
			continue
		}
		prop := propName(tag)
		name := attr.Name(entity + "." + tag)
		fv := rv.Field(i)
		var sub *Query
		var hasQuery bool
		if q != nil {
			sub, hasQuery = (*q)[prop]
		}
		if err := reconstructField(r, root, name, fv, hasQuery, sub); err != nil {
			return err
		}
	}
	return nil
}

// propName extracts the property half of a "Type.prop" tag; tags may also be
// bare prop names for anonymous/local struct use.
func propName(tag string) string {
	if i := strings.IndexByte(tag, '.'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

func reconstructField(r Reader, owner eid.T, name attr.Name, fv reflect.Value, hasQuery bool, sub *Query) error {
	ft := fv.Type()

	if ft.Kind() == reflect.Slice && ft != reflect.TypeOf([]byte(nil)) {
		elemType := ft.Elem()
		if _, isStruct := structType(elemType); isStruct || elemType.Kind() == reflect.Ptr {
			if !hasQuery {
				return nil // default policy: do not recurse into list references
			}
			values := r.ValuesOf(owner, name)
			slice := reflect.MakeSlice(ft, 0, len(values))
			for _, v := range values {
				childEid, ok := v.(eid.T)
				if !ok {
					continue
				}
				elem, err := reconstructElem(r, childEid, elemType, sub)
				if err != nil {
					return err
				}
				if elemType.Kind() != reflect.Ptr {
					elem = elem.Elem()
				}
				slice = reflect.Append(slice, elem)
			}
			fv.Set(slice)
			return nil
		}
		values := r.ValuesOf(owner, name)
		slice := reflect.MakeSlice(ft, 0, len(values))
		for _, v := range values {
			slice = reflect.Append(slice, reflect.ValueOf(v).Convert(elemType))
		}
		fv.Set(slice)
		return nil
	}

	if ft.Kind() == reflect.Ptr {
		if !hasQuery {
			return nil // default policy: optional reference left nil
		}
		values := r.ValuesOf(owner, name)
		if len(values) == 0 {
			return nil
		}
		childEid, ok := values[0].(eid.T)
		if !ok {
			return nil
		}
		elem, err := reconstructElem(r, childEid, ft, sub)
		if err != nil {
			return err
		}
		fv.Set(elem)
		return nil
	}
	if _, isStruct := structType(ft); isStruct {
		if !hasQuery {
			return nil // default policy: required reference left zero value
		}
		values := r.ValuesOf(owner, name)
		if len(values) == 0 {
			return nil
		}
		childEid, ok := values[0].(eid.T)
		if !ok {
			return nil
		}
		elem, err := reconstructElem(r, childEid, ft, sub)
		if err != nil {
			return err
		}
		fv.Set(elem.Elem())
		return nil
	}

	values := r.ValuesOf(owner, name)
	if len(values) == 0 {
		return nil // default policy: zero value of the field's type
	}
	rvv := reflect.ValueOf(values[0])
	if rvv.Type().ConvertibleTo(ft) {
		fv.Set(rvv.Convert(ft))
	}
	return nil
}

// reconstructElem builds one referenced object (elemType may be a pointer or
// bare struct type) at childEid, returning a value of pointer type so callers
// can Set it directly into a pointer field or .Elem() it for a value field.
func reconstructElem(r Reader, childEid eid.T, elemType reflect.Type, sub *Query) (reflect.Value, error) {
	base := elemType
	if base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	pv := reflect.New(base)
	if err := reconstructStruct(r, childEid, pv.Elem(), sub); err != nil {
		return reflect.Value{}, err
	}
	return pv, nil
}
