// Package ferr is the error taxonomy shared by every layer of the fact
// database: storage, codec, node, index, schema and the allocator each
// surface one of these kinds so a caller can distinguish a transient I/O
// failure from a semantic violation without string-matching error text.
package ferr

import "github.com/pkg/errors"

// Kind identifies which class of failure occurred. Every exported error value
// in this package wraps exactly one Kind.
type Kind int

const (
	_ Kind = iota
	// IoError is a transient storage-layer failure; the caller may retry.
	IoError
	// AlreadyExists is returned by store.Adder.Add when the key is already
	// present.
	AlreadyExists
	// NotFound is returned by store.Overwriter.Overwrite when the key has
	// never been written. (store.Loader.Load reports an absent key as a nil
	// value with a nil error instead.)
	NotFound
	// CorruptedNode marks an invalid parent combination or malformed node
	// bytes; the operation fails but the database remains usable.
	CorruptedNode
	// UnknownTag is returned by the codec when a type tag byte does not match
	// any known scalar kind.
	UnknownTag
	// UnexpectedEOF is returned by the codec when a value is truncated.
	UnexpectedEOF
	// UniquenessViolation is returned when a transaction would assign a
	// second live entity the same value of a unique attribute.
	UniquenessViolation
	// SchemaError covers an undeclared attribute, a type mismatch between a
	// fact's value and its attribute's declared kind, or a cardinality
	// mismatch (a scalar attribute given a list of values or vice versa).
	SchemaError
	// EidSpaceExhausted is returned by the EID allocator once its local
	// counter would overflow.
	EidSpaceExhausted
)

func (k Kind) String() string {
	switch k {
	case IoError:
		return "io error"
	case AlreadyExists:
		return "already exists"
	case NotFound:
		return "not found"
	case CorruptedNode:
		return "corrupted node"
	case UnknownTag:
		return "unknown tag"
	case UnexpectedEOF:
		return "unexpected eof"
	case UniquenessViolation:
		return "uniqueness violation"
	case SchemaError:
		return "schema error"
	case EidSpaceExhausted:
		return "eid space exhausted"
	default:
		return "unknown error"
	}
}

// E is an error tagged with a Kind, optionally wrapping an underlying cause.
type E struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *E) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Cause.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *E) Unwrap() error { return e.Cause }

// New builds an *E of the given kind with a plain message.
func New(k Kind, msg string) error { return &E{Kind: k, Msg: msg} }

// Wrap builds an *E of the given kind around a lower-level cause, adding a
// stack trace via github.com/pkg/errors so storage/codec failures keep their
// origin when logged at the outermost API call.
func Wrap(k Kind, cause error, msg string) error {
	if cause == nil {
		return New(k, msg)
	}
	return &E{Kind: k, Msg: msg, Cause: errors.WithStack(cause)}
}

// Is reports whether err is (or wraps) an *E of kind k.
func Is(err error, k Kind) bool {
	var e *E
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
