// Package context re-exports the standard context type under the short name T,
// matching this module's one-letter aliasing convention so every other package
// can write context.T instead of context.Context.
package context

import (
	"bytes"
	"context"
)

// T is the standard library context, re-exported under the project's short
// naming convention.
type T = context.Context

type (
	bo = bool
	by = []byte
	st = string
	er = error
	no = int
	cx = context.Context
)

var (
	equals  = bytes.Equal
	Background = context.Background
	WithCancel = context.WithCancel
	WithTimeout = context.WithTimeout
)
