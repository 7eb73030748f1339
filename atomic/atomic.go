// Package atomic provides thin generic wrappers around sync/atomic for the
// handful of scalar types used elsewhere in this module (log level, shutdown
// flags, sequence counters). It exists so call sites read as typed atomic
// values (atomic.Bool, atomic.Int32, atomic.Uint64) rather than bare
// sync/atomic function calls scattered across packages.
package atomic

import "sync/atomic"

// Bool is an atomically accessed boolean.
type Bool struct{ v atomic.Bool }

func (b *Bool) Load() bool       { return b.v.Load() }
func (b *Bool) Store(val bool)   { b.v.Store(val) }
func (b *Bool) Swap(val bool) bool { return b.v.Swap(val) }
func (b *Bool) CompareAndSwap(old, new bool) bool {
	return b.v.CompareAndSwap(old, new)
}

// Int32 is an atomically accessed int32.
type Int32 struct{ v atomic.Int32 }

func (i *Int32) Load() int32      { return i.v.Load() }
func (i *Int32) Store(val int32)  { i.v.Store(val) }
func (i *Int32) Add(delta int32) int32 { return i.v.Add(delta) }

// Uint64 is an atomically accessed uint64, used for monotonic counters such
// as the local-EID sequence.
type Uint64 struct{ v atomic.Uint64 }

func (u *Uint64) Load() uint64         { return u.v.Load() }
func (u *Uint64) Store(val uint64)     { u.v.Store(val) }
func (u *Uint64) Add(delta uint64) uint64 { return u.v.Add(delta) }
func (u *Uint64) CompareAndSwap(old, new uint64) bool {
	return u.v.CompareAndSwap(old, new)
}
