package cos

import "sync/atomic"

// Typed atomic wrappers, used in place of raw sync/atomic calls sprinkled
// through the code.

type Bool struct{ v atomic.Bool }

func (b *Bool) Load() bool         { return b.v.Load() }
func (b *Bool) Store(val bool)     { b.v.Store(val) }
func (b *Bool) CAS(old, new bool) bool { return b.v.CompareAndSwap(old, new) }

type Int64 struct{ v atomic.Int64 }

func (i *Int64) Load() int64        { return i.v.Load() }
func (i *Int64) Store(val int64)    { i.v.Store(val) }
func (i *Int64) Add(delta int64) int64 { return i.v.Add(delta) }
func (i *Int64) Inc() int64         { return i.v.Add(1) }
func (i *Int64) Dec() int64         { return i.v.Add(-1) }

type Uint32 struct{ v atomic.Uint32 }

func (u *Uint32) Load() uint32     { return u.v.Load() }
func (u *Uint32) Store(val uint32) { u.v.Store(val) }
func (u *Uint32) Inc() uint32      { return u.v.Add(1) }

type Uint64 struct{ v atomic.Uint64 }

func (u *Uint64) Load() uint64        { return u.v.Load() }
func (u *Uint64) Store(val uint64)    { u.v.Store(val) }
func (u *Uint64) Add(delta uint64) uint64 { return u.v.Add(delta) }
func (u *Uint64) Inc() uint64         { return u.v.Add(1) }
