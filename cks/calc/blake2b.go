package calc

import "golang.org/x/crypto/blake2b"

// Blake2b stands in for a ckslib-loaded plugin: it is never reachable
// through the fast native-name switch in cksloader, only through the
// dynamic registry, demonstrating that the Calc contract is satisfied
// identically whether the concrete type is a built-in or a "loaded"
// algorithm. A real ckslib plugin would arrive via cks/cksloader's
// plugin.Open path instead of an in-tree constructor, but the contract on
// the Go side is exactly this one.
type Blake2b struct{ h hashResettable }

func NewBlake2b() *Blake2b {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on a too-long key; nil key never does.
		panic(err)
	}
	return &Blake2b{h: h}
}

func (b *Blake2b) Init()           { b.h.Reset() }
func (b *Blake2b) Update(p []byte) { b.h.Write(p) }
func (b *Blake2b) Final() []byte   { return b.h.Sum(nil) }
func (b *Blake2b) Type() (string, int) { return NameBlake2b, blake2b.Size256 }
func (b *Blake2b) Clone() Calc     { return NewBlake2b() }
func (b *Blake2b) Recycle()        {}
