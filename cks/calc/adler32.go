package calc

import "hash/adler32"

// Adler32 wraps the standard library's adler32 (modulo 65521, block size
// 5552 internally) under the Calc contract. Output is the 4-byte digest in
// network byte order, exactly as hash/adler32.Sum already produces it.
type Adler32 struct{ h hashResettable32 }

type hashResettable32 interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
	Reset()
}

func NewAdler32() *Adler32 {
	a := &Adler32{h: adler32.New()}
	return a
}

func (a *Adler32) Init()          { a.h.Reset() }
func (a *Adler32) Update(b []byte) { a.h.Write(b) }
func (a *Adler32) Final() []byte  { return a.h.Sum(nil) }
func (a *Adler32) Type() (string, int) { return NameAdler32, 4 }
func (a *Adler32) Clone() Calc    { return NewAdler32() }
func (a *Adler32) Recycle()       {}
