package calc

import "crypto/md5"

// MD5 wraps the standard library's RFC 1321 implementation. Final()
// concludes the computation (crypto/md5 appends the bit-length padding
// internally on Sum) and returns the 16-byte digest.
type MD5 struct{ h hashResettable }

type hashResettable interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
	Reset()
}

func NewMD5() *MD5 { return &MD5{h: md5.New()} }

func (m *MD5) Init()           { m.h.Reset() }
func (m *MD5) Update(b []byte) { m.h.Write(b) }
func (m *MD5) Final() []byte   { return m.h.Sum(nil) }
func (m *MD5) Type() (string, int) { return NameMD5, 16 }
func (m *MD5) Clone() Calc     { return NewMD5() }
func (m *MD5) Recycle()        {}
