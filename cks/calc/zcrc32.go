package calc

import "hash/crc32"

// ZCRC32 is the plain zlib/deflate-compatible CRC-32, with no length fold.
// Kept distinct from CRC32 (this package's XRootD-flavored variant) because
// third-party tools compute plain zlib CRC-32s and expect to match it
// byte-for-byte.
type ZCRC32 struct{ h hashResettable32 }

func NewZCRC32() *ZCRC32 {
	return &ZCRC32{h: crc32.NewIEEE()}
}

func (z *ZCRC32) Init()           { z.h.Reset() }
func (z *ZCRC32) Update(b []byte) { z.h.Write(b) }
func (z *ZCRC32) Final() []byte   { return z.h.Sum(nil) }
func (z *ZCRC32) Type() (string, int) { return NameZCRC32, 4 }
func (z *ZCRC32) Clone() Calc     { return NewZCRC32() }
func (z *ZCRC32) Recycle()        {}
