// Package cksxattr packs and unpacks checksum records for extended-attribute
// storage, and performs the get/set/delete/list syscalls against a path's
// xattr namespace. The wire layout is part of the on-disk format and is
// endian-normalized explicitly rather than relying on host layout.
package cksxattr

import (
	"encoding/binary"

	"github.com/xrootd-go/xrdcore/internal/cos"
)

// KeyPrefix is prepended to an algorithm name to form the extended
// attribute key, e.g. "XrdCks.adler32".
const KeyPrefix = "XrdCks."

// LegacyAdler32Key is the pre-CksXAttr attribute name for adler32. Only
// RemoveLegacyAdler32 uses it; Get, Set and Del never read or write it.
const LegacyAdler32Key = "user.checksum.adler32"

// Key returns the extended-attribute key for algorithm name.
func Key(name string) string { return KeyPrefix + name }

// recordSize is the packed size: name[16] || value[32] || fmTime:i64 || csTime:i32.
const recordSize = cos.MaxCksumNameLen + cos.MaxCksumValLen + 8 + 4

// Record mirrors cks.Record but lives at the wire-format layer so this
// package has no import-cycle dependency on the cks package.
type Record struct {
	Name   string
	Length int
	Value  [cos.MaxCksumValLen]byte
	FmTime int64
	CsTime int32
}

// Encode packs r into the bit-exact wire layout: name and value are
// zero-padded to their fixed widths; fmTime/csTime are written big-endian
// ("network byte order"). Bytes beyond Length in the value field are
// written as zero.
func Encode(r Record) []byte {
	buf := make([]byte, recordSize)
	copy(buf[0:cos.MaxCksumNameLen], r.Name)
	// buf[len(r.Name):16] already zero from make()

	voff := cos.MaxCksumNameLen
	n := r.Length
	if n > cos.MaxCksumValLen {
		n = cos.MaxCksumValLen
	}
	copy(buf[voff:voff+n], r.Value[:n])
	// remaining value bytes already zero

	toff := voff + cos.MaxCksumValLen
	binary.BigEndian.PutUint64(buf[toff:toff+8], uint64(r.FmTime))
	binary.BigEndian.PutUint32(buf[toff+8:toff+12], uint32(r.CsTime))
	return buf
}

// Decode unpacks a wire-format buffer produced by Encode. length must be
// supplied by the caller (the record itself does not self-describe how many
// of the 32 value bytes are significant beyond what the algorithm's known
// digest size implies); Decode trusts the caller's length and does not
// validate it against any particular algorithm.
func Decode(buf []byte, length int) (Record, error) {
	if len(buf) != recordSize {
		return Record{}, cos.NewErr(cos.KindLengthMismatch,
			"checksum record wire size %d, want %d", len(buf), recordSize)
	}
	var r Record
	r.Name = trimZero(buf[0:cos.MaxCksumNameLen])
	voff := cos.MaxCksumNameLen
	copy(r.Value[:], buf[voff:voff+cos.MaxCksumValLen])
	r.Length = length

	toff := voff + cos.MaxCksumValLen
	r.FmTime = int64(binary.BigEndian.Uint64(buf[toff : toff+8]))
	r.CsTime = int32(binary.BigEndian.Uint32(buf[toff+8 : toff+12]))
	return r, nil
}

func trimZero(b []byte) string {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return string(b[:i])
}
