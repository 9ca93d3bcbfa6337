// Package cks implements CksManager: the checksum manager that
// orchestrates Calc/Get/Set/Del/Ver/List over storage-local objects,
// built on cks/calc (algorithms), cks/cksloader (the algorithm table),
// and cks/cksxattr (extended-attribute persistence).
package cks

import "github.com/xrootd-go/xrdcore/cks/cksxattr"

// Record is the checksum record: {name, length, value, fmTime, csTime}.
// fmTime is the object's modification time at the moment the checksum was
// computed; csTime is the offset in seconds from fmTime to the moment the
// checksum was computed. A Record is stale iff the object's current
// modification time no longer equals fmTime.
type Record struct {
	Name   string
	Length int
	Value  [32]byte
	FmTime int64
	CsTime int32
}

// IsStale reports whether r no longer matches the object's current
// modification time.
func (r Record) IsStale(currentMtime int64) bool {
	return r.FmTime != currentMtime
}

// Equal compares the significant Length bytes of two checksum values.
func (r Record) Equal(other [32]byte) bool {
	for i := 0; i < r.Length; i++ {
		if r.Value[i] != other[i] {
			return false
		}
	}
	return true
}

func toWire(r Record) cksxattr.Record {
	return cksxattr.Record{Name: r.Name, Length: r.Length, Value: r.Value, FmTime: r.FmTime, CsTime: r.CsTime}
}

func fromWire(w cksxattr.Record) Record {
	return Record{Name: w.Name, Length: w.Length, Value: w.Value, FmTime: w.FmTime, CsTime: w.CsTime}
}
