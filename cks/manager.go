package cks

import (
	"context"
	"os"
	"time"

	"github.com/xrootd-go/xrdcore/cks/calc"
	"github.com/xrootd-go/xrdcore/cks/cksloader"
	"github.com/xrootd-go/xrdcore/cks/cksxattr"
	"github.com/xrootd-go/xrdcore/internal/cos"
)

// MmapFloor is the minimum object size past which Calc prefers the
// memory-mapped segment path over buffered reads, per the "floor of
// 64 MiB in the memory-mapped path" invariant.
const MmapFloor = 64 * cos.MiB

// segmentSize is the buffered-read chunk size; rounded to a 64 KiB
// multiple per the "page-aligned read sizes, rounded up to 64 KiB
// multiples" invariant.
var segmentSize = cos.RoundUp(4*cos.MiB, 64*cos.KiB)

// Manager is CksManager: Calc/Get/Ver/Set/Del/List over objects identified
// by their storage-local path.
type Manager struct {
	table *cksloader.Table
}

// NewManager builds a Manager around a fresh, empty algorithm table (the
// three native algorithms register lazily on first use).
func NewManager() *Manager {
	return &Manager{table: cksloader.New()}
}

// Table exposes the underlying CksLoader table, e.g. for a "ckslib"
// configuration directive to register a plugin before first use.
func (m *Manager) Table() *cksloader.Table { return m.table }

// Calc streams path in large segments through a fresh calculator for name
// (empty name selects the primary algorithm), storing the result into cks.
// If persist is true, the record is written via extended attributes.
func (m *Manager) Calc(ctx context.Context, path, name string, persist bool) (Record, error) {
	c, err := m.table.Load(name, "", "")
	if err != nil {
		return Record{}, err
	}
	defer c.Recycle()
	resolvedName, size := c.Type()
	_ = size

	fi, err := os.Stat(path)
	if err != nil {
		return Record{}, cos.WrapErr(cos.KindIOError, err, "stat %s", path)
	}
	if !fi.Mode().IsRegular() {
		return Record{}, cos.NewErr(cos.KindNotSupported, "%s is not a regular file", path)
	}
	mtime := fi.ModTime()

	if err := streamFile(ctx, path, fi.Size(), c.Update); err != nil {
		return Record{}, err
	}

	digest := c.Final()
	var rec Record
	rec.Name = resolvedName
	rec.Length = len(digest)
	copy(rec.Value[:], digest)
	rec.FmTime = mtime.Unix()
	rec.CsTime = int32(time.Now().Unix() - rec.FmTime)

	if persist {
		if err := cksxattr.Set(path, toWire(rec)); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

// Get reads the stored record for name (empty selects the primary
// algorithm) and compares its fmTime against the object's current mtime,
// returning a Stale error on mismatch.
func (m *Manager) Get(path, name string) (Record, error) {
	resolved, length, err := m.resolve(name)
	if err != nil {
		return Record{}, err
	}
	w, err := cksxattr.Get(path, resolved, length)
	if err != nil {
		return Record{}, err
	}
	rec := fromWire(w)

	fi, err := os.Stat(path)
	if err != nil {
		return Record{}, cos.WrapErr(cos.KindIOError, err, "stat %s", path)
	}
	if rec.Name != resolved || rec.IsStale(fi.ModTime().Unix()) {
		return rec, cos.NewErr(cos.KindStale, "%s checksum record on %s is stale", resolved, path)
	}
	return rec, nil
}

// Ver computes the expected checksum (from the stored record, or via Calc
// if the record is stale or absent) and reports whether it equals want.
func (m *Manager) Ver(ctx context.Context, path, name string, want [32]byte) (bool, error) {
	rec, err := m.Get(path, name)
	if err != nil {
		if !cos.Is(err, cos.KindStale) && !cos.Is(err, cos.KindNotFound) {
			return false, err
		}
		rec, err = m.Calc(ctx, path, name, false)
		if err != nil {
			return false, err
		}
	}
	return rec.Equal(want), nil
}

// Set persists cks onto path. If myTime is zero, fmTime is refreshed from
// the object's current mtime and csTime is set to 0; otherwise myTime is
// stored as fmTime and cks's own csTime is kept.
func (m *Manager) Set(path string, rec Record, myTime int64) error {
	resolved, length, err := m.resolve(rec.Name)
	if err != nil {
		return err
	}
	if rec.Length != length {
		return cos.NewErr(cos.KindLengthMismatch, "%s checksum length %d, want %d", resolved, rec.Length, length)
	}
	rec.Name = resolved

	if myTime == 0 {
		fi, err := os.Stat(path)
		if err != nil {
			return cos.WrapErr(cos.KindIOError, err, "stat %s", path)
		}
		rec.FmTime = fi.ModTime().Unix()
		rec.CsTime = 0
	} else {
		rec.FmTime = myTime
	}
	return cksxattr.Set(path, toWire(rec))
}

// Del removes the record for name from path.
func (m *Manager) Del(path, name string) error {
	resolved, _, err := m.resolve(name)
	if err != nil {
		return err
	}
	return cksxattr.Del(path, resolved)
}

// List returns a sep-separated list of algorithm names with records
// attached to path; if path is empty, it lists configured algorithms
// instead.
func (m *Manager) List(path, sep string) (string, error) {
	var names []string
	var err error
	if path == "" {
		names = m.table.Names()
	} else {
		names, err = cksxattr.List(path)
		if err != nil {
			return "", err
		}
	}
	return joinSep(names, sep), nil
}

func (m *Manager) resolve(name string) (resolved string, size int, err error) {
	c, err := m.table.Load(name, "", "")
	if err != nil {
		return "", 0, err
	}
	defer c.Recycle()
	resolved, size = c.Type()
	return resolved, size, nil
}

func joinSep(names []string, sep string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += sep
		}
		out += n
	}
	return out
}

// ConfiguredBuiltin is a convenience matching calc.IsNative, exported here
// so callers that only hold a *Manager needn't import cks/calc directly.
func ConfiguredBuiltin(name string) bool { return calc.IsNative(name) }
