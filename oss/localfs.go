package oss

import (
	"hash/crc32"
	"os"

	"github.com/xrootd-go/xrdcore/internal/cos"
)

// crc32cTable is the Castagnoli polynomial table pgRead/pgWrite checksum
// against, the same table used elsewhere for page-level integrity checks.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// LocalFS is the base FS: a thin pass-through to the local filesystem.
// Every other FS in this package wraps a LocalFS (directly or through
// further wrappers) rather than reimplementing syscalls.
type LocalFS struct{}

func (LocalFS) Open(path string, flags int, mode os.FileMode) (File, error) {
	f, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return nil, cos.WrapErr(cos.KindIOError, err, "open %s", path)
	}
	return &localFile{f: f}, nil
}

func (LocalFS) Opendir(path string) (Dir, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cos.WrapErr(cos.KindIOError, err, "opendir %s", path)
	}
	return &localDir{f: f}, nil
}

func (LocalFS) Mkdir(path string, mode os.FileMode) error {
	if err := os.Mkdir(path, mode); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "mkdir %s", path)
	}
	return nil
}

func (LocalFS) Rmdir(path string) error {
	if err := os.Remove(path); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "rmdir %s", path)
	}
	return nil
}

func (LocalFS) Stat(path string) (Stat, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Stat{}, cos.NewErr(cos.KindNotFound, "%s does not exist", path)
		}
		return Stat{}, cos.WrapErr(cos.KindIOError, err, "stat %s", path)
	}
	return Stat{Size: fi.Size(), ModTime: fi.ModTime(), Mode: fi.Mode(), IsDir: fi.IsDir()}, nil
}

func (LocalFS) Unlink(path string) error {
	if err := os.Remove(path); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "unlink %s", path)
	}
	return nil
}

func (LocalFS) Rename(oldpath, newpath string) error {
	if err := os.Rename(oldpath, newpath); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "rename %s -> %s", oldpath, newpath)
	}
	return nil
}

func (LocalFS) Chmod(path string, mode os.FileMode) error {
	if err := os.Chmod(path, mode); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "chmod %s", path)
	}
	return nil
}

func (LocalFS) Truncate(path string, size int64) error {
	if err := os.Truncate(path, size); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "truncate %s", path)
	}
	return nil
}

type localFile struct {
	f      *os.File
	closed cos.Bool
}

func (lf *localFile) ReadAt(p []byte, off int64) (int, error) {
	n, err := lf.f.ReadAt(p, off)
	if err != nil {
		return n, cos.WrapErr(cos.KindIOError, err, "read %s", lf.f.Name())
	}
	return n, nil
}

func (lf *localFile) WriteAt(p []byte, off int64) (int, error) {
	n, err := lf.f.WriteAt(p, off)
	if err != nil {
		return n, cos.WrapErr(cos.KindIOError, err, "write %s", lf.f.Name())
	}
	return n, nil
}

func (lf *localFile) Fstat() (Stat, error) {
	fi, err := lf.f.Stat()
	if err != nil {
		return Stat{}, cos.WrapErr(cos.KindIOError, err, "fstat %s", lf.f.Name())
	}
	return Stat{Size: fi.Size(), ModTime: fi.ModTime(), Mode: fi.Mode(), IsDir: fi.IsDir()}, nil
}

func (lf *localFile) Fchmod(mode os.FileMode) error {
	if err := lf.f.Chmod(mode); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "fchmod %s", lf.f.Name())
	}
	return nil
}

func (lf *localFile) Ftruncate(size int64) error {
	if err := lf.f.Truncate(size); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "ftruncate %s", lf.f.Name())
	}
	return nil
}

func (lf *localFile) Fsync() error {
	if err := lf.f.Sync(); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "fsync %s", lf.f.Name())
	}
	return nil
}

// ReadV services the requests in order and stops at the first entry whose
// read fails or comes back short, returning the entries read before it
// together with the error.
func (lf *localFile) ReadV(iov []IOVec) ([][]byte, error) {
	out := make([][]byte, len(iov))
	for i, v := range iov {
		buf := make([]byte, v.Len)
		n, err := lf.f.ReadAt(buf, v.Offset)
		if err != nil {
			return out, cos.WrapErr(cos.KindIOError, err, "readv[%d] %s", i, lf.f.Name())
		}
		out[i] = buf[:n]
	}
	return out, nil
}

// PgRead reads into buf and returns one CRC32C per PageSize-aligned chunk
// of the bytes actually read, so a caller can compare against a
// previously stored per-page checksum vector without rereading.
func (lf *localFile) PgRead(off int64, buf []byte) (int, []uint32, error) {
	n, err := lf.f.ReadAt(buf, off)
	if err != nil && n == 0 {
		return 0, nil, cos.WrapErr(cos.KindIOError, err, "pgread %s", lf.f.Name())
	}
	return n, pageChecksums(buf[:n]), nil
}

// PgWrite verifies buf against crc page-by-page before writing, so a
// corrupted in-flight buffer is rejected instead of silently persisted.
func (lf *localFile) PgWrite(off int64, buf []byte, crc []uint32) (int, error) {
	want := pageChecksums(buf)
	for i, c := range want {
		if i >= len(crc) {
			break
		}
		if c != crc[i] {
			return 0, cos.NewErr(cos.KindIOError, "pgwrite %s: page %d checksum mismatch", lf.f.Name(), i)
		}
	}
	n, err := lf.f.WriteAt(buf, off)
	if err != nil {
		return n, cos.WrapErr(cos.KindIOError, err, "pgwrite %s", lf.f.Name())
	}
	return n, nil
}

// pageChecksums splits buf into PageSize chunks (the last one possibly
// short) and CRC32C-checksums each independently.
func pageChecksums(buf []byte) []uint32 {
	n := (len(buf) + PageSize - 1) / PageSize
	if n == 0 {
		return nil
	}
	out := make([]uint32, n)
	for i := range out {
		start := i * PageSize
		end := start + PageSize
		if end > len(buf) {
			end = len(buf)
		}
		out[i] = crc32.Checksum(buf[start:end], crc32cTable)
	}
	return out
}

func (lf *localFile) Close() error {
	if !lf.closed.CAS(false, true) {
		return cos.NewErr(cos.KindNotSupported, "%s already closed", lf.f.Name())
	}
	if err := lf.f.Close(); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "close %s", lf.f.Name())
	}
	return nil
}

type localDir struct {
	f      *os.File
	closed cos.Bool
}

func (ld *localDir) Readdir(n int) ([]string, error) {
	names, err := ld.f.Readdirnames(n)
	if err != nil {
		return names, cos.WrapErr(cos.KindIOError, err, "readdir %s", ld.f.Name())
	}
	return names, nil
}

func (ld *localDir) Close() error {
	if !ld.closed.CAS(false, true) {
		return cos.NewErr(cos.KindNotSupported, "%s already closed", ld.f.Name())
	}
	if err := ld.f.Close(); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "close %s", ld.f.Name())
	}
	return nil
}
