// Package oss implements the OSS wrapped-object contract: a stackable
// storage-system interface that plugins intercept by wrapping one FS
// implementation inside another. File and directory handles are split
// into two small interfaces, keeping file and directory operations on
// separate hierarchies; Wrapper supplies the default delegating
// implementation every instrumentation plugin embeds and then
// selectively overrides.
package oss

import (
	"io"
	"os"
	"time"
)

// Stat is the subset of file metadata the core cares about.
type Stat struct {
	Size    int64
	ModTime time.Time
	Mode    os.FileMode
	IsDir   bool
}

// PageSize is the unit PgRead/PgWrite checksum independently, matching the
// page-level CRC32C granularity of the wrapped-object data model.
const PageSize = 4 * 1024

// IOVec is one entry of a ReadV scatter/gather request: read Len bytes at
// Offset into the matching output slice.
type IOVec struct {
	Offset int64
	Len    int
}

// File is an open file handle. In LocalFS's implementation a second Close
// returns a KindNotSupported error, and other methods after Close return
// the underlying file's closed-file error wrapped as KindIOError; File
// itself does not enforce either, to keep the interface a pure capability
// set.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
	Fstat() (Stat, error)
	Fchmod(mode os.FileMode) error
	Ftruncate(size int64) error
	Fsync() error

	// ReadV performs a scatter/gather read: one entry per iov request,
	// in the order given.
	ReadV(iov []IOVec) ([][]byte, error)

	// PgRead reads into buf starting at off and returns one CRC32C
	// checksum per PageSize-aligned chunk of the bytes actually read.
	PgRead(off int64, buf []byte) (n int, crc []uint32, err error)

	// PgWrite writes buf at off after verifying it against the supplied
	// per-page CRC32C checksums, rejecting the write on the first
	// mismatch found.
	PgWrite(off int64, buf []byte, crc []uint32) (n int, err error)
}

// Dir is an open directory handle.
type Dir interface {
	// Readdir returns up to n entry names (all remaining entries if n<=0).
	Readdir(n int) ([]string, error)
	Close() error
}

// FS is the stackable wrapper contract: open/stat/directory/namespace
// operations over storage-local paths. A plugin wraps one FS inside
// another to intercept calls; Wrapper gives every plugin a
// default-delegating base to embed.
type FS interface {
	Open(path string, flags int, mode os.FileMode) (File, error)
	Opendir(path string) (Dir, error)
	Mkdir(path string, mode os.FileMode) error
	Rmdir(path string) error
	Stat(path string) (Stat, error)
	Unlink(path string) error
	Rename(oldpath, newpath string) error
	Chmod(path string, mode os.FileMode) error
	Truncate(path string, size int64) error
}
