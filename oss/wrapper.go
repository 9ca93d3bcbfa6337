package oss

import "os"

// Wrapper is the default delegating FS: every method forwards to Under
// unchanged. Instrumentation plugins (osstats) embed a Wrapper and
// override only the methods they need to observe, matching the
// stackable-wrapper contract: "an interface with a default delegating
// implementation, plus instrumentation wrappers that compose rather than
// inherit."
type Wrapper struct {
	Under FS
}

// NewWrapper returns a Wrapper delegating every call to under.
func NewWrapper(under FS) *Wrapper { return &Wrapper{Under: under} }

func (w *Wrapper) Open(path string, flags int, mode os.FileMode) (File, error) {
	return w.Under.Open(path, flags, mode)
}

func (w *Wrapper) Opendir(path string) (Dir, error) { return w.Under.Opendir(path) }

func (w *Wrapper) Mkdir(path string, mode os.FileMode) error { return w.Under.Mkdir(path, mode) }

func (w *Wrapper) Rmdir(path string) error { return w.Under.Rmdir(path) }

func (w *Wrapper) Stat(path string) (Stat, error) { return w.Under.Stat(path) }

func (w *Wrapper) Unlink(path string) error { return w.Under.Unlink(path) }

func (w *Wrapper) Rename(oldpath, newpath string) error { return w.Under.Rename(oldpath, newpath) }

func (w *Wrapper) Chmod(path string, mode os.FileMode) error { return w.Under.Chmod(path, mode) }

func (w *Wrapper) Truncate(path string, size int64) error { return w.Under.Truncate(path, size) }
