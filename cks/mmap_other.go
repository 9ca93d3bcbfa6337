//go:build !linux

package cks

import "context"

// streamFile falls back to buffered reads on platforms without the
// mmap/madvise path; the floor that would otherwise select the
// memory-mapped strategy on Linux is simply never reached here.
func streamFile(ctx context.Context, path string, size int64, feed func([]byte)) error {
	return streamBuffered(ctx, path, feed)
}
