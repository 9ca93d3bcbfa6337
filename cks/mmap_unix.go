//go:build linux

package cks

import (
	"context"
	"os"

	"golang.org/x/sys/unix"

	"github.com/xrootd-go/xrdcore/internal/cos"
)

// streamFile feeds path's contents through feed in order, checking ctx
// between chunks so a cancellation aborts mid-object rather than only at
// segment boundaries. Objects at or above MmapFloor are mapped and walked
// with MADV_SEQUENTIAL; smaller objects use a buffered read loop, since the
// mmap/munmap overhead isn't worth it below the floor.
func streamFile(ctx context.Context, path string, size int64, feed func([]byte)) error {
	if size >= MmapFloor {
		return streamMmap(ctx, path, size, feed)
	}
	return streamBuffered(ctx, path, feed)
}

func streamMmap(ctx context.Context, path string, size int64, feed func([]byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return cos.WrapErr(cos.KindIOError, err, "open %s", path)
	}
	defer f.Close()

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return cos.WrapErr(cos.KindIOError, err, "mmap %s", path)
	}
	defer unix.Munmap(data)
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	off := int64(0)
	for off < size {
		if err := ctx.Err(); err != nil {
			return cos.WrapErr(cos.KindOperationTimeout, err, "checksum of %s interrupted", path)
		}
		end := off + segmentSize
		if end > size {
			end = size
		}
		feed(data[off:end])
		off = end
	}
	return nil
}
