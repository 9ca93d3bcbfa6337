package cks

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/xrootd-go/xrdcore/internal/cos"
)

// streamBuffered is the portable fallback segmented-read path: a bufio
// reader sized to segmentSize, checking ctx between reads.
func streamBuffered(ctx context.Context, path string, feed func([]byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return cos.WrapErr(cos.KindIOError, err, "open %s", path)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, int(segmentSize))
	buf := make([]byte, int(segmentSize))
	for {
		if err := ctx.Err(); err != nil {
			return cos.WrapErr(cos.KindOperationTimeout, err, "checksum of %s interrupted", path)
		}
		n, err := r.Read(buf)
		if n > 0 {
			feed(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return cos.WrapErr(cos.KindIOError, err, "read %s", path)
		}
	}
}
