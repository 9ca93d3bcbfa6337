//go:build linux

package cksxattr

import (
	"strings"

	"golang.org/x/sys/unix"

	"github.com/xrootd-go/xrdcore/internal/cos"
)

// Get reads and decodes the checksum record for algorithm name stored on
// path. length is the algorithm's declared digest size (from CksLoader),
// needed because the wire layout does not self-describe it.
func Get(path, name string, length int) (Record, error) {
	buf := make([]byte, recordSize)
	n, err := unix.Getxattr(path, Key(name), buf)
	if err != nil {
		if err == unix.ENODATA || err == unix.ENOATTR {
			return Record{}, cos.NewErr(cos.KindNotFound, "no %s checksum record on %s", name, path)
		}
		return Record{}, cos.WrapErr(cos.KindIOError, err, "getxattr %s", path)
	}
	return Decode(buf[:n], length)
}

// Set persists r onto path under its own algorithm name.
func Set(path string, r Record) error {
	buf := Encode(r)
	if err := unix.Setxattr(path, Key(r.Name), buf, 0); err != nil {
		return cos.WrapErr(cos.KindIOError, err, "setxattr %s on %s", r.Name, path)
	}
	return nil
}

// Del removes the checksum record for name from path.
func Del(path, name string) error {
	if err := unix.Removexattr(path, Key(name)); err != nil {
		if err == unix.ENODATA || err == unix.ENOATTR {
			return cos.NewErr(cos.KindNotFound, "no %s checksum record on %s", name, path)
		}
		return cos.WrapErr(cos.KindIOError, err, "removexattr %s on %s", name, path)
	}
	return nil
}

// List returns the algorithm names that have checksum records attached to
// path (i.e. every "XrdCks.<name>" extended attribute key present).
func List(path string) ([]string, error) {
	sz, err := unix.Listxattr(path, nil)
	if err != nil {
		return nil, cos.WrapErr(cos.KindIOError, err, "listxattr %s", path)
	}
	if sz == 0 {
		return nil, nil
	}
	buf := make([]byte, sz)
	n, err := unix.Listxattr(path, buf)
	if err != nil {
		return nil, cos.WrapErr(cos.KindIOError, err, "listxattr %s", path)
	}
	var names []string
	for _, key := range strings.Split(string(buf[:n]), "\x00") {
		if strings.HasPrefix(key, KeyPrefix) {
			names = append(names, strings.TrimPrefix(key, KeyPrefix))
		}
	}
	return names, nil
}

// RemoveLegacyAdler32 deletes the pre-CksXAttr "user.checksum.adler32"
// attribute, if present, as part of migrating an object onto the current
// record format.
func RemoveLegacyAdler32(path string) error {
	err := unix.Removexattr(path, LegacyAdler32Key)
	if err == nil || err == unix.ENODATA || err == unix.ENOATTR {
		return nil
	}
	return cos.WrapErr(cos.KindIOError, err, "remove legacy adler32 xattr on %s", path)
}
