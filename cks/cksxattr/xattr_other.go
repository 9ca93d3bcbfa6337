//go:build !linux

package cksxattr

import "github.com/xrootd-go/xrdcore/internal/cos"

// Extended attributes are a Linux-xattr-namespace concept; other platforms
// get an explicit NotSupported rather than a silent no-op.

func Get(path, name string, length int) (Record, error) {
	return Record{}, cos.NewErr(cos.KindNotSupported, "extended attributes unsupported on this platform")
}

func Set(path string, r Record) error {
	return cos.NewErr(cos.KindNotSupported, "extended attributes unsupported on this platform")
}

func Del(path, name string) error {
	return cos.NewErr(cos.KindNotSupported, "extended attributes unsupported on this platform")
}

func List(path string) ([]string, error) {
	return nil, cos.NewErr(cos.KindNotSupported, "extended attributes unsupported on this platform")
}

func RemoveLegacyAdler32(path string) error {
	return cos.NewErr(cos.KindNotSupported, "extended attributes unsupported on this platform")
}
