//go:build !linux

package cksloader

import "github.com/xrootd-go/xrdcore/internal/cos"

// Go's plugin package only supports linux (and, partially, darwin, but not
// reliably across toolchains); elsewhere ckslib loading fails explicitly
// rather than silently doing nothing.

func (t *Table) LoadShlib(name, _path, _parms string) error {
	return cos.NewErr(cos.KindNotSupported, "ckslib plugin loading unsupported on this platform (%s)", name)
}

func (t *Table) LoadDefaultPath(name, parms string) error {
	return t.LoadShlib(name, "", parms)
}
