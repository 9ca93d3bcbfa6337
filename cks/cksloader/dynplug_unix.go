//go:build linux

package cksloader

import (
	"fmt"
	"plugin"

	"github.com/xrootd-go/xrdcore/cks/calc"
	"github.com/xrootd-go/xrdcore/internal/cos"
)

// PluginEntryPoint is the symbol a ckslib shared object must export: a
// function manufacturing a calc.Calc from (name, parms), the Go analogue
// of a dlsym'd XrdCksCalcInit entry point.
const PluginEntryPoint = "XrdCksCalcInit"

// LoadShlib opens the shared object at path (conventionally
// "lib/libXrdCksCalc<name>.so", per the ckslib configuration directive) and
// registers the algorithm it provides under name into t.
func (t *Table) LoadShlib(name, path, parms string) error {
	p, err := plugin.Open(path)
	if err != nil {
		return cos.WrapErr(cos.KindNotSupported, err, "open ckslib %q", path)
	}
	sym, err := p.Lookup(PluginEntryPoint)
	if err != nil {
		return cos.WrapErr(cos.KindNotSupported, err, "ckslib %q missing %s", path, PluginEntryPoint)
	}
	ctor, ok := sym.(func(string) (calc.Calc, error))
	if !ok {
		return cos.NewErr(cos.KindNotSupported, "ckslib %q: %s has wrong signature", path, PluginEntryPoint)
	}
	return t.RegisterPlugin(name, path, parms, ctor)
}

func shlibPath(name string) string {
	return fmt.Sprintf("lib/libXrdCksCalc%s.so", name)
}

// LoadDefaultPath resolves name via the default search pattern
// "lib/libXrdCksCalc<name>.so", used when a ckslib directive omits an
// explicit library path.
func (t *Table) LoadDefaultPath(name, parms string) error {
	return t.LoadShlib(name, shlibPath(name), parms)
}
