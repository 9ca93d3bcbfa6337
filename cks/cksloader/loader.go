// Package cksloader implements CksLoader: a process-wide table of checksum
// algorithms, lazily populated with the three native built-ins and
// otherwise resolved through a registered-constructor table or a real
// plugin.Open load, the Go analogue of
// dlopen("lib/libXrdCksCalc<name>.so").
package cksloader

import (
	"sync"

	"github.com/xrootd-go/xrdcore/cks/calc"
	"github.com/xrootd-go/xrdcore/internal/cos"
)

// MaxCalculators bounds the table, matching the "at most ~8 entries"
// invariant in the data model.
const MaxCalculators = 8

// Version is compared against a caller-supplied version string on Load;
// a mismatched major component fails with a descriptive error, gating
// compatibility between the manager and the calculators it loads.
const Version = "1.0"

// Constructor builds a fresh, zero-state Calc instance. Built-ins and
// ckslib-style plugins alike register one of these.
type Constructor func(parms string) (calc.Calc, error)

type entry struct {
	name    string
	ctor    Constructor
	shlib   string // non-empty if loaded via a shared library path
	parms   string
	size    int
	autorel bool
}

// Table is CksLoader: a bounded, append-only list of algorithm entries.
// Insertion takes mu, and Load takes it for the name lookup only; the
// entry itself is read after the lookup without mu, since entries never
// move or get removed.
type Table struct {
	mu      sync.Mutex
	entries []entry
	index   map[string]int

	builtinsOnce sync.Once
}

// New returns an empty table. The three built-ins are not installed
// eagerly: they're registered on the first Load, Primary or Names call.
// A Register call made before that takes index 0 and becomes the primary.
func New() *Table {
	return &Table{index: make(map[string]int, MaxCalculators)}
}

func (t *Table) ensureBuiltins() {
	t.builtinsOnce.Do(func() {
		_ = t.Register(calc.NameAdler32, func(string) (calc.Calc, error) { return calc.NewAdler32(), nil })
		_ = t.Register(calc.NameCRC32, func(string) (calc.Calc, error) { return calc.NewCRC32(), nil })
		_ = t.Register(calc.NameMD5, func(string) (calc.Calc, error) { return calc.NewMD5(), nil })
	})
}

// Register inserts a new named constructor into the table. The first
// successful Register call fixes that entry as the "primary" (index 0)
// used when callers omit an algorithm name.
func (t *Table) Register(name string, ctor Constructor) error {
	return t.register(name, ctor, "", "")
}

// RegisterPlugin is Register plus bookkeeping of the shared-library path
// and plugin parameters, as named in the calculator-table-entry data model.
func (t *Table) RegisterPlugin(name, shlib, parms string, ctor Constructor) error {
	return t.register(name, ctor, shlib, parms)
}

func (t *Table) register(name string, ctor Constructor, shlib, parms string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.index[name]; ok {
		return nil // already present; table entries are immovable, re-registration is a no-op
	}
	if len(t.entries) >= MaxCalculators {
		return cos.NewErr(cos.KindNotSupported, "checksum table full (max %d algorithms)", MaxCalculators)
	}
	if _, err := cos.BoundedName(name, cos.MaxCksumNameLen); err != nil {
		return cos.WrapErr(cos.KindNotSupported, err, "register %q", name)
	}

	t.index[name] = len(t.entries)
	t.entries = append(t.entries, entry{name: name, ctor: ctor, shlib: shlib, parms: parms})
	return nil
}

// Load returns a new Calc instance for name. An empty name selects the
// primary (index 0) algorithm. callerVersion, if non-empty, is checked
// against Version for compatibility.
func (t *Table) Load(name, parms, callerVersion string) (calc.Calc, error) {
	t.ensureBuiltins()

	if callerVersion != "" && !versionCompatible(callerVersion, Version) {
		return nil, cos.NewErr(cos.KindNotSupported,
			"incompatible CksLoader version: caller=%s loader=%s", callerVersion, Version)
	}

	t.mu.Lock()
	var (
		idx int
		ok  bool
	)
	if name == "" {
		if len(t.entries) == 0 {
			t.mu.Unlock()
			return nil, cos.NewErr(cos.KindNotSupported, "no algorithms registered")
		}
		idx, ok = 0, true
	} else {
		idx, ok = t.index[name]
	}
	t.mu.Unlock()

	if !ok {
		// Not registered: try the default ckslib library path for name.
		if err := t.LoadDefaultPath(name, parms); err != nil {
			return nil, cos.WrapErr(cos.KindNotSupported, err, "unknown checksum algorithm %q", name)
		}
		t.mu.Lock()
		idx, ok = t.index[name]
		t.mu.Unlock()
		if !ok {
			return nil, cos.NewErr(cos.KindNotSupported, "unknown checksum algorithm %q", name)
		}
	}
	// entries is append-only past this point for idx, safe to read without mu.
	e := t.entries[idx]
	c, err := e.ctor(parms)
	if err != nil {
		return nil, cos.WrapErr(cos.KindNotSupported, err, "load %q", e.name)
	}
	c.Init()
	return c, nil
}

// Primary returns the name of the index-0 algorithm, or "" if the table is
// still empty.
func (t *Table) Primary() string {
	t.ensureBuiltins()
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) == 0 {
		return ""
	}
	return t.entries[0].name
}

// Names lists every registered algorithm, in insertion order.
func (t *Table) Names() []string {
	t.ensureBuiltins()
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.name
	}
	return out
}

func versionCompatible(caller, loader string) bool {
	return majorOf(caller) == majorOf(loader)
}

func majorOf(v string) string {
	for i := 0; i < len(v); i++ {
		if v[i] == '.' {
			return v[:i]
		}
	}
	return v
}
