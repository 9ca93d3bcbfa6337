package cksloader

import (
	"testing"

	"github.com/xrootd-go/xrdcore/cks/calc"
	"github.com/xrootd-go/xrdcore/internal/cos"
)

func TestBuiltinsLazyAndPrimary(t *testing.T) {
	tbl := New()
	if got := tbl.Primary(); got != calc.NameAdler32 {
		t.Fatalf("Primary() = %q, want %q", got, calc.NameAdler32)
	}
	names := tbl.Names()
	if len(names) != 3 {
		t.Fatalf("Names() = %v, want 3 built-ins", names)
	}
}

func TestLoadUnknownAlgorithm(t *testing.T) {
	tbl := New()
	if _, err := tbl.Load("bogus", "", ""); !cos.Is(err, cos.KindNotSupported) {
		t.Fatalf("Load(bogus) = %v, want KindNotSupported", err)
	}
}

func TestLoadEmptyNameSelectsPrimary(t *testing.T) {
	tbl := New()
	c, err := tbl.Load("", "", "")
	if err != nil {
		t.Fatal(err)
	}
	name, _ := c.Type()
	if name != calc.NameAdler32 {
		t.Fatalf("Load(\"\") resolved to %q, want primary %q", name, calc.NameAdler32)
	}
}

func TestRegisterDuplicateIsNoop(t *testing.T) {
	tbl := New()
	tbl.ensureBuiltins()
	before := len(tbl.Names())
	if err := tbl.Register(calc.NameAdler32, func(string) (calc.Calc, error) { return calc.NewAdler32(), nil }); err != nil {
		t.Fatal(err)
	}
	if got := len(tbl.Names()); got != before {
		t.Fatalf("duplicate Register changed table size: %d -> %d", before, got)
	}
}

func TestRegisterTableFull(t *testing.T) {
	tbl := New()
	tbl.ensureBuiltins() // 3 built-ins already occupy slots
	ctor := func(string) (calc.Calc, error) { return calc.NewMD5(), nil }
	for i := 0; i < MaxCalculators-3; i++ {
		name := string(rune('a' + i))
		if err := tbl.Register(name, ctor); err != nil {
			t.Fatalf("Register %d: %v", i, err)
		}
	}
	if err := tbl.Register("overflow", ctor); !cos.Is(err, cos.KindNotSupported) {
		t.Fatalf("Register past capacity = %v, want KindNotSupported", err)
	}
}

func TestVersionMismatchRejected(t *testing.T) {
	tbl := New()
	if _, err := tbl.Load(calc.NameAdler32, "", "2.0"); !cos.Is(err, cos.KindNotSupported) {
		t.Fatalf("Load with incompatible version = %v, want KindNotSupported", err)
	}
	if _, err := tbl.Load(calc.NameAdler32, "", "1.7"); err != nil {
		t.Fatalf("Load with compatible major version failed: %v", err)
	}
}
