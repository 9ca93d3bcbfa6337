package cks

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/xrootd-go/xrdcore/internal/cos"
)

func TestManagerCalcGetVer(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("extended attributes require linux")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "object")
	if err := os.WriteFile(path, []byte("hello checksum manager"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	rec, err := m.Calc(context.Background(), path, calcNameMD5, true)
	if err != nil {
		t.Fatalf("Calc: %v", err)
	}
	if rec.Name != calcNameMD5 {
		t.Fatalf("got name %q, want %q", rec.Name, calcNameMD5)
	}

	got, err := m.Get(path, calcNameMD5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Value != rec.Value {
		t.Fatalf("Get returned a different digest than Calc computed")
	}

	ok, err := m.Ver(context.Background(), path, calcNameMD5, rec.Value)
	if err != nil {
		t.Fatalf("Ver: %v", err)
	}
	if !ok {
		t.Fatal("Ver reported mismatch for a freshly computed digest")
	}

	// Touching the file advances mtime past fmTime, staling the record.
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	future := fi.ModTime().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(path, calcNameMD5); !cos.Is(err, cos.KindStale) {
		t.Fatalf("Get after mtime change: got %v, want a Stale error", err)
	}
}

const calcNameMD5 = "md5"
