package oss

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFSOpenWriteReadClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	var fs LocalFS
	f, err := fs.Open(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteAt([]byte("hello"), 0); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 5)
	if _, err := f.ReadAt(buf, 0); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "hello" {
		t.Fatalf("read %q, want %q", buf, "hello")
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err == nil {
		t.Fatal("expected an error on double close")
	}
}

func TestLocalFSReadV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	var fs LocalFS
	f, err := fs.Open(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteAt([]byte("0123456789"), 0); err != nil {
		t.Fatal(err)
	}

	out, err := f.ReadV([]IOVec{{Offset: 0, Len: 3}, {Offset: 5, Len: 2}})
	if err != nil {
		t.Fatal(err)
	}
	if string(out[0]) != "012" || string(out[1]) != "56" {
		t.Fatalf("ReadV = %q, %q", out[0], out[1])
	}
}

func TestLocalFSPgReadWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	var fs LocalFS
	f, err := fs.Open(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	buf := make([]byte, PageSize+10)
	for i := range buf {
		buf[i] = byte(i)
	}
	want := pageChecksums(buf)
	if n, err := f.PgWrite(0, buf, want); err != nil || n != len(buf) {
		t.Fatalf("PgWrite(n=%d, err=%v)", n, err)
	}

	bad := append([]uint32(nil), want...)
	bad[0]++
	if _, err := f.PgWrite(0, buf, bad); err == nil {
		t.Fatal("expected a checksum mismatch error")
	}

	readBuf := make([]byte, len(buf))
	n, crc, err := f.PgRead(0, readBuf)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("PgRead returned %d bytes, want %d", n, len(buf))
	}
	if len(crc) != len(want) {
		t.Fatalf("PgRead returned %d page checksums, want %d", len(crc), len(want))
	}
	for i := range crc {
		if crc[i] != want[i] {
			t.Fatalf("page %d checksum mismatch on read-back", i)
		}
	}
}

func TestLocalFSDirOps(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")

	var fs LocalFS
	if err := fs.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	st, err := fs.Stat(sub)
	if err != nil {
		t.Fatal(err)
	}
	if !st.IsDir {
		t.Fatal("Stat of a directory reported IsDir=false")
	}
	if err := fs.Rmdir(sub); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Stat(sub); err == nil {
		t.Fatal("expected an error stat-ing a removed directory")
	}
}
