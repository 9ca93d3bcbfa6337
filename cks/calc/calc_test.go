package calc

import (
	"bytes"
	"encoding/hex"
	"hash/crc32"
	"testing"
)

func newByName(t *testing.T, name string) Calc {
	t.Helper()
	switch name {
	case NameAdler32:
		return NewAdler32()
	case NameCRC32:
		return NewCRC32()
	case NameMD5:
		return NewMD5()
	case NameZCRC32:
		return NewZCRC32()
	default:
		t.Fatalf("unknown algorithm %q", name)
		return nil
	}
}

func TestEmptyInput(t *testing.T) {
	for _, name := range []string{NameAdler32, NameCRC32, NameMD5, NameZCRC32} {
		c := newByName(t, name)
		c.Init()
		got := c.Final()
		if name == NameCRC32 || name == NameZCRC32 {
			want := []byte{0, 0, 0, 0}
			if !bytes.Equal(got, want) {
				t.Errorf("%s: empty input digest = % x, want % x", name, got, want)
			}
		}
	}
}

func TestUpdateIsAssociative(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, many times over")
	for _, name := range []string{NameAdler32, NameCRC32, NameMD5, NameZCRC32} {
		whole := newByName(t, name)
		whole.Init()
		whole.Update(data)
		want := whole.Final()

		for _, split := range []int{1, 7, len(data) / 2, len(data) - 1} {
			if split <= 0 || split >= len(data) {
				continue
			}
			parted := newByName(t, name)
			parted.Init()
			parted.Update(data[:split])
			parted.Update(data[split:])
			got := parted.Final()
			if !bytes.Equal(got, want) {
				t.Errorf("%s: split at %d gave % x, want % x", name, split, got, want)
			}
		}
	}
}

func TestTypeReportsDeclaredSize(t *testing.T) {
	cases := map[string]int{
		NameAdler32: 4,
		NameCRC32:   4,
		NameMD5:     16,
		NameZCRC32:  4,
	}
	for name, size := range cases {
		c := newByName(t, name)
		gotName, gotSize := c.Type()
		if gotName != name || gotSize != size {
			t.Errorf("Type() = (%q, %d), want (%q, %d)", gotName, gotSize, name, size)
		}
	}
}

func TestKnownRoundTripValues(t *testing.T) {
	a := NewAdler32()
	a.Init()
	if got := a.Final(); hex.EncodeToString(got) != "00000001" {
		t.Errorf("adler32(\"\") = %x, want 00000001", got)
	}
	a.Init()
	a.Update([]byte("abc"))
	if got := a.Final(); hex.EncodeToString(got) != "024d0127" {
		t.Errorf("adler32(\"abc\") = %x, want 024d0127", got)
	}

	c := NewCRC32()
	c.Init()
	if got := c.Final(); hex.EncodeToString(got) != "00000000" {
		t.Errorf("crc32(length 0) = %x, want 00000000", got)
	}

	m := NewMD5()
	m.Init()
	if got := m.Final(); hex.EncodeToString(got) != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("md5(\"\") = %x, want d41d8cd98f00b204e9800998ecf8427e", got)
	}
}

// TestCRC32LengthFoldIsVariableLengthLittleEndian pins down the non-empty
// case the length-fold logic has to get right: only the significant bytes
// of the total length are folded in, low byte first, not a fixed 8-byte
// field.
func TestCRC32LengthFoldIsVariableLengthLittleEndian(t *testing.T) {
	cases := []struct {
		data     []byte
		lenBytes []byte
	}{
		{data: []byte("abc"), lenBytes: []byte{3}},
		{data: bytes.Repeat([]byte{0x5a}, 300), lenBytes: []byte{0x2c, 0x01}},
		{data: bytes.Repeat([]byte{0x11}, 256), lenBytes: []byte{0x00, 0x01}},
	}
	for _, tc := range cases {
		c := NewCRC32()
		c.Init()
		c.Update(tc.data)
		got := c.Final()

		h := crc32.NewIEEE()
		h.Write(tc.data)
		h.Write(tc.lenBytes)
		want := h.Sum(nil)

		if !bytes.Equal(got, want) {
			t.Errorf("crc32(len=%d) = % x, want % x", len(tc.data), got, want)
		}
	}
}

func TestIsNative(t *testing.T) {
	for _, name := range []string{NameAdler32, NameCRC32, NameMD5, NameZCRC32} {
		if !IsNative(name) {
			t.Errorf("IsNative(%q) = false, want true", name)
		}
	}
	if IsNative(NameBlake2b) {
		t.Error("IsNative(blake2b) = true, want false (loaded only via the dynamic table)")
	}
}
