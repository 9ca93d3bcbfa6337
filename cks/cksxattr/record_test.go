package cksxattr

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var r Record
	r.Name = "adler32"
	r.Length = 4
	copy(r.Value[:], []byte{0xde, 0xad, 0xbe, 0xef})
	r.FmTime = 1735689600
	r.CsTime = 3

	buf := Encode(r)
	if len(buf) != recordSize {
		t.Fatalf("Encode produced %d bytes, want %d", len(buf), recordSize)
	}

	got, err := Decode(buf, r.Length)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != r.Name || got.FmTime != r.FmTime || got.CsTime != r.CsTime {
		t.Fatalf("Decode = %+v, want %+v", got, r)
	}
	if got.Value != r.Value {
		t.Fatalf("Decode value = % x, want % x", got.Value, r.Value)
	}
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	if _, err := Decode(make([]byte, recordSize-1), 4); err == nil {
		t.Fatal("Decode accepted a short buffer")
	}
}

func TestKeyPrefix(t *testing.T) {
	if got := Key("md5"); got != "XrdCks.md5" {
		t.Fatalf("Key(md5) = %q, want %q", got, "XrdCks.md5")
	}
}
