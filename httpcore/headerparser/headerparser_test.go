package headerparser

import "testing"

func feedAll(t *testing.T, s *State, lines ...string) {
	t.Helper()
	for _, l := range lines {
		if err := s.FeedLine(l); err != nil {
			t.Fatalf("FeedLine(%q): %v", l, err)
		}
	}
}

func TestStatusAndHeaders(t *testing.T) {
	s := New()
	feedAll(t, s,
		"HTTP/1.1 200 OK",
		"Content-Length: 1234",
		"content-type: multipart/byteranges; boundary=SEP123",
		"Allow: GET, PUT, PROPFIND",
		"Location: /moved",
		"",
	)
	if !s.HeadersDone() {
		t.Fatal("expected HeadersDone after empty line")
	}
	if s.StatusCode != 200 || s.StatusMessage != "OK" {
		t.Fatalf("status = %d %q", s.StatusCode, s.StatusMessage)
	}
	if s.ContentLength != 1234 {
		t.Fatalf("ContentLength = %d, want 1234", s.ContentLength)
	}
	if s.MultipartSep != "SEP123" {
		t.Fatalf("MultipartSep = %q, want SEP123", s.MultipartSep)
	}
	if s.AllowVerbs&VerbGET == 0 || s.AllowVerbs&VerbPUT == 0 || s.AllowVerbs&VerbPROPFIND == 0 {
		t.Fatalf("AllowVerbs = %b, missing expected bits", s.AllowVerbs)
	}
	if s.Location != "/moved" {
		t.Fatalf("Location = %q", s.Location)
	}
	headers := s.Headers()
	if _, ok := headers["Content-Type"]; !ok {
		t.Fatalf("expected canonicalized Content-Type key, got %v", headers)
	}
}

func TestDigestHeaderDecoded(t *testing.T) {
	s := New()
	feedAll(t, s, "HTTP/1.1 200 OK", "Digest: md5=1B2M2Y8AsgTpgAmY7PhCfg==", "")
	if s.Checksums["md5"] == "" {
		t.Fatalf("expected a decoded md5 digest, got %v", s.Checksums)
	}
}

func TestIllegalControlCharacterRejected(t *testing.T) {
	s := New()
	if err := s.FeedLine("HTTP/1.1 200 OK"); err != nil {
		t.Fatal(err)
	}
	if err := s.FeedLine("X-Bad: \x01value"); err == nil {
		t.Fatal("expected an error for a control character in a header line")
	}
}

func TestMalformedStatusLineRejected(t *testing.T) {
	s := New()
	if err := s.FeedLine("garbage"); err == nil {
		t.Fatal("expected an error for a malformed status line")
	}
}
