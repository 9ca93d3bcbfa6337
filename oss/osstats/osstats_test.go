package osstats

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/xrootd-go/xrdcore/mon"
	"github.com/xrootd-go/xrdcore/oss"
)

type recordingSink struct {
	mu      sync.Mutex
	records [][]byte
}

func (s *recordingSink) Flush(record []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := append([]byte(nil), record...)
	s.records = append(s.records, cp)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestNoSinkPassesThrough(t *testing.T) {
	var under oss.LocalFS
	got := New(context.Background(), under, Options{})
	if got != oss.FS(under) {
		t.Fatal("New with no Sink should return the underlying FS unchanged")
	}
}

func TestEmitsOnceASecond(t *testing.T) {
	dir := t.TempDir()
	var under oss.LocalFS
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, under, Options{Sink: sink}).(*Stats)
	defer s.Shutdown()

	for i := 0; i < 10; i++ {
		if _, err := s.Stat(dir); err != nil {
			t.Fatal(err)
		}
	}
	p := filepath.Join(dir, "x")
	if err := s.Mkdir(p, 0o755); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for sink.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if sink.count() == 0 {
		t.Fatal("expected at least one emitted record within 3s")
	}
	rec := sink.records[0]
	if !bytes.Contains(rec, []byte(`"stat"`)) {
		t.Errorf("emitted record missing stat counters: %s", rec)
	}
}

var _ mon.Sink = (*recordingSink)(nil)
