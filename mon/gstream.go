package mon

import (
	"io"
	"sync"
)

// Sink is a gStream-style flush target: a null-terminated stream of
// complete JSON records, written as a unit so a reader tailing the stream
// never observes a half-written record.
type Sink interface {
	Flush(record []byte) error
}

// WriterSink adapts any io.Writer (a unix socket, a log file, a pipe to a
// collector) into a Sink by appending the null-byte record terminator the
// gStream wire protocol uses.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink { return &WriterSink{w: w} }

func (s *WriterSink) Flush(record []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(record); err != nil {
		return err
	}
	_, err := s.w.Write([]byte{0})
	return err
}

// NopSink discards every record; it's the zero value used when no gStream
// destination is configured, so callers can flush unconditionally.
type NopSink struct{}

func (NopSink) Flush([]byte) error { return nil }
