package cos

import "sync"

// StopCh is a closable broadcast signal: Close is idempotent and every
// Listen()er observes it exactly once. Used for cooperative shutdown of
// CurlWorker's run loop and osstats' emit goroutine.
type StopCh struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

func NewStopCh() *StopCh {
	s := &StopCh{}
	s.Init()
	return s
}

func (s *StopCh) Init() {
	s.mu.Lock()
	s.ch = make(chan struct{})
	s.closed = false
	s.mu.Unlock()
}

func (s *StopCh) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *StopCh) Listen() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch
}

func (s *StopCh) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
