package httpcore

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/xrootd-go/xrdcore/internal/cos"
)

// ConnectionCallout is a caller-supplied hook that can hand the engine a
// pre-established socket instead of letting the transfer library perform
// its own DNS resolution and TCP connect.
type ConnectionCallout interface {
	// Dial is invoked when the engine needs a connection for key (the
	// synthesized fake address). It may return a socket obtained out of
	// band; returning an error falls back to a normal dial.
	Dial(key string) (net.Conn, error)
}

// calloutEntry reference-counts one synthesized fake-DNS mapping.
type calloutEntry struct {
	callout  ConnectionCallout
	refs     cos.Int64
	zeroSince time.Time
	hasZero  bool
}

// CalloutRegistry synthesizes 169.254.x.y:port keys for ConnectionCallout
// so the HTTP library's resolver can be tricked into a deterministic
// resolution; entries are reference-counted and expire after ≥1 minute of
// zero references. Thread-local to the worker that owns the operations
// using it, per the concurrency model, so no cross-worker contention.
type CalloutRegistry struct {
	mu      sync.Mutex
	entries map[string]*calloutEntry
	next    [4]byte // next synthesized host octets, monotonically advanced
	port    int
}

// NewCalloutRegistry returns an empty, worker-local registry.
func NewCalloutRegistry() *CalloutRegistry {
	return &CalloutRegistry{
		entries: make(map[string]*calloutEntry),
		next:    [4]byte{169, 254, 0, 1},
	}
}

// Register synthesizes a fresh 169.254.x.y:port key bound to callout and
// returns it with an initial refcount of zero (Acquire bumps it on open).
func (r *CalloutRegistry) Register(callout ConnectionCallout) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	key := fmt.Sprintf("%d.%d.%d.%d:%d", r.next[0], r.next[1], r.next[2], r.next[3], r.portFor())
	r.entries[key] = &calloutEntry{callout: callout, hasZero: true, zeroSince: time.Now()}
	return key
}

func (r *CalloutRegistry) portFor() int {
	r.port++
	if r.port > 65535 {
		r.port = 1
	}
	return r.port
}

// advance increments the synthesized host, wrapping within 169.254.0.0/16.
func (r *CalloutRegistry) advance() {
	for i := 3; i >= 2; i-- {
		r.next[i]++
		if r.next[i] != 0 {
			return
		}
	}
	r.next[2], r.next[3] = 0, 1
}

// Acquire increments key's reference count, e.g. on socket open.
func (r *CalloutRegistry) Acquire(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok {
		e.refs.Inc()
		e.hasZero = false
	}
}

// Release decrements key's reference count; at zero it starts the expiry
// clock instead of deleting immediately, since a new operation may reuse
// the same callout within the expiry window.
func (r *CalloutRegistry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return
	}
	if e.refs.Dec() <= 0 {
		e.hasZero = true
		e.zeroSince = time.Now()
	}
}

// Resolve returns the callout bound to key, if any.
func (r *CalloutRegistry) Resolve(key string) (ConnectionCallout, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	return e.callout, true
}

// Reap deletes every entry that has held a zero refcount for at least
// minIdle (≥1 minute per the staleness invariant).
func (r *CalloutRegistry) Reap(minIdle time.Duration) (removed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for k, e := range r.entries {
		if e.hasZero && now.Sub(e.zeroSince) >= minIdle {
			delete(r.entries, k)
			removed++
		}
	}
	return removed
}
