// Package handlerqueue implements HandlerQueue: a bounded, thread-safe,
// poll-able producer/consumer deque of in-flight HTTP operations, plus a
// thread-local-style pool of reusable transfer handles.
package handlerqueue

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/xrootd-go/xrdcore/internal/cos"
)

// DefaultCapacity and HardCap bound the queue, matching the "default 50,
// hard cap 10,000,000" backpressure invariant.
const (
	DefaultCapacity = 50
	HardCap         = 10_000_000
)

// Item is anything the queue can carry; callers supply their own
// operation type (httpcore.CurlOperation, in the engine that wires this
// package in).
type Item interface{}

// Queue is HandlerQueue. Produce fails with Busy, without blocking, when full;
// Consume blocks until an item is available, ctx is done, or a deadline
// passes. A read end of an os.Pipe is kept non-empty whenever the queue
// is non-empty, so a select loop built around CurlWorker's poll can watch
// q.PollFd() alongside its other wait descriptors.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    []Item
	capacity int

	produced cos.Int64
	consumed cos.Int64
	rejected cos.Int64

	pipeR, pipeW *os.File
	pipeSignaled bool

	handlePool sync.Pool
}

// New returns a queue with the given capacity (clamped to [1, HardCap]).
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity > HardCap {
		capacity = HardCap
	}
	q := &Queue{capacity: capacity}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	q.handlePool.New = func() interface{} { return new(handle) }
	if r, w, err := os.Pipe(); err == nil {
		q.pipeR, q.pipeW = r, w
	}
	return q
}

// PollFd returns the read end of the notifier pipe, or nil if the pipe
// could not be created (the queue still works; it just isn't poll-able).
func (q *Queue) PollFd() *os.File { return q.pipeR }

// Produce inserts an item. If the queue is at capacity, it returns
// KindBusy immediately rather than blocking, matching HandlerQueue's
// "producers receive Busy when full" contract. produced counts every call
// (accepted or rejected), so produced-consumed-rejected always equals the
// current queue size.
func (q *Queue) Produce(it Item) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.produced.Inc()
	if len(q.items) >= q.capacity {
		q.rejected.Inc()
		return cos.NewErr(cos.KindBusy, "handler queue full (capacity %d)", q.capacity)
	}
	wasEmpty := len(q.items) == 0
	q.items = append(q.items, it)
	if wasEmpty {
		q.signalNonEmpty()
	}
	q.notEmpty.Signal()
	return nil
}

// Consume removes and returns the oldest item, blocking until one is
// available, ctx is cancelled, or deadline (if non-zero) passes.
func (q *Queue) Consume(ctx context.Context, deadline time.Duration) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	done := make(chan struct{})
	if deadline > 0 {
		timer := time.AfterFunc(deadline, func() {
			q.mu.Lock()
			close(done)
			q.notEmpty.Broadcast()
			q.mu.Unlock()
		})
		defer timer.Stop()
	}
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.notEmpty.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	for len(q.items) == 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		select {
		case <-done:
			return nil, cos.NewErr(cos.KindOperationTimeout, "consume deadline elapsed")
		default:
		}
		q.notEmpty.Wait()
	}
	it := q.items[0]
	q.items = q.items[1:]
	q.consumed.Inc()
	if len(q.items) == 0 {
		q.clearNonEmpty()
	}
	q.notFull.Signal()
	return it, nil
}

func (q *Queue) signalNonEmpty() {
	if q.pipeW == nil || q.pipeSignaled {
		return
	}
	q.pipeSignaled = true
	q.pipeW.Write([]byte{1})
}

func (q *Queue) clearNonEmpty() {
	if q.pipeR == nil || !q.pipeSignaled {
		return
	}
	q.pipeSignaled = false
	buf := make([]byte, 1)
	q.pipeR.Read(buf)
}

// Len reports the current queue size.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Counters returns {produced, consumed, rejected} for monitoring export.
func (q *Queue) Counters() (produced, consumed, rejected int64) {
	return q.produced.Load(), q.consumed.Load(), q.rejected.Load()
}

// Close releases the notifier pipe. Safe to call once at shutdown.
func (q *Queue) Close() {
	if q.pipeR != nil {
		q.pipeR.Close()
	}
	if q.pipeW != nil {
		q.pipeW.Close()
	}
}

// handle is a reusable transfer handle, pooled to amortize allocation
// across operations driven by the same worker.
type handle struct {
	buf []byte
}

// GetHandle fetches a pooled handle, allocating one if the pool is empty.
func (q *Queue) GetHandle() *handle { return q.handlePool.Get().(*handle) }

// RecycleHandle returns h to the pool for reuse.
func (q *Queue) RecycleHandle(h *handle) {
	h.buf = h.buf[:0]
	q.handlePool.Put(h)
}
