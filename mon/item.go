// Package mon implements MonRoll: a schema-driven, lock-free
// counter-aggregation subsystem. A caller registers a named set of
// MonItem nodes once, at startup; from then on it mutates the returned
// Counter/Text handles from any goroutine, and Format/Snapshot walk the
// fixed schema tree built at registration time to emit a JSON or XML
// summary report, reading every counter with a single relaxed atomic
// load. No schema branching happens on the hot formatting path -- only
// the already-built tree is walked.
package mon

import (
	"sync"

	"github.com/xrootd-go/xrdcore/internal/cos"
)

// CounterKind names the atomic width/signedness a binary counter was
// declared with: signed/unsigned 8/16/32/64 and native integral types.
// Storage is always a 64-bit atomic; Kind only controls how Load's result
// is truncated/sign-extended before formatting.
type CounterKind int

const (
	KindInt8 CounterKind = iota
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindInt // native int, treated as 64-bit on every platform this runs on
)

// Counter is a binary-counter MonItem: a single atomic value, mutated
// freely from any goroutine.
type Counter struct {
	kind CounterKind
	v    cos.Int64
}

func newCounter(kind CounterKind) *Counter { return &Counter{kind: kind} }

func (c *Counter) Add(delta int64) int64 { return c.v.Add(delta) }
func (c *Counter) Inc() int64            { return c.v.Inc() }
func (c *Counter) Set(val int64)         { c.v.Store(val) }
func (c *Counter) Load() int64           { return c.v.Load() }

// formatted applies the declared width/signedness to the raw 64-bit value.
func (c *Counter) formatted() int64 {
	v := c.v.Load()
	switch c.kind {
	case KindInt8:
		return int64(int8(v))
	case KindUint8:
		return int64(uint8(v))
	case KindInt16:
		return int64(int16(v))
	case KindUint16:
		return int64(uint16(v))
	case KindInt32:
		return int64(int32(v))
	case KindUint32:
		return int64(uint32(v))
	default:
		return v
	}
}

// Text is a text-string MonItem: an rwmutex-guarded string, since unlike
// a counter it can't be represented as a single machine word.
type Text struct {
	mu  sync.RWMutex
	val string
}

func newText() *Text { return &Text{} }

func (t *Text) Set(s string) {
	t.mu.Lock()
	t.val = s
	t.mu.Unlock()
}

func (t *Text) Load() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.val
}

type nodeKind int

const (
	nodeObject nodeKind = iota
	nodeArray
	nodeCounter
	nodeText
	nodeMutexBoundary
)

// node is one entry of the compiled schema tree. Object and array nodes
// carry ordered children; counter and text nodes are leaves.
type node struct {
	kind     nodeKind
	key      string // JSON field name (object/counter/text); XML tag for array elements too
	counter  *Counter
	text     *Text
	children []*node
}
