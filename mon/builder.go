package mon

import "github.com/xrootd-go/xrdcore/internal/cos"

// Builder assembles one MonRoll set's schema tree. Schema markers form a
// balanced tree (every BegArray/BegObject has a matching End call with the
// same key); Register rejects an unbalanced builder outright.
type Builder struct {
	root  *node
	stack []*node
}

// NewBuilder starts a set whose top level is an (unkeyed) JSON object.
func NewBuilder() *Builder {
	root := &node{kind: nodeObject}
	return &Builder{root: root, stack: []*node{root}}
}

func (b *Builder) top() *node { return b.stack[len(b.stack)-1] }

func (b *Builder) append(n *node) *node {
	t := b.top()
	t.children = append(t.children, n)
	return n
}

// Counter declares a binary-counter item under key, returning a handle the
// caller mutates for the life of the process.
func (b *Builder) Counter(key string, kind CounterKind) *Counter {
	c := newCounter(kind)
	b.append(&node{kind: nodeCounter, key: key, counter: c})
	return c
}

// Text declares a text-string item under key.
func (b *Builder) Text(key string) *Text {
	t := newText()
	b.append(&node{kind: nodeText, key: key, text: t})
	return t
}

// MutexBoundary marks a synchronization boundary between preceding and
// following items. It contributes no output; it exists purely so a
// formatter walking a flat item stream can tell where one mutex's
// protected group ends and another begins. The tree formatter here
// ignores it, since Go's per-node atomics make the boundary unnecessary
// for correctness -- it's retained as a schema
// element so registrations translated from the item-stream form still
// round-trip.
func (b *Builder) MutexBoundary() {
	b.append(&node{kind: nodeMutexBoundary})
}

// BegObject opens a nested object under key.
func (b *Builder) BegObject(key string) {
	n := b.append(&node{kind: nodeObject, key: key})
	b.stack = append(b.stack, n)
}

// EndObject closes the innermost open object, which must have been opened
// with the same key.
func (b *Builder) EndObject(key string) error {
	return b.pop(nodeObject, key)
}

// BegArray opens a nested array under key. key is ignored in the JSON
// rendering (arrays have no field names in JSON once inside their parent)
// but is used as every element's XML tag.
func (b *Builder) BegArray(key string) {
	n := b.append(&node{kind: nodeArray, key: key})
	b.stack = append(b.stack, n)
}

// EndArray closes the innermost open array, which must have been opened
// with the same key.
func (b *Builder) EndArray(key string) error {
	return b.pop(nodeArray, key)
}

func (b *Builder) pop(kind nodeKind, key string) error {
	if len(b.stack) <= 1 {
		return cos.NewErr(cos.KindProtocolError, "unbalanced MonItem schema: extra end for %q", key)
	}
	top := b.stack[len(b.stack)-1]
	if top.kind != kind || top.key != key {
		return cos.NewErr(cos.KindProtocolError, "unbalanced MonItem schema: end %q does not match open %q", key, top.key)
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// build finalizes the tree, failing if any Beg call was left unclosed.
func (b *Builder) build() (*node, error) {
	if len(b.stack) != 1 {
		return nil, cos.NewErr(cos.KindProtocolError, "unbalanced MonItem schema: %d scope(s) left open", len(b.stack)-1)
	}
	return b.root, nil
}
