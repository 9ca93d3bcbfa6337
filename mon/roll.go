package mon

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/xrootd-go/xrdcore/internal/cos"
)

// Kind distinguishes a MonRoll registration's origin, matching the
// registry entry's set-kind field.
type Kind int

const (
	KindAddOn Kind = iota
	KindPlugin
)

// Set is one registered counter set: an immutable schema tree plus its
// live Counter/Text handles. The tree itself never changes after
// Register; only the leaves' atomics move.
type Set struct {
	name string
	kind Kind
	root *node
}

func visibleChildren(n *node) []*node {
	out := make([]*node, 0, len(n.children))
	for _, c := range n.children {
		if c.kind != nodeMutexBoundary {
			out = append(out, c)
		}
	}
	return out
}

// FormatJSON writes this set's fragment as `"stats_<name>":{...}`.
func (s *Set) FormatJSON(buf *bytes.Buffer) {
	js := jsoniter.ConfigCompatibleWithStandardLibrary.BorrowStream(buf)
	defer jsoniter.ConfigCompatibleWithStandardLibrary.ReturnStream(js)

	fmt.Fprintf(buf, `"stats_%s":`, s.name)
	writeJSONValue(s.root, js)
	js.Flush()
}

// FormatXML writes this set's fragment as `<stats id="<name>">...</stats>`.
func (s *Set) FormatXML(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `<stats id=%q>`, s.name)
	writeXMLValue(s.root, buf)
	buf.WriteString("</stats>")
}

func writeJSONField(n *node, js *jsoniter.Stream) {
	js.WriteObjectField(n.key)
	writeJSONValue(n, js)
}

func writeJSONValue(n *node, js *jsoniter.Stream) {
	switch n.kind {
	case nodeObject:
		js.WriteObjectStart()
		for i, c := range visibleChildren(n) {
			if i > 0 {
				js.WriteMore()
			}
			writeJSONField(c, js)
		}
		js.WriteObjectEnd()
	case nodeArray:
		js.WriteArrayStart()
		for i, c := range visibleChildren(n) {
			if i > 0 {
				js.WriteMore()
			}
			writeJSONValue(c, js)
		}
		js.WriteArrayEnd()
	case nodeCounter:
		js.WriteInt64(n.counter.formatted())
	case nodeText:
		js.WriteString(n.text.Load())
	}
}

func writeXMLValue(n *node, buf *bytes.Buffer) {
	switch n.kind {
	case nodeObject:
		for _, c := range visibleChildren(n) {
			buf.WriteByte('<')
			buf.WriteString(c.key)
			buf.WriteByte('>')
			writeXMLValue(c, buf)
			buf.WriteString("</")
			buf.WriteString(c.key)
			buf.WriteByte('>')
		}
	case nodeArray:
		for _, c := range visibleChildren(n) {
			buf.WriteByte('<')
			buf.WriteString(n.key)
			buf.WriteByte('>')
			writeXMLValue(c, buf)
			buf.WriteString("</")
			buf.WriteString(n.key)
			buf.WriteByte('>')
		}
	case nodeCounter:
		buf.WriteString(strconv.FormatInt(n.counter.formatted(), 10))
	case nodeText:
		xmlEscape(buf, n.text.Load())
	}
}

func xmlEscape(buf *bytes.Buffer, s string) {
	r := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")
	buf.WriteString(r.Replace(s))
}

// Roll is MonRoll: the process-wide registry of counter sets.
type Roll struct {
	mu   sync.Mutex
	sets map[string]*Set
}

// NewRoll returns an empty registry.
func NewRoll() *Roll {
	return &Roll{sets: make(map[string]*Set)}
}

// Register finalizes b's schema tree and installs it under name, which
// must be unique for the process's lifetime. An empty set (no items at
// all) registers successfully and produces empty output on format.
func (r *Roll) Register(name string, kind Kind, b *Builder) (*Set, error) {
	root, err := b.build()
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.sets[name]; dup {
		return nil, cos.NewErr(cos.KindProtocolError, "MonRoll set %q already registered", name)
	}
	s := &Set{name: name, kind: kind, root: root}
	r.sets[name] = s
	return s, nil
}

// Get returns the named set, if registered.
func (r *Roll) Get(name string) (*Set, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[name]
	return s, ok
}

// Snapshot renders every registered set's JSON and XML fragments in a
// single walk of the (fixed) registry, each format written into its own
// buffer so a caller that only wants one form isn't charged for the other
// beyond the shared node traversal.
func (r *Roll) Snapshot() (jsonOut, xmlOut []byte) {
	r.mu.Lock()
	sets := make([]*Set, 0, len(r.sets))
	for _, s := range r.sets {
		sets = append(sets, s)
	}
	r.mu.Unlock()

	var jbuf, xbuf bytes.Buffer
	for i, s := range sets {
		if i > 0 {
			jbuf.WriteByte(',')
		}
		s.FormatJSON(&jbuf)
		s.FormatXML(&xbuf)
	}
	return jbuf.Bytes(), xbuf.Bytes()
}
