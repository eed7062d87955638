package display

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/vango-dev/vfiber/pkg/vdom"
)

// ErrNodeNotFound is returned when a node ID does not resolve.
var ErrNodeNotFound = errors.New("display: node not found")

// RootID is the ID of a MemoryTree's container node.
const RootID = "root"

// TreeOption configures a MemoryTree.
type TreeOption func(*MemoryTree)

// WithOpLimit keeps only the most recent n ops in the mutation log.
// Zero disables recording.
func WithOpLimit(n int) TreeOption {
	return func(t *MemoryTree) {
		t.opLimit = n
	}
}

// MemoryTree is a headless display tree. It implements Document, records
// every mutation and can dispatch events to bound listeners. It is safe for
// concurrent readers while one goroutine mutates it.
type MemoryTree struct {
	mu      sync.RWMutex
	id      string
	seq     uint64
	root    *MemoryNode
	nodes   map[string]*MemoryNode
	ops     []Op
	opLimit int // <0 unlimited

	obsMu     sync.Mutex
	observers map[int]func(Op)
	obsSeq    int
}

// NewMemoryTree creates an empty tree with a container node.
func NewMemoryTree(opts ...TreeOption) *MemoryTree {
	t := &MemoryTree{
		id:        uuid.NewString(),
		nodes:     make(map[string]*MemoryNode),
		opLimit:   -1,
		observers: make(map[int]func(Op)),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.root = t.newNode(RootID, RootID, false)
	t.nodes[RootID] = t.root
	return t
}

// ID returns the unique tree ID.
func (t *MemoryTree) ID() string {
	return t.id
}

// Root returns the container node.
func (t *MemoryTree) Root() *MemoryNode {
	return t.root
}

// CreateElement implements Document.
func (t *MemoryTree) CreateElement(tag string) Node {
	t.mu.Lock()
	n := t.newNode(t.nextID(), tag, false)
	op := t.record(Op{Kind: OpCreateElement, Node: n.id, Key: tag})
	t.mu.Unlock()
	t.notify(op)
	return n
}

// CreateTextNode implements Document.
func (t *MemoryTree) CreateTextNode(text string) Node {
	t.mu.Lock()
	n := t.newNode(t.nextID(), "#text", true)
	n.attrs[vdom.TextValueKey] = text
	op := t.record(Op{Kind: OpCreateText, Node: n.id, Key: "#text", Value: text})
	t.mu.Unlock()
	t.notify(op)
	return n
}

// Lookup returns the attached node with the given ID.
func (t *MemoryTree) Lookup(id string) (*MemoryNode, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	return n, ok
}

// Find returns the attached nodes matching match, in document order.
func (t *MemoryTree) Find(match func(*MemoryNode) bool) []*MemoryNode {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []*MemoryNode
	stack := reverse(t.root.children)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if match(n) {
			out = append(out, n)
		}
		stack = append(stack, reverse(n.children)...)
	}
	return out
}

// FindTag returns the first attached element with the given tag.
func (t *MemoryTree) FindTag(tag string) *MemoryNode {
	found := t.Find(func(n *MemoryNode) bool { return !n.text && n.tag == tag })
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// Len returns the number of attached nodes, excluding the container.
func (t *MemoryTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes) - 1
}

// Ops returns a copy of the mutation log.
func (t *MemoryTree) Ops() []Op {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Op(nil), t.ops...)
}

// TakeOps returns the mutation log and clears it.
func (t *MemoryTree) TakeOps() []Op {
	t.mu.Lock()
	defer t.mu.Unlock()
	ops := t.ops
	t.ops = nil
	return ops
}

// Observe registers fn to receive every mutation after it is applied. The
// returned func removes the observer. fn must not mutate the tree.
func (t *MemoryTree) Observe(fn func(Op)) (cancel func()) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.obsSeq++
	id := t.obsSeq
	t.observers[id] = fn
	return func() {
		t.obsMu.Lock()
		delete(t.observers, id)
		t.obsMu.Unlock()
	}
}

// Dispatch delivers an event to the listeners bound on target for the event
// type and returns how many were called. Listeners run on the caller's
// goroutine without any tree lock held.
func (t *MemoryTree) Dispatch(target *MemoryNode, eventType string, value any) int {
	t.mu.RLock()
	var listeners []*vdom.Listener
	if set, ok := target.listeners[eventType]; ok {
		listeners = set.ToSlice()
	}
	t.mu.RUnlock()

	ev := &vdom.Event{Type: eventType, Target: target, Value: value}
	for _, l := range listeners {
		l.Call(ev)
	}
	return len(listeners)
}

// DispatchID is Dispatch addressed by node ID.
func (t *MemoryTree) DispatchID(id, eventType string, value any) (int, error) {
	n, ok := t.Lookup(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return t.Dispatch(n, eventType, value), nil
}

func (t *MemoryTree) nextID() string {
	t.seq++
	return "n" + strconv.FormatUint(t.seq, 10)
}

func (t *MemoryTree) newNode(id, tag string, text bool) *MemoryNode {
	return &MemoryNode{
		tree:      t,
		id:        id,
		tag:       tag,
		text:      text,
		attrs:     make(map[string]any),
		listeners: make(map[string]mapset.Set[*vdom.Listener]),
	}
}

// record appends op to the log. Callers hold mu.
func (t *MemoryTree) record(op Op) Op {
	if t.opLimit == 0 {
		return op
	}
	t.ops = append(t.ops, op)
	if t.opLimit > 0 && len(t.ops) > t.opLimit {
		t.ops = append(t.ops[:0], t.ops[len(t.ops)-t.opLimit:]...)
	}
	return op
}

func (t *MemoryTree) notify(op Op) {
	t.obsMu.Lock()
	if len(t.observers) == 0 {
		t.obsMu.Unlock()
		return
	}
	ids := make([]int, 0, len(t.observers))
	for id := range t.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Op), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, t.observers[id])
	}
	t.obsMu.Unlock()

	for _, fn := range fns {
		fn(op)
	}
}

// index adds n and its descendants to the attached set. Callers hold mu.
func (t *MemoryTree) index(n *MemoryNode) {
	stack := []*MemoryNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.nodes[cur.id] = cur
		stack = append(stack, cur.children...)
	}
}

// unindex removes n and its descendants from the attached set.
func (t *MemoryTree) unindex(n *MemoryNode) {
	stack := []*MemoryNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		delete(t.nodes, cur.id)
		stack = append(stack, cur.children...)
	}
}

// attached reports whether n is reachable from the container. Callers hold mu.
func (t *MemoryTree) attached(n *MemoryNode) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == t.root {
			return true
		}
	}
	return false
}

// MemoryNode is a node of a MemoryTree.
type MemoryNode struct {
	tree      *MemoryTree
	id        string
	tag       string
	text      bool
	attrs     map[string]any
	listeners map[string]mapset.Set[*vdom.Listener]
	parent    *MemoryNode
	children  []*MemoryNode
}

var _ Node = (*MemoryNode)(nil)

// ID returns the node ID ("root" for the container, "n<seq>" otherwise).
func (n *MemoryNode) ID() string { return n.id }

// Tag returns the element tag, or "#text".
func (n *MemoryNode) Tag() string { return n.tag }

// IsText reports whether n is a text node.
func (n *MemoryNode) IsText() bool { return n.text }

// Text returns the content of a text node.
func (n *MemoryNode) Text() string {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return attrString(n.attrs[vdom.TextValueKey])
}

// TextContent returns the concatenated text of n's subtree.
func (n *MemoryNode) TextContent() string {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()

	var sb strings.Builder
	stack := []*MemoryNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.text {
			sb.WriteString(attrString(cur.attrs[vdom.TextValueKey]))
			continue
		}
		stack = append(stack, reverse(cur.children)...)
	}
	return sb.String()
}

// Attr returns the value of an attribute.
func (n *MemoryNode) Attr(name string) (any, bool) {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	v, ok := n.attrs[name]
	return v, ok
}

// Attrs returns a copy of the node's attributes.
func (n *MemoryNode) Attrs() map[string]any {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	out := make(map[string]any, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

// Listeners returns the number of listeners bound for the event type.
func (n *MemoryNode) Listeners(event string) int {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	if set, ok := n.listeners[event]; ok {
		return set.Cardinality()
	}
	return 0
}

// Events returns the sorted event types with at least one listener.
func (n *MemoryNode) Events() []string {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.events()
}

func (n *MemoryNode) events() []string {
	out := make([]string, 0, len(n.listeners))
	for event, set := range n.listeners {
		if set.Cardinality() > 0 {
			out = append(out, event)
		}
	}
	sort.Strings(out)
	return out
}

// Parent returns the parent node, or nil when detached.
func (n *MemoryNode) Parent() *MemoryNode {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.parent
}

// Children returns a copy of the child list.
func (n *MemoryNode) Children() []*MemoryNode {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return append([]*MemoryNode(nil), n.children...)
}

// SetAttribute implements Node.
func (n *MemoryNode) SetAttribute(name string, value any) {
	t := n.tree
	t.mu.Lock()
	n.attrs[name] = value
	op := t.record(Op{Kind: OpSetAttr, Node: n.id, Key: name, Value: attrString(value)})
	t.mu.Unlock()
	t.notify(op)
}

// ClearAttribute implements Node.
func (n *MemoryNode) ClearAttribute(name string) {
	t := n.tree
	t.mu.Lock()
	delete(n.attrs, name)
	op := t.record(Op{Kind: OpClearAttr, Node: n.id, Key: name})
	t.mu.Unlock()
	t.notify(op)
}

// AddEventListener implements Node.
func (n *MemoryNode) AddEventListener(event string, l *vdom.Listener) {
	if l == nil {
		return
	}
	t := n.tree
	t.mu.Lock()
	set, ok := n.listeners[event]
	if !ok {
		set = mapset.NewThreadUnsafeSet[*vdom.Listener]()
		n.listeners[event] = set
	}
	set.Add(l)
	op := t.record(Op{Kind: OpAddListener, Node: n.id, Key: event})
	t.mu.Unlock()
	t.notify(op)
}

// RemoveEventListener implements Node.
func (n *MemoryNode) RemoveEventListener(event string, l *vdom.Listener) {
	t := n.tree
	t.mu.Lock()
	if set, ok := n.listeners[event]; ok {
		set.Remove(l)
		if set.Cardinality() == 0 {
			delete(n.listeners, event)
		}
	}
	op := t.record(Op{Kind: OpRemoveListener, Node: n.id, Key: event})
	t.mu.Unlock()
	t.notify(op)
}

// AppendChild implements Node.
func (n *MemoryNode) AppendChild(child Node) {
	n.InsertBefore(child, nil)
}

// InsertBefore implements Node. A child that already has a parent is moved.
// It panics when ref is not a child of n.
func (n *MemoryNode) InsertBefore(child, ref Node) {
	c := n.own(child)
	var r *MemoryNode
	if ref != nil {
		r = n.own(ref)
	}

	t := n.tree
	t.mu.Lock()
	if c.parent != nil {
		c.parent.detach(c)
		t.unindex(c)
	}

	at := len(n.children)
	if r != nil {
		at = n.indexOf(r)
		if at < 0 {
			t.mu.Unlock()
			panic(fmt.Sprintf("display: %s is not a child of %s", r.id, n.id))
		}
	}
	n.children = append(n.children, nil)
	copy(n.children[at+1:], n.children[at:])
	n.children[at] = c
	c.parent = n

	if t.attached(n) {
		t.index(c)
	}
	op := Op{Kind: OpInsertNode, Node: c.id, Parent: n.id}
	if r != nil {
		op.Before = r.id
	}
	op = t.record(op)
	t.mu.Unlock()
	t.notify(op)
}

// RemoveChild implements Node. It panics when child is not a child of n.
func (n *MemoryNode) RemoveChild(child Node) {
	c := n.own(child)

	t := n.tree
	t.mu.Lock()
	if c.parent != n {
		t.mu.Unlock()
		panic(fmt.Sprintf("display: %s is not a child of %s", c.id, n.id))
	}
	n.detach(c)
	t.unindex(c)
	op := t.record(Op{Kind: OpRemoveNode, Node: c.id, Parent: n.id})
	t.mu.Unlock()
	t.notify(op)
}

// Markup serializes n and its subtree.
func (n *MemoryNode) Markup() string {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	var sb strings.Builder
	writeNode(&sb, n, MarkupOptions{}, 0)
	return sb.String()
}

func (n *MemoryNode) own(node Node) *MemoryNode {
	m, ok := node.(*MemoryNode)
	if !ok || m.tree != n.tree {
		panic(fmt.Sprintf("display: foreign node %T", node))
	}
	return m
}

func (n *MemoryNode) indexOf(c *MemoryNode) int {
	for i, child := range n.children {
		if child == c {
			return i
		}
	}
	return -1
}

// detach unlinks c from n's child list. Callers hold mu.
func (n *MemoryNode) detach(c *MemoryNode) {
	if i := n.indexOf(c); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
	}
	c.parent = nil
}

func reverse(nodes []*MemoryNode) []*MemoryNode {
	out := make([]*MemoryNode, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n
	}
	return out
}
