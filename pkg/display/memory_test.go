package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vfiber/pkg/vdom"
)

func TestMemoryTreeInsertAndRemove(t *testing.T) {
	tree := NewMemoryTree()
	root := tree.Root()

	a := tree.CreateElement("a").(*MemoryNode)
	b := tree.CreateElement("b").(*MemoryNode)
	c := tree.CreateElement("c").(*MemoryNode)

	root.AppendChild(a)
	root.AppendChild(c)
	root.InsertBefore(b, c)

	tags := func() []string {
		var out []string
		for _, n := range root.Children() {
			out = append(out, n.Tag())
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c"}, tags())
	assert.Equal(t, 3, tree.Len())

	root.RemoveChild(b)
	assert.Equal(t, []string{"a", "c"}, tags())
	assert.Nil(t, b.Parent())
	_, ok := tree.Lookup(b.ID())
	assert.False(t, ok, "removed node should not resolve")
	assert.Equal(t, 2, tree.Len())
}

func TestMemoryTreeIndexesSubtreeOnAttach(t *testing.T) {
	tree := NewMemoryTree()
	div := tree.CreateElement("div")
	span := tree.CreateElement("span").(*MemoryNode)
	div.AppendChild(span)

	_, ok := tree.Lookup(span.ID())
	assert.False(t, ok, "detached nodes are not indexed")

	tree.Root().AppendChild(div)
	got, ok := tree.Lookup(span.ID())
	require.True(t, ok)
	assert.Same(t, span, got)
}

func TestMemoryTreeMoveChild(t *testing.T) {
	tree := NewMemoryTree()
	p1 := tree.CreateElement("p").(*MemoryNode)
	p2 := tree.CreateElement("p").(*MemoryNode)
	x := tree.CreateElement("x")
	tree.Root().AppendChild(p1)
	tree.Root().AppendChild(p2)

	p1.AppendChild(x)
	p2.AppendChild(x)

	assert.Empty(t, p1.Children())
	assert.Len(t, p2.Children(), 1)
}

func TestMemoryTreeRemoveForeignChildPanics(t *testing.T) {
	tree := NewMemoryTree()
	x := tree.CreateElement("x")
	assert.Panics(t, func() { tree.Root().RemoveChild(x) })
	assert.Panics(t, func() { tree.Root().InsertBefore(tree.CreateElement("y"), x) })

	other := NewMemoryTree()
	assert.Panics(t, func() { tree.Root().AppendChild(other.CreateElement("z")) })
}

func TestMemoryTreeTextNodes(t *testing.T) {
	tree := NewMemoryTree()
	p := tree.CreateElement("p").(*MemoryNode)
	txt := tree.CreateTextNode("").(*MemoryNode)
	txt.SetAttribute(vdom.TextValueKey, "hello")
	p.AppendChild(txt)
	p.AppendChild(tree.CreateTextNode(" world"))
	tree.Root().AppendChild(p)

	assert.True(t, txt.IsText())
	assert.Equal(t, "hello", txt.Text())
	assert.Equal(t, "hello world", p.TextContent())
}

func TestMemoryTreeAttributes(t *testing.T) {
	tree := NewMemoryTree()
	n := tree.CreateElement("div").(*MemoryNode)

	n.SetAttribute("title", "x")
	v, ok := n.Attr("title")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	n.ClearAttribute("title")
	_, ok = n.Attr("title")
	assert.False(t, ok)
	assert.Empty(t, n.Attrs())
}

func TestMemoryTreeDispatch(t *testing.T) {
	tree := NewMemoryTree()
	btn := tree.CreateElement("button").(*MemoryNode)
	tree.Root().AppendChild(btn)

	var got []*vdom.Event
	l := vdom.NewListener(func(e *vdom.Event) { got = append(got, e) })
	btn.AddEventListener("click", l)
	btn.AddEventListener("click", l)

	assert.Equal(t, 1, btn.Listeners("click"), "listener set deduplicates")
	assert.Equal(t, 1, tree.Dispatch(btn, "click", nil))
	require.Len(t, got, 1)
	assert.Equal(t, "click", got[0].Type)
	assert.Same(t, btn, got[0].Target)

	n, err := tree.DispatchID(btn.ID(), "click", "v")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "v", got[1].Value)

	btn.RemoveEventListener("click", l)
	assert.Equal(t, 0, tree.Dispatch(btn, "click", nil))
	assert.Empty(t, btn.Events())

	_, err = tree.DispatchID("n999", "click", nil)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestMemoryTreeOpsAndObservers(t *testing.T) {
	tree := NewMemoryTree()

	var seen []OpKind
	cancel := tree.Observe(func(op Op) { seen = append(seen, op.Kind) })

	div := tree.CreateElement("div")
	div.SetAttribute("id", "x")
	tree.Root().AppendChild(div)

	ops := tree.TakeOps()
	require.Len(t, ops, 3)
	assert.Equal(t, "CreateElement n1 \"div\"", ops[0].String())
	assert.Equal(t, "SetAttr n1 id=\"x\"", ops[1].String())
	assert.Equal(t, "InsertNode n1 into root", ops[2].String())
	assert.Empty(t, tree.Ops())
	assert.Equal(t, []OpKind{OpCreateElement, OpSetAttr, OpInsertNode}, seen)

	cancel()
	div.ClearAttribute("id")
	assert.Len(t, seen, 3)
	assert.Len(t, tree.Ops(), 1)
}

func TestMemoryTreeOpLimit(t *testing.T) {
	tree := NewMemoryTree(WithOpLimit(2))
	n := tree.CreateElement("div")
	n.SetAttribute("a", 1)
	n.SetAttribute("b", 2)

	ops := tree.Ops()
	require.Len(t, ops, 2)
	assert.Equal(t, "a", ops[0].Key)
	assert.Equal(t, "b", ops[1].Key)

	silent := NewMemoryTree(WithOpLimit(0))
	silent.CreateElement("div")
	assert.Empty(t, silent.Ops())
}

func TestMemoryTreeFind(t *testing.T) {
	tree := NewMemoryTree()
	outer := tree.CreateElement("li")
	inner := tree.CreateElement("li")
	outer.AppendChild(inner)
	tree.Root().AppendChild(outer)
	tree.Root().AppendChild(tree.CreateElement("li"))

	lis := tree.Find(func(n *MemoryNode) bool { return n.Tag() == "li" })
	require.Len(t, lis, 3)
	assert.Same(t, outer, lis[0])
	assert.Same(t, inner, lis[1])
	assert.Same(t, outer, tree.FindTag("li"))
	assert.Nil(t, tree.FindTag("table"))
}

func TestOpKindString(t *testing.T) {
	assert.Equal(t, "RemoveListener", OpRemoveListener.String())
	assert.Equal(t, "Unknown", OpKind(0).String())
}
