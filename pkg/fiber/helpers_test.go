package fiber

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *display.MemoryTree) {
	t.Helper()
	tree := display.NewMemoryTree()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(tree, tree.Root(), opts...), tree
}

func render(t *testing.T, eng *Engine, el *vdom.Element) CommitReport {
	t.Helper()
	eng.Render(el)
	require.NoError(t, eng.Flush())
	return eng.LastCommit()
}

// click dispatches a click on the element with the given id attribute.
func click(t *testing.T, tree *display.MemoryTree, id string) {
	t.Helper()
	nodes := tree.Find(func(n *display.MemoryNode) bool {
		v, _ := n.Attr("id")
		return v == id
	})
	require.Len(t, nodes, 1, "no node with id %q", id)
	require.Equal(t, 1, tree.Dispatch(nodes[0], "click", nil), "no click listener on %q", id)
}

// recoverError runs fn and returns the error it panicked with.
func recoverError(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		p := recover()
		require.NotNil(t, p, "expected panic")
		e, ok := p.(error)
		require.True(t, ok, "panic value %T is not an error", p)
		err = e
	}()
	fn()
	return nil
}

// counter renders a button showing its count. Clicking increments it.
var counter = vdom.Define("Counter", func(h vdom.Hooks, props vdom.Props) *vdom.Element {
	count, set := vdom.UseState(h, 0)
	return vdom.Button(
		vdom.ID(props.String("id")),
		vdom.OnClick(func() { set.Update(func(n int) int { return n + 1 }) }),
		count,
	)
})

func counterEl(id string) *vdom.Element {
	return vdom.Create(counter, vdom.Props{"id": id})
}
