package fiber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

func TestPositionalTypeMismatchReplaces(t *testing.T) {
	eng, tree := newTestEngine(t)
	render(t, eng, vdom.Div(vdom.P("x"), vdom.Span("y")))
	oldSpan := tree.FindTag("span")

	r := render(t, eng, vdom.Div(vdom.Span("y"), vdom.Span("z")))

	assert.Equal(t, `<div><span>y</span><span>z</span></div>`, tree.Markup())
	assert.Equal(t, 1, r.Deleted)
	assert.Equal(t, 2, r.Created, "new span and its text")
	assert.Equal(t, 3, r.Updated, "div, second span and its text")
	assert.Equal(t, 1, r.Changed, "only the text value changed")

	spans := tree.Find(func(n *display.MemoryNode) bool { return n.Tag() == "span" })
	require.Len(t, spans, 2)
	assert.Same(t, oldSpan, spans[1], "the span at index 1 is reused")
}

func TestPositionalDiffDoesNotMatchAcrossIndexes(t *testing.T) {
	eng, tree := newTestEngine(t)
	render(t, eng, vdom.Div(vdom.P("a"), vdom.Span("b")))
	oldSpan := tree.FindTag("span")

	r := render(t, eng, vdom.Div(vdom.Span("b")))

	assert.Equal(t, `<div><span>b</span></div>`, tree.Markup())
	assert.Equal(t, 2, r.Deleted, "p at index 0 and span at index 1")
	assert.Equal(t, 2, r.Created)
	assert.NotSame(t, oldSpan, tree.FindTag("span"), "a span that moved index is recreated")
}

func TestTextUpdateSetsValue(t *testing.T) {
	eng, tree := newTestEngine(t)
	render(t, eng, vdom.P("one"))
	tree.TakeOps()

	render(t, eng, vdom.P("two"))

	assert.Equal(t, `<p>two</p>`, tree.Markup())
	assert.Equal(t, []string{`SetAttr n2 value="two"`}, opStrings(tree.TakeOps()))
}

func TestAttributeChangesUseClear(t *testing.T) {
	eng, tree := newTestEngine(t)
	render(t, eng, vdom.Div(vdom.ID("x"), vdom.TitleAttr("t")))
	tree.TakeOps()

	render(t, eng, vdom.Div(vdom.ID("y")))

	assert.Equal(t, []string{
		`ClearAttr n1 title`,
		`SetAttr n1 id="y"`,
	}, opStrings(tree.TakeOps()))
}

func TestListenersRebindOnChange(t *testing.T) {
	eng, tree := newTestEngine(t)
	var got []string
	build := func(name string) *vdom.Element {
		return vdom.Button(vdom.OnClick(func() { got = append(got, name) }))
	}

	render(t, eng, build("first"))
	render(t, eng, build("second"))

	btn := tree.FindTag("button")
	assert.Equal(t, 1, btn.Listeners("click"))
	tree.Dispatch(btn, "click", nil)
	assert.Equal(t, []string{"second"}, got)
}

func TestHostAndComponentOfSameShapeDiffer(t *testing.T) {
	wrap := vdom.Define("Wrap", func(h vdom.Hooks, props vdom.Props) *vdom.Element {
		return vdom.Div(props.Children())
	})

	eng, tree := newTestEngine(t)
	render(t, eng, vdom.Div("x"))
	oldDiv := tree.FindTag("div")

	r := render(t, eng, vdom.Create(wrap, nil, "x"))

	assert.Equal(t, `<div>x</div>`, tree.Markup())
	assert.Equal(t, 1, r.Deleted)
	assert.NotSame(t, oldDiv, tree.FindTag("div"))
}

// labelItem keeps the label it was first rendered with.
func labelItem(h vdom.Hooks, props vdom.Props) *vdom.Element {
	n, _ := vdom.UseState(h, props.String("label"))
	return vdom.Li(n)
}

func TestComponentIdentityByFunction(t *testing.T) {
	eng, tree := newTestEngine(t)
	render(t, eng, vdom.Ul(vdom.Create(labelItem, vdom.Props{"label": "first"})))
	r := render(t, eng, vdom.Ul(vdom.Create(labelItem, vdom.Props{"label": "second"})))

	// The same function is the same component, so the state survives.
	assert.Equal(t, `<ul><li>first</li></ul>`, tree.Markup())
	assert.Equal(t, 0, r.Deleted)
}

func TestComponentIdentityByClosure(t *testing.T) {
	renders := 0
	makeItem := func(label string) vdom.ComponentFunc {
		return func(h vdom.Hooks, props vdom.Props) *vdom.Element {
			renders++
			n, _ := vdom.UseState(h, label)
			return vdom.Li(n)
		}
	}

	eng, tree := newTestEngine(t)
	first := makeItem("first")
	render(t, eng, vdom.Ul(vdom.Create(first, nil)))

	r := render(t, eng, vdom.Ul(vdom.Create(first, nil)))
	assert.Equal(t, `<ul><li>first</li></ul>`, tree.Markup(), "a reused closure keeps its state")
	assert.Equal(t, 0, r.Deleted)

	r = render(t, eng, vdom.Ul(vdom.Create(makeItem("second"), nil)))
	assert.Equal(t, `<ul><li>second</li></ul>`, tree.Markup(), "a new closure is a new component")
	assert.Equal(t, 1, r.Deleted)
	assert.Equal(t, 3, renders)
}

func TestComponentRenderingNothing(t *testing.T) {
	empty := vdom.Define("Empty", func(vdom.Hooks, vdom.Props) *vdom.Element { return nil })

	eng, tree := newTestEngine(t)
	render(t, eng, vdom.Div(vdom.Create(empty, nil), vdom.P("after")))

	assert.Equal(t, `<div><p>after</p></div>`, tree.Markup())
}

func TestInsertBeforeExistingSibling(t *testing.T) {
	var show vdom.Setter[bool]
	toggle := vdom.Define("Toggle", func(h vdom.Hooks, _ vdom.Props) *vdom.Element {
		on, set := vdom.UseState(h, false)
		show = set
		if !on {
			return nil
		}
		return vdom.Span("shown")
	})

	eng, tree := newTestEngine(t)
	render(t, eng, vdom.Div(vdom.P("before"), vdom.Create(toggle, nil), vdom.P("after")))

	show.Set(true)
	require.NoError(t, eng.Flush())

	assert.Equal(t, `<div><p>before</p><span>shown</span><p>after</p></div>`, tree.Markup())
	r := eng.LastCommit()
	assert.True(t, r.Partial)
	assert.Equal(t, "Toggle", r.Root)

	show.Set(false)
	require.NoError(t, eng.Flush())
	assert.Equal(t, `<div><p>before</p><p>after</p></div>`, tree.Markup())
}

func TestInsertBeforeSiblingInsideComponent(t *testing.T) {
	var show vdom.Setter[bool]
	toggle := vdom.Define("Toggle", func(h vdom.Hooks, _ vdom.Props) *vdom.Element {
		on, set := vdom.UseState(h, false)
		show = set
		if !on {
			return nil
		}
		return vdom.Span("shown")
	})
	label := vdom.Define("Label", func(vdom.Hooks, vdom.Props) *vdom.Element {
		return vdom.Strong("label")
	})

	eng, tree := newTestEngine(t)
	render(t, eng, vdom.Div(vdom.Create(toggle, nil), vdom.Create(label, nil)))

	show.Set(true)
	require.NoError(t, eng.Flush())

	assert.Equal(t, `<div><span>shown</span><strong>label</strong></div>`, tree.Markup())
}
