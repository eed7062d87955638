package demo

import (
	"strconv"
	"strings"

	"github.com/vango-dev/vfiber/pkg/vdom"
)

// Todo is one entry of the todo list.
type Todo struct {
	Text string
	Done bool
}

// TodoApp renders a draft input, the list of todos and a footer with the
// number of open items.
var TodoApp = vdom.Define("TodoApp", func(h vdom.Hooks, _ vdom.Props) *vdom.Element {
	todos, setTodos := vdom.UseState(h, []Todo(nil))
	draft, setDraft := vdom.UseState(h, "")

	add := func() {
		text := strings.TrimSpace(draft)
		if text == "" {
			return
		}
		setTodos.Update(func(ts []Todo) []Todo {
			return append(append([]Todo(nil), ts...), Todo{Text: text})
		})
		setDraft.Set("")
	}

	items := make([]*vdom.Element, len(todos))
	open := 0
	for i, t := range todos {
		i := i // per-iteration copy; go.mod targets go1.21 loop semantics
		if !t.Done {
			open++
		}
		items[i] = vdom.Create(TodoItem, vdom.Props{
			"index": i,
			"todo":  t,
			"onToggle": func() {
				setTodos.Update(func(ts []Todo) []Todo {
					out := append([]Todo(nil), ts...)
					out[i].Done = !out[i].Done
					return out
				})
			},
			"onRemove": func() {
				setTodos.Update(func(ts []Todo) []Todo {
					out := make([]Todo, 0, len(ts))
					out = append(out, ts[:i]...)
					return append(out, ts[i+1:]...)
				})
			},
		})
	}

	var empty *vdom.Element
	if len(todos) == 0 {
		empty = vdom.P(vdom.Class("empty"), "Nothing to do")
	}

	return vdom.Section(vdom.Class("todo"),
		vdom.H1("Todo"),
		vdom.Div(vdom.Class("entry"),
			vdom.Input(
				vdom.ID("draft"),
				vdom.Placeholder("What needs doing?"),
				vdom.Value(draft),
				vdom.OnInput(func(e *vdom.Event) {
					s, _ := e.Value.(string)
					setDraft.Set(s)
				}),
				vdom.OnKeyDown(func(e *vdom.Event) {
					if e.Value == "enter" {
						add()
					}
				}),
			),
			vdom.Button(vdom.ID("add"), vdom.Disabled(strings.TrimSpace(draft) == ""), vdom.OnClick(add), "Add"),
		),
		empty,
		vdom.Ul(vdom.ID("items"), items),
		vdom.Footer(vdom.ID("open"), open, " open"),
	)
})

// TodoItem renders one todo with toggle and remove buttons.
var TodoItem = vdom.Define("TodoItem", func(_ vdom.Hooks, props vdom.Props) *vdom.Element {
	t, _ := props.Get("todo").(Todo)
	i, _ := props.Get("index").(int)
	onToggle, _ := props.Get("onToggle").(func())
	onRemove, _ := props.Get("onRemove").(func())

	mark := "[ ]"
	class := "item"
	if t.Done {
		mark = "[x]"
		class = "item done"
	}
	return vdom.Li(vdom.Class(class), vdom.Data("index", strconv.Itoa(i)),
		vdom.Button(vdom.Class("toggle"), vdom.OnClick(onToggle), mark),
		vdom.Span(t.Text),
		vdom.Button(vdom.Class("remove"), vdom.OnClick(onRemove), "x"),
	)
})
