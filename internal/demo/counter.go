package demo

import (
	"fmt"

	"github.com/vango-dev/vfiber/pkg/vdom"
)

// CounterApp renders two independent counters and a log of the last
// change reported by their effects.
var CounterApp = vdom.Define("CounterApp", func(h vdom.Hooks, _ vdom.Props) *vdom.Element {
	last, setLast := vdom.UseState(h, "")
	report := func(msg string) { setLast.Set(msg) }

	return vdom.Div(vdom.Class("counters"),
		vdom.H1("Counters"),
		vdom.Create(Counter, vdom.Props{"id": "a", "label": "Apples", "step": 1, "onChange": report}),
		vdom.Create(Counter, vdom.Props{"id": "b", "label": "Boxes", "step": 5, "onChange": report}),
		vdom.P(vdom.ID("last"), vdom.Class("log"), last),
	)
})

// Counter renders a labelled count with decrement and increment buttons.
// Props: id, label, step (int) and an optional onChange func(string) that
// is called from an effect whenever the count changes after mount.
var Counter = vdom.Define("Counter", func(h vdom.Hooks, props vdom.Props) *vdom.Element {
	id := props.String("id")
	step, _ := props.Get("step").(int)
	if step == 0 {
		step = 1
	}
	count, set := vdom.UseState(h, 0)
	onChange, _ := props.Get("onChange").(func(string))

	vdom.UseEffect(h, func() vdom.Cleanup {
		if count != 0 && onChange != nil {
			onChange(fmt.Sprintf("%s = %d", props.String("label"), count))
		}
		return nil
	}, vdom.Deps(count))

	return vdom.Div(vdom.Class("counter"),
		vdom.Span(vdom.Class("label"), props.String("label")),
		vdom.Button(vdom.ID(id+"-dec"), vdom.OnClick(func() {
			set.Update(func(n int) int { return n - step })
		}), "-"),
		vdom.Strong(vdom.ID(id+"-count"), count),
		vdom.Button(vdom.ID(id+"-inc"), vdom.OnClick(func() {
			set.Update(func(n int) int { return n + step })
		}), "+"),
	)
})
