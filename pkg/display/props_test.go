package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vango-dev/vfiber/pkg/vdom"
)

// recordingNode logs Node calls in order.
type recordingNode struct {
	calls []string
}

func (r *recordingNode) SetAttribute(name string, value any) {
	r.calls = append(r.calls, "set "+name+"="+attrString(value))
}
func (r *recordingNode) ClearAttribute(name string) { r.calls = append(r.calls, "clear "+name) }
func (r *recordingNode) AddEventListener(event string, l *vdom.Listener) {
	r.calls = append(r.calls, "listen "+event)
}
func (r *recordingNode) RemoveEventListener(event string, l *vdom.Listener) {
	r.calls = append(r.calls, "unlisten "+event)
}
func (r *recordingNode) AppendChild(Node)        {}
func (r *recordingNode) InsertBefore(Node, Node) {}
func (r *recordingNode) RemoveChild(Node)        {}

func TestApplyPropertiesOrder(t *testing.T) {
	oldClick := vdom.NewListener(func() {})
	newClick := vdom.NewListener(func() {})
	keep := vdom.NewListener(func() {})

	prev := vdom.Props{
		"className": "a",
		"title":     "gone",
		"id":        "same",
		"onClick":   oldClick,
		"onInput":   keep,
	}
	next := vdom.Props{
		"className": "b",
		"id":        "same",
		"lang":      "en",
		"onClick":   newClick,
		"onInput":   keep,
		"onFocus":   vdom.NewListener(func() {}),
	}

	node := &recordingNode{}
	ApplyProperties(node, prev, next)

	assert.Equal(t, []string{
		"unlisten click",
		"clear title",
		"set className=b",
		"set lang=en",
		"listen click",
		"listen focus",
	}, node.calls)
}

func TestDiffProps(t *testing.T) {
	l := vdom.NewListener(func() {})
	shared := []string{"x"}

	tests := []struct {
		name  string
		prev  vdom.Props
		next  vdom.Props
		empty bool
		len   int
	}{
		{"both empty", nil, nil, true, 0},
		{"identical scalars", vdom.Props{"a": 1, "b": "s"}, vdom.Props{"a": 1, "b": "s"}, true, 0},
		{"same listener", vdom.Props{"onclick": l}, vdom.Props{"onclick": l}, true, 0},
		{"same slice", vdom.Props{"v": shared}, vdom.Props{"v": shared}, true, 0},
		{"fresh slice", vdom.Props{"v": []string{"x"}}, vdom.Props{"v": []string{"x"}}, false, 1},
		{"children ignored", vdom.Props{vdom.ChildrenKey: 1}, vdom.Props{vdom.ChildrenKey: 2}, true, 0},
		{"from empty", nil, vdom.Props{"a": 1, "onclick": l}, false, 2},
		{"to empty", vdom.Props{"a": 1, "onclick": l}, nil, false, 2},
		{"type change", vdom.Props{"a": 1}, vdom.Props{"a": "1"}, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DiffProps(tt.prev, tt.next)
			if d.Empty() != tt.empty {
				t.Errorf("Empty() = %v, want %v (%+v)", d.Empty(), tt.empty, d)
			}
			if d.Len() != tt.len {
				t.Errorf("Len() = %d, want %d", d.Len(), tt.len)
			}
		})
	}
}

func TestDiffPropsNonListenerEventValue(t *testing.T) {
	// A listener prop whose value is not a *Listener binds nothing.
	d := DiffProps(nil, vdom.Props{"onclick": "javascript"})
	assert.True(t, d.Empty())
}

func TestDiffPropsEventNames(t *testing.T) {
	d := DiffProps(nil, vdom.Props{"onKeyDown": vdom.NewListener(func() {})})
	if assert.Len(t, d.AddListeners, 1) {
		assert.Equal(t, "keydown", d.AddListeners[0].Event)
	}
}
