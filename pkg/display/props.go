package display

import (
	"sort"

	"github.com/vango-dev/vfiber/pkg/vdom"
)

// ListenerChange is one listener binding in a Delta.
type ListenerChange struct {
	Event    string
	Listener *vdom.Listener
}

// Delta is the difference between two property bags.
type Delta struct {
	RemoveListeners []ListenerChange
	Clear           []string
	Set             []vdom.Attr
	AddListeners    []ListenerChange
}

// Empty reports whether the delta changes nothing.
func (d Delta) Empty() bool {
	return len(d.RemoveListeners) == 0 && len(d.Clear) == 0 &&
		len(d.Set) == 0 && len(d.AddListeners) == 0
}

// Len returns the number of node operations the delta performs.
func (d Delta) Len() int {
	return len(d.RemoveListeners) + len(d.Clear) + len(d.Set) + len(d.AddListeners)
}

// Apply performs the delta on node in listener-remove, clear, set,
// listener-add order.
func (d Delta) Apply(node Node) {
	for _, c := range d.RemoveListeners {
		node.RemoveEventListener(c.Event, c.Listener)
	}
	for _, name := range d.Clear {
		node.ClearAttribute(name)
	}
	for _, a := range d.Set {
		node.SetAttribute(a.Key, a.Value)
	}
	for _, c := range d.AddListeners {
		node.AddEventListener(c.Event, c.Listener)
	}
}

// DiffProps computes the delta that turns prev into next. The reserved
// children key is never treated as an attribute. Keys are visited in sorted
// order so deltas are deterministic.
func DiffProps(prev, next vdom.Props) Delta {
	var d Delta

	for _, key := range sortedKeys(prev) {
		prevVal := prev[key]
		nextVal, exists := next[key]

		if vdom.IsEventProp(key) {
			if !exists || !vdom.SameValue(prevVal, nextVal) {
				if l, ok := prevVal.(*vdom.Listener); ok {
					d.RemoveListeners = append(d.RemoveListeners, ListenerChange{Event: vdom.EventName(key), Listener: l})
				}
			}
			continue
		}
		if !exists {
			d.Clear = append(d.Clear, key)
		}
	}

	for _, key := range sortedKeys(next) {
		nextVal := next[key]
		prevVal, existed := prev[key]
		if existed && vdom.SameValue(prevVal, nextVal) {
			continue
		}

		if vdom.IsEventProp(key) {
			if l, ok := nextVal.(*vdom.Listener); ok {
				d.AddListeners = append(d.AddListeners, ListenerChange{Event: vdom.EventName(key), Listener: l})
			}
			continue
		}
		d.Set = append(d.Set, vdom.Attr{Key: key, Value: nextVal})
	}

	return d
}

// ApplyProperties updates node from prev to next.
func ApplyProperties(node Node, prev, next vdom.Props) {
	DiffProps(prev, next).Apply(node)
}

func sortedKeys(p vdom.Props) []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		if key == vdom.ChildrenKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
