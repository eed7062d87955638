package vdom

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"unsafe"
)

// Kind is the element type discriminator.
type Kind uint8

const (
	KindHost      Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindComponent             // Component function
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindHost:
		return "Host"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// ChildrenKey is the reserved property name for children. Host and text
// elements keep children in Element.Children and never carry this key;
// component elements receive their children under it.
const ChildrenKey = "children"

// TextValueKey is the property holding a text element's content.
const TextValueKey = "value"

// Element is an immutable render description.
type Element struct {
	Kind      Kind       // Element type
	Tag       string     // Host tag name (e.g., "div")
	Props     Props      // Attributes and event listeners
	Children  []*Element // Host children
	Component *Component // For KindComponent
}

// Value returns the content of a text element.
func (e *Element) Value() string {
	if e == nil || e.Kind != KindText {
		return ""
	}
	s, _ := e.Props[TextValueKey].(string)
	return s
}

// Name returns a short description used in logs and errors.
func (e *Element) Name() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KindHost:
		return e.Tag
	case KindText:
		return "#text"
	case KindComponent:
		return e.Component.Name
	default:
		return "?"
	}
}

// Props holds attributes and event listeners.
type Props map[string]any

// Get returns the value stored under key.
func (p Props) Get(key string) any {
	return p[key]
}

// String returns the string stored under key, or "".
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Children returns the children delivered to a component.
func (p Props) Children() []*Element {
	c, _ := p[ChildrenKey].([]*Element)
	return c
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event listener property.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // func(), func(*Event) or *Listener
}

// Event is delivered to listeners by the display tree.
type Event struct {
	Type   string // "click", "keydown", ...
	Target any    // display node the event was dispatched on
	Value  any    // event payload (key name, input value, ...)
}

// Listener is a bound event handler. Listener identity is pointer identity:
// a listener created while building one render is different from the one
// created by the next, exactly like an inline closure.
type Listener struct {
	Handle func(e *Event)
}

// NewListener normalises a handler into a *Listener. It accepts func(),
// func(*Event) and *Listener; any other value yields nil.
func NewListener(handler any) *Listener {
	switch h := handler.(type) {
	case *Listener:
		return h
	case func(*Event):
		if h == nil {
			return nil
		}
		return &Listener{Handle: h}
	case func():
		if h == nil {
			return nil
		}
		return &Listener{Handle: func(*Event) { h() }}
	default:
		return nil
	}
}

// Call invokes the listener.
func (l *Listener) Call(e *Event) {
	if l == nil || l.Handle == nil {
		return
	}
	l.Handle(e)
}

// Hooks is the per-evaluation hook scope handed to a component. It is only
// valid until the component returns.
type Hooks interface {
	// State returns the current state of the next state hook and an updater.
	// The updater accepts either a new value or a func(any) any transition.
	State(initial any) (any, func(update any))

	// Effect registers an effect for this render. A nil deps slice means the
	// effect runs after every commit; an empty non-nil slice means once.
	Effect(callback EffectFunc, deps []any)
}

// Cleanup is returned by an effect to undo its work.
type Cleanup func()

// EffectFunc is the body of an effect hook.
type EffectFunc func() Cleanup

// ComponentFunc renders a component.
type ComponentFunc func(h Hooks, props Props) *Element

// Component is a named render function. Components are compared by type
// identity (see Type) when diffing.
type Component struct {
	Name   string
	Render ComponentFunc

	// fn is the func value a bare ComponentFunc was wrapped from.
	fn unsafe.Pointer
}

// Define creates a component. The returned pointer is the component's type:
// every element created from it is the same component.
func Define(name string, render ComponentFunc) *Component {
	return &Component{Name: name, Render: render}
}

// Type returns the identity used to decide whether two component elements
// describe the same component.
//
// A component made with Define is its own type. A bare ComponentFunc is typed
// by its func value: a top-level function, or one closure stored and reused,
// is the same type on every render. Function literals that capture variables
// allocate a new func value each time they are evaluated, so each evaluation
// is a new type and remounts. Use Define for a stable identity.
func (c *Component) Type() any {
	if c == nil {
		return nil
	}
	if c.fn != nil {
		return c.fn
	}
	return c
}

// funcNames caches component names per function code pointer.
var funcNames sync.Map // map[uintptr]string

// componentFor wraps fn in a component typed by fn's func value.
func componentFor(fn ComponentFunc) *Component {
	return &Component{
		Name:   nameOf(fn),
		Render: fn,
		fn:     *(*unsafe.Pointer)(unsafe.Pointer(&fn)),
	}
}

func nameOf(fn ComponentFunc) string {
	pc := reflect.ValueOf(fn).Pointer()
	if name, ok := funcNames.Load(pc); ok {
		return name.(string)
	}
	name, _ := funcNames.LoadOrStore(pc, funcName(pc))
	return name.(string)
}

func funcName(pc uintptr) string {
	f := runtime.FuncForPC(pc)
	if f == nil {
		return fmt.Sprintf("component@%x", pc)
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	// Drop the package qualifier: "demo.Counter" becomes "Counter".
	if i := strings.Index(name, "."); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	return name
}
