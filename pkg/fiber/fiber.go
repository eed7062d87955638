package fiber

import (
	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// EffectTag is the commit action recorded on a fiber.
type EffectTag uint8

const (
	EffectNone   EffectTag = iota // Committed, nothing to do
	EffectCreate                  // Insert the fiber's display node
	EffectUpdate                  // Reuse the node and apply the property delta
	EffectDelete                  // Remove the subtree
)

// String returns the string representation of the EffectTag.
func (t EffectTag) String() string {
	switch t {
	case EffectNone:
		return "none"
	case EffectCreate:
		return "create"
	case EffectUpdate:
		return "update"
	case EffectDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// fiberID indexes the arena. The zero ID means "no fiber".
type fiberID uint32

const noFiber fiberID = 0

// rootTag names the container fiber in logs.
const rootTag = "#root"

// Fiber is one unit of work.
type Fiber struct {
	id        fiberID
	kind      vdom.Kind
	tag       string
	component *vdom.Component
	props     vdom.Props
	elements  []*vdom.Element // children to reconcile (host and text fibers)
	node      display.Node    // nil for components

	parent    fiberID
	child     fiberID
	sibling   fiberID
	alternate fiberID

	effect      EffectTag
	stateHooks  []*stateHook
	effectHooks []*effectHook
}

func (f *Fiber) name() string {
	switch f.kind {
	case vdom.KindComponent:
		return f.component.Name
	case vdom.KindText:
		return "#text"
	default:
		if f.tag == "" {
			return rootTag
		}
		return f.tag
	}
}

// newFiber creates a detached fiber for el.
func newFiber(el *vdom.Element) *Fiber {
	f := &Fiber{
		kind:  el.Kind,
		props: el.Props,
	}
	switch el.Kind {
	case vdom.KindHost:
		f.tag = el.Tag
		f.elements = el.Children
	case vdom.KindComponent:
		f.component = el.Component
	}
	return f
}

// handle is a generation-checked reference to an arena slot.
type handle struct {
	id  fiberID
	gen uint32
}

type slot struct {
	fiber *Fiber
	gen   uint32
}

// arena stores fibers. Released slots are recycled with a new generation
// so stale handles stop resolving.
type arena struct {
	slots []slot
	free  []fiberID
	live  int
}

func newArena() *arena {
	// Slot 0 is reserved for noFiber.
	return &arena{slots: make([]slot, 1, 64)}
}

func (a *arena) alloc(f *Fiber) fiberID {
	var id fiberID
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[id].fiber = f
	} else {
		a.slots = append(a.slots, slot{fiber: f})
		id = fiberID(len(a.slots) - 1)
	}
	f.id = id
	a.live++
	return id
}

func (a *arena) get(id fiberID) *Fiber {
	if id == noFiber || int(id) >= len(a.slots) {
		return nil
	}
	return a.slots[id].fiber
}

func (a *arena) release(id fiberID) {
	s := &a.slots[id]
	if s.fiber == nil {
		return
	}
	s.fiber = nil
	s.gen++
	a.free = append(a.free, id)
	a.live--
}

func (a *arena) handle(id fiberID) handle {
	return handle{id: id, gen: a.slots[id].gen}
}

func (a *arena) resolve(h handle) *Fiber {
	if h.id == noFiber || int(h.id) >= len(a.slots) {
		return nil
	}
	s := a.slots[h.id]
	if s.gen != h.gen {
		return nil
	}
	return s.fiber
}
