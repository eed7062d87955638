package fiber

import (
	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// beginWork evaluates f and reconciles its children.
func (e *Engine) beginWork(f *Fiber) {
	switch f.kind {
	case vdom.KindComponent:
		e.updateComponent(f)
	case vdom.KindHost, vdom.KindText:
		e.updateHost(f)
	}
}

func (e *Engine) updateComponent(f *Fiber) {
	s := &scope{
		engine: e,
		fiber:  f,
		alt:    e.arena.get(f.alternate),
		active: true,
	}
	f.stateHooks = nil
	f.effectHooks = nil

	var child *vdom.Element
	func() {
		defer func() { s.active = false }()
		if f.component.Render != nil {
			child = f.component.Render(s, f.props)
		}
	}()

	if e.validateHooks {
		s.validate()
	}

	var elements []*vdom.Element
	if child != nil {
		elements = []*vdom.Element{child}
	}
	e.reconcileChildren(f, elements)
}

func (e *Engine) updateHost(f *Fiber) {
	if f.node == nil {
		f.node = e.createNode(f)
	}
	e.reconcileChildren(f, f.elements)
}

// createNode creates a detached display node with f's properties applied.
func (e *Engine) createNode(f *Fiber) display.Node {
	var node display.Node
	if f.kind == vdom.KindText {
		node = e.doc.CreateTextNode("")
	} else {
		node = e.doc.CreateElement(f.tag)
	}
	display.ApplyProperties(node, nil, f.props)
	return node
}

// reconcileChildren diffs elements against the children of wip's alternate
// by position. A fiber of the same type at the same index is updated in
// place; otherwise the old fiber is deleted and a new one created.
func (e *Engine) reconcileChildren(wip *Fiber, elements []*vdom.Element) {
	var old *Fiber
	if alt := e.arena.get(wip.alternate); alt != nil {
		old = e.arena.get(alt.child)
	}
	wip.child = noFiber

	var prev *Fiber
	for i := 0; i < len(elements) || old != nil; i++ {
		var el *vdom.Element
		if i < len(elements) {
			el = elements[i]
		}

		same := el != nil && old != nil && sameType(el, old)

		var nf *Fiber
		switch {
		case same:
			nf = &Fiber{
				kind:      old.kind,
				tag:       old.tag,
				component: el.Component,
				props:     el.Props,
				elements:  el.Children,
				node:      old.node,
				alternate: old.id,
				effect:    EffectUpdate,
			}
		case el != nil:
			nf = newFiber(el)
			nf.effect = EffectCreate
		}

		if old != nil && !same {
			old.effect = EffectDelete
			e.deletions = append(e.deletions, old.id)
		}
		if old != nil {
			old = e.arena.get(old.sibling)
		}

		if nf == nil {
			continue
		}
		nf.parent = wip.id
		id := e.arena.alloc(nf)
		if prev == nil {
			wip.child = id
		} else {
			prev.sibling = id
		}
		prev = nf
	}
}

// sameType reports whether el can reuse old's fiber: equal kinds and, for
// hosts, equal tags; for components, the same component type.
func sameType(el *vdom.Element, old *Fiber) bool {
	if el.Kind != old.kind {
		return false
	}
	switch el.Kind {
	case vdom.KindHost:
		return el.Tag == old.tag
	case vdom.KindComponent:
		return el.Component.Type() == old.component.Type()
	default:
		return true
	}
}
