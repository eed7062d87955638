package fiber

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// commitRoot applies the finished work-in-progress tree. It runs to
// completion: deletions, then node placement and property updates, then
// effects, then promotion of the new tree.
func (e *Engine) commitRoot() {
	start := time.Now()
	_, span := e.tracer.Start(context.Background(), "vfiber.commit")
	defer func() {
		if p := recover(); p != nil {
			span.SetStatus(codes.Error, fmt.Sprint(p))
			span.End()
			panic(p)
		}
		span.End()
	}()

	e.busy = true
	defer func() { e.busy = false }()

	root := e.arena.get(e.wipRoot)
	r := CommitReport{
		Seq:      e.seq + 1,
		Root:     root.name(),
		Partial:  e.partial,
		Deleted:  len(e.deletions),
		Units:    e.units,
		Restarts: e.restarts,
	}

	for _, id := range e.deletions {
		e.commitDeletion(e.arena.get(id), &r)
	}
	e.commitMutations(root, &r)
	e.commitEffects(root, &r)
	e.promote(root)

	e.seq++
	e.units, e.restarts = 0, 0
	r.LiveFibers = e.arena.live
	r.Duration = time.Since(start)
	e.last = r

	e.metrics.recordCommit(r, r.Duration)
	span.SetAttributes(
		attribute.String("vfiber.root", r.Root),
		attribute.Bool("vfiber.partial", r.Partial),
		attribute.Int("vfiber.created", r.Created),
		attribute.Int("vfiber.updated", r.Updated),
		attribute.Int("vfiber.deleted", r.Deleted),
		attribute.Int("vfiber.effects_run", r.EffectsRun),
	)
	span.SetStatus(codes.Ok, "")
	e.logger.Debug("commit",
		"seq", r.Seq,
		"root", r.Root,
		"created", r.Created,
		"updated", r.Updated,
		"changed", r.Changed,
		"deleted", r.Deleted,
		"effects", r.EffectsRun,
		"duration", r.Duration,
	)
	for _, fn := range e.observers {
		fn(r)
	}

	e.busy = false
	e.flushDeferred()
}

// commitDeletion runs the unmount cleanups of d's subtree and detaches its
// outermost display nodes.
func (e *Engine) commitDeletion(d *Fiber, r *CommitReport) {
	e.walk(d, func(f *Fiber) bool {
		for _, h := range f.effectHooks {
			if h.cleanup != nil {
				h.cleanup()
				h.cleanup = nil
				r.Cleanups++
			}
		}
		for _, h := range f.stateHooks {
			h.cell.unmounted = true
			h.cell.pending = nil
		}
		return true
	})

	parent := e.hostParent(d)
	e.walk(d, func(f *Fiber) bool {
		if f.node == nil {
			return true
		}
		parent.RemoveChild(f.node)
		r.Removed++
		return false
	})
}

// commitMutations places created nodes and updates reused ones, in
// pre-order, below root.
func (e *Engine) commitMutations(root *Fiber, r *CommitReport) {
	e.walk(root, func(f *Fiber) bool {
		if f == root {
			return true
		}
		switch f.effect {
		case EffectCreate:
			r.Created++
			if f.node != nil {
				e.hostParent(f).InsertBefore(f.node, e.hostSibling(f))
				r.Inserted++
			}
		case EffectUpdate:
			r.Updated++
			if f.node != nil {
				alt := e.arena.get(f.alternate)
				if d := display.DiffProps(alt.props, f.props); !d.Empty() {
					d.Apply(f.node)
					r.Changed++
				}
			}
		}
		return true
	})
}

// commitEffects runs, in pre-order, every cleanup whose effect is about to
// re-run, then every effect that must run. Effects whose dependencies did
// not change keep their cleanup.
func (e *Engine) commitEffects(root *Fiber, r *CommitReport) {
	e.walk(root, func(f *Fiber) bool {
		alt := e.arena.get(f.alternate)
		if f.kind != vdom.KindComponent || alt == nil {
			return true
		}
		for i, old := range alt.effectHooks {
			var h *effectHook
			if i < len(f.effectHooks) {
				h = f.effectHooks[i]
			}
			if h != nil && !h.changedFrom(old) {
				h.cleanup = old.cleanup
				continue
			}
			if old.cleanup != nil {
				old.cleanup()
				old.cleanup = nil
				r.Cleanups++
			}
		}
		return true
	})

	e.walk(root, func(f *Fiber) bool {
		if f.kind != vdom.KindComponent {
			return true
		}
		alt := e.arena.get(f.alternate)
		for i, h := range f.effectHooks {
			var old *effectHook
			if alt != nil && i < len(alt.effectHooks) {
				old = alt.effectHooks[i]
			}
			if !h.changedFrom(old) || h.callback == nil {
				continue
			}
			h.cleanup = h.callback()
			r.EffectsRun++
		}
		return true
	})
}

// promote makes the committed tree current. A partial root replaces its
// alternate in the parent's child list.
func (e *Engine) promote(root *Fiber) {
	if e.partial {
		owner := e.arena.get(root.alternate)
		parent := e.arena.get(owner.parent)
		if parent.child == owner.id {
			parent.child = root.id
		} else {
			for s := e.arena.get(parent.child); s != nil; s = e.arena.get(s.sibling) {
				if s.sibling == owner.id {
					s.sibling = root.id
					break
				}
			}
		}
	} else {
		e.currentRoot = root.id
	}

	e.walk(root, func(f *Fiber) bool {
		for _, h := range f.stateHooks {
			h.cell.owner = e.arena.handle(f.id)
			h.cell.pending = h.cell.pending[h.drained:]
			h.drained = 0
		}
		return true
	})

	e.wipRoot = noFiber
	e.nextUnit = noFiber
	e.deletions = nil
	e.partial = false
	e.gc()
}

// gc clears commit bookkeeping on the current tree and releases every
// fiber that is not part of it.
func (e *Engine) gc() {
	marked := make([]bool, len(e.arena.slots))
	if root := e.arena.get(e.currentRoot); root != nil {
		e.walk(root, func(f *Fiber) bool {
			marked[f.id] = true
			f.alternate = noFiber
			f.effect = EffectNone
			return true
		})
	}
	for id := 1; id < len(e.arena.slots); id++ {
		if !marked[id] {
			e.arena.release(fiberID(id))
		}
	}
}

// walk visits root's subtree in pre-order without recursion. visit returns
// whether to descend into the fiber's children. Siblings of root are not
// visited.
func (e *Engine) walk(root *Fiber, visit func(f *Fiber) bool) {
	f := root
	for f != nil {
		if visit(f) && f.child != noFiber {
			f = e.arena.get(f.child)
			continue
		}
		for f != nil && f != root && f.sibling == noFiber {
			f = e.arena.get(f.parent)
		}
		if f == nil || f == root {
			return
		}
		f = e.arena.get(f.sibling)
	}
}

// hostParent returns the display node of f's nearest ancestor that has one.
func (e *Engine) hostParent(f *Fiber) display.Node {
	for p := e.arena.get(f.parent); p != nil; p = e.arena.get(p.parent) {
		if p.node != nil {
			return p.node
		}
	}
	return e.container
}

// hostSibling returns the display node that f's node must be inserted
// before: the first following node, in display order, that is already
// placed. It returns nil when f's node goes last.
func (e *Engine) hostSibling(f *Fiber) display.Node {
	cur := f
siblings:
	for {
		for cur.sibling == noFiber {
			p := e.arena.get(cur.parent)
			if p == nil || p.node != nil {
				return nil
			}
			cur = p
		}
		cur = e.arena.get(cur.sibling)
		for cur.kind == vdom.KindComponent {
			if cur.effect == EffectCreate || cur.child == noFiber {
				continue siblings
			}
			cur = e.arena.get(cur.child)
		}
		if cur.effect != EffectCreate {
			return cur.node
		}
	}
}
