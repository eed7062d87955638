package fiber

import (
	"fmt"

	"github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// stateCell is shared by every render of one logical state hook. It holds
// the transitions queued since the last commit and the committed fiber that
// owns the hook.
type stateCell struct {
	pending   []func(any) any
	owner     handle
	component string
	unmounted bool
}

type stateHook struct {
	state any
	cell  *stateCell

	// drained is the number of queued transitions folded into state. They
	// are removed from the cell when this render commits.
	drained int
}

type effectHook struct {
	callback vdom.EffectFunc
	deps     []any
	cleanup  vdom.Cleanup
}

// changedFrom reports whether h must run given the hook it replaces.
func (h *effectHook) changedFrom(old *effectHook) bool {
	if old == nil || h.deps == nil || old.deps == nil {
		return true
	}
	return !vdom.SameDeps(old.deps, h.deps)
}

// scope is the hook scope of one component evaluation.
type scope struct {
	engine  *Engine
	fiber   *Fiber
	alt     *Fiber
	state   int
	effects int
	active  bool
}

var _ vdom.Hooks = (*scope)(nil)

func (s *scope) check() {
	if !s.active {
		panic(errors.New("E001").WithComponent(s.fiber.name()))
	}
}

// State implements vdom.Hooks.
func (s *scope) State(initial any) (any, func(update any)) {
	s.check()

	h := &stateHook{}
	if s.alt != nil && s.state < len(s.alt.stateHooks) {
		old := s.alt.stateHooks[s.state]
		h.state, h.cell = old.state, old.cell
	} else {
		h.state = initial
		h.cell = &stateCell{component: s.fiber.name()}
	}
	for _, fn := range h.cell.pending {
		h.state = fn(h.state)
	}
	h.drained = len(h.cell.pending)

	s.state++
	s.fiber.stateHooks = append(s.fiber.stateHooks, h)

	e, cell := s.engine, h.cell
	return h.state, func(update any) {
		e.enqueue(cell, transition(update))
	}
}

// Effect implements vdom.Hooks.
func (s *scope) Effect(callback vdom.EffectFunc, deps []any) {
	s.check()
	s.effects++
	s.fiber.effectHooks = append(s.fiber.effectHooks, &effectHook{
		callback: callback,
		deps:     deps,
	})
}

// validate panics with ErrHookOrder when the hook counts differ from the
// previous render.
func (s *scope) validate() {
	if s.alt == nil {
		return
	}
	if s.state != len(s.alt.stateHooks) || s.effects != len(s.alt.effectHooks) {
		panic(errors.New("E002").
			WithComponent(s.fiber.name()).
			WithDetail(fmt.Sprintf("state hooks %d -> %d, effect hooks %d -> %d",
				len(s.alt.stateHooks), s.state, len(s.alt.effectHooks), s.effects)))
	}
}

// transition turns an update into a state transition. func(any) any values
// are transitions; anything else replaces the state.
func transition(update any) func(any) any {
	if fn, ok := update.(func(any) any); ok && fn != nil {
		return fn
	}
	return func(any) any { return update }
}
