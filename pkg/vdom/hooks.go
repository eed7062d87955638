package vdom

// Setter updates a typed state hook. Updates queue up and are applied in
// call order on the owning component's next render.
type Setter[T any] struct {
	set func(update any)
}

// Set replaces the state with v.
func (s Setter[T]) Set(v T) {
	s.set(func(any) any { return v })
}

// Update applies fn to the latest queued state.
func (s Setter[T]) Update(fn func(T) T) {
	s.set(func(old any) any {
		prev, _ := old.(T)
		return fn(prev)
	})
}

// UseState is the typed form of Hooks.State.
//
//	count, setCount := vdom.UseState(h, 0)
//	setCount.Update(func(n int) int { return n + 1 })
func UseState[T any](h Hooks, initial T) (T, Setter[T]) {
	v, set := h.State(initial)
	state, _ := v.(T)
	return state, Setter[T]{set: set}
}

// UseEffect registers an effect. Pass nil deps to run after every commit,
// Once() to run after the first commit only, or Deps(values...) to run when
// any value changes.
func UseEffect(h Hooks, effect EffectFunc, deps []any) {
	h.Effect(effect, deps)
}

// Deps builds an effect dependency list. Deps() is equivalent to Once().
func Deps(values ...any) []any {
	if values == nil {
		return []any{}
	}
	return values
}

// Once is the empty dependency list: the effect runs after its first commit
// and is cleaned up when the component unmounts.
func Once() []any {
	return []any{}
}
