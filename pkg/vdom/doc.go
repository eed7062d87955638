// Package vdom provides the element model for vfiber.
//
// Elements are immutable descriptions of what should be on screen. The
// fiber engine (package fiber) turns them into a mutable fiber tree and
// applies the differences to a display tree.
//
// # Core Types
//
// Element is a tagged variant discriminated by Kind: a host node
// (KindHost, e.g. "div"), a text node (KindText) or a component
// (KindComponent). Props holds attributes and event listeners. Attr and
// EventHandler are used to build Props with the element helpers.
//
// # Element API
//
// Elements are created with Create or with the variadic tag helpers:
//
//	Div(Class("card"), ID("main"),
//	    H1("Title"),
//	    P(Text("Content")),
//	    OnClick(handler),
//	)
//
// Children are normalised: nil and false are dropped, strings and numbers
// become text elements and nested slices are flattened.
//
// # Components
//
// A component is a function of its hooks scope and props returning at most
// one element:
//
//	var Counter = Define("Counter", func(h Hooks, p Props) *Element {
//	    count, setCount := UseState(h, 0)
//	    return Button(OnClick(func() { setCount.Update(func(n int) int { return n + 1 }) }),
//	        Textf("%d", count))
//	})
//
// Hooks are matched by call position, so a component must call the same
// hooks in the same order on every render.
package vdom
