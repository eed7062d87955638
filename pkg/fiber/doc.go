// Package fiber implements an incremental, interruptible reconciliation
// engine.
//
// An Engine owns one display root. Render schedules an element tree; Work
// performs units of work (one fiber each) until the idle deadline runs out,
// and commits the finished work-in-progress tree in one uninterruptible
// step.
//
// # Trees
//
// Two fiber trees coexist. The current tree mirrors what is on display; the
// work-in-progress tree is being built from the latest elements. Every
// work-in-progress fiber that reuses a display node points at its
// counterpart in the current tree through its alternate link. Fibers live in
// an arena and link to each other by index. After a commit, fibers that are
// no longer reachable from the current root are released.
//
// # Hooks
//
// Components receive a vdom.Hooks scope that is valid only while they run.
// State hooks are matched by call position. A state update queues a
// transition and schedules a render rooted at the owning component, so only
// that subtree is re-evaluated. Effects run after commit when their
// dependencies change; their cleanups run before the next run or when the
// component unmounts.
//
// # Usage
//
//	tree := display.NewMemoryTree()
//	eng := fiber.New(tree, tree.Root())
//	eng.Render(vdom.Div(vdom.Class("app"), "hello"))
//	eng.Flush()
//
// An Engine is not safe for concurrent use. Hosts funnel event callbacks
// onto the goroutine that calls Work (see package scheduler).
package fiber
