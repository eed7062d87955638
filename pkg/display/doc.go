// Package display defines the mutable display tree the fiber engine renders
// into, the attribute diff adapter, and a headless in-memory implementation.
//
// Any rendering target that implements Document and Node can host an
// engine: a terminal (package tui), a remote mirror (package inspect) or the
// MemoryTree used by tests.
//
// # Attribute Diff
//
// ApplyProperties computes the delta between two property bags and applies
// it to a node in four steps: remove old or changed listeners, clear gone
// attributes, set new or changed attributes, add new or changed listeners.
// Cleared attributes are removed from the node with ClearAttribute.
package display
