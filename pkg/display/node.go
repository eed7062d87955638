package display

import "github.com/vango-dev/vfiber/pkg/vdom"

// Node is a mutable display tree node.
type Node interface {
	// SetAttribute sets a named attribute.
	SetAttribute(name string, value any)

	// ClearAttribute removes a named attribute.
	ClearAttribute(name string)

	// AddEventListener binds l to the event type.
	AddEventListener(event string, l *vdom.Listener)

	// RemoveEventListener unbinds l from the event type.
	RemoveEventListener(event string, l *vdom.Listener)

	// AppendChild adds child as the last child.
	AppendChild(child Node)

	// InsertBefore adds child before ref. A nil ref appends.
	InsertBefore(child, ref Node)

	// RemoveChild detaches child.
	RemoveChild(child Node)
}

// Document creates display nodes.
type Document interface {
	// CreateElement creates a detached element node.
	CreateElement(tag string) Node

	// CreateTextNode creates a detached text node.
	CreateTextNode(text string) Node
}
