package display

import "fmt"

// OpKind is the type of a display tree mutation.
type OpKind uint8

const (
	OpCreateElement  OpKind = 0x01 // Create detached element
	OpCreateText     OpKind = 0x02 // Create detached text node
	OpSetAttr        OpKind = 0x03 // Set/update attribute
	OpClearAttr      OpKind = 0x04 // Remove attribute
	OpAddListener    OpKind = 0x05 // Bind listener
	OpRemoveListener OpKind = 0x06 // Unbind listener
	OpInsertNode     OpKind = 0x07 // Append or insert child
	OpRemoveNode     OpKind = 0x08 // Detach child
)

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpSetAttr:
		return "SetAttr"
	case OpClearAttr:
		return "ClearAttr"
	case OpAddListener:
		return "AddListener"
	case OpRemoveListener:
		return "RemoveListener"
	case OpInsertNode:
		return "InsertNode"
	case OpRemoveNode:
		return "RemoveNode"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the kind by name.
func (k OpKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText.
func (k *OpKind) UnmarshalText(text []byte) error {
	for c := OpCreateElement; c <= OpRemoveNode; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("display: unknown op kind %q", text)
}

// Op is a single recorded display tree mutation.
type Op struct {
	Kind   OpKind `json:"op"`
	Node   string `json:"node"`             // Target node ID
	Parent string `json:"parent,omitempty"` // Parent for InsertNode/RemoveNode
	Before string `json:"before,omitempty"` // Reference sibling for InsertNode
	Key    string `json:"key,omitempty"`    // Tag, attribute or event name
	Value  string `json:"value,omitempty"`  // Attribute value or text
}

// String renders the op for logs and test assertions.
func (op Op) String() string {
	switch op.Kind {
	case OpCreateElement, OpCreateText:
		return fmt.Sprintf("%s %s %q", op.Kind, op.Node, op.Key)
	case OpSetAttr:
		return fmt.Sprintf("%s %s %s=%q", op.Kind, op.Node, op.Key, op.Value)
	case OpClearAttr, OpAddListener, OpRemoveListener:
		return fmt.Sprintf("%s %s %s", op.Kind, op.Node, op.Key)
	case OpInsertNode:
		if op.Before != "" {
			return fmt.Sprintf("%s %s into %s before %s", op.Kind, op.Node, op.Parent, op.Before)
		}
		return fmt.Sprintf("%s %s into %s", op.Kind, op.Node, op.Parent)
	case OpRemoveNode:
		return fmt.Sprintf("%s %s from %s", op.Kind, op.Node, op.Parent)
	default:
		return op.Kind.String()
	}
}
