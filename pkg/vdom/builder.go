package vdom

import (
	"fmt"
	"strconv"
)

// Create builds an element. kind is a host tag (string), a *Component or a
// ComponentFunc. props is copied and the reserved children key is ignored.
// Host elements wrap bare listener funcs in *Listener; component elements
// receive their props unchanged, callbacks included. children are normalised by
// dropping nil and false, turning strings and numbers into text elements
// and flattening nested slices.
func Create(kind any, props Props, children ...any) *Element {
	kids := appendChildren(nil, children)

	switch k := kind.(type) {
	case string:
		return &Element{
			Kind:     KindHost,
			Tag:      k,
			Props:    hostProps(props),
			Children: kids,
		}
	case *Component:
		return newComponentElement(k, props, kids)
	case ComponentFunc:
		return newComponentElement(componentFor(k), props, kids)
	case func(Hooks, Props) *Element:
		return newComponentElement(componentFor(k), props, kids)
	default:
		panic(fmt.Sprintf("vdom: unsupported element kind %T", kind))
	}
}

func newComponentElement(c *Component, props Props, kids []*Element) *Element {
	p := copyProps(props)
	if len(kids) > 0 {
		p[ChildrenKey] = kids
	}
	return &Element{
		Kind:      KindComponent,
		Props:     p,
		Component: c,
	}
}

// Text creates a text element.
func Text(content string) *Element {
	return &Element{
		Kind:  KindText,
		Props: Props{TextValueKey: content},
	}
}

// Textf creates a formatted text element.
func Textf(format string, args ...any) *Element {
	return Text(fmt.Sprintf(format, args...))
}

// copyProps copies props, dropping the reserved children key.
func copyProps(props Props) Props {
	out := make(Props, len(props)+1)
	for key, value := range props {
		if key == ChildrenKey {
			continue
		}
		out[key] = value
	}
	return out
}

// hostProps copies props for a host element, normalising listener values.
func hostProps(props Props) Props {
	out := make(Props, len(props))
	for key, value := range props {
		if key == ChildrenKey {
			continue
		}
		if IsEventProp(key) {
			// Handlers that cannot be called are dropped.
			if l := NewListener(value); l != nil {
				out[key] = l
			}
			continue
		}
		out[key] = value
	}
	return out
}

// appendChildren normalises child arguments onto dst.
func appendChildren(dst []*Element, children []any) []*Element {
	for _, child := range children {
		dst = appendChild(dst, child)
	}
	return dst
}

func appendChild(dst []*Element, child any) []*Element {
	switch v := child.(type) {
	case nil:
		return dst
	case bool:
		// false (and true) render nothing, which allows cond && el patterns.
		return dst
	case *Element:
		if v == nil {
			return dst
		}
		return append(dst, v)
	case []*Element:
		for _, c := range v {
			if c != nil {
				dst = append(dst, c)
			}
		}
		return dst
	case []any:
		return appendChildren(dst, v)
	case []string:
		for _, s := range v {
			dst = append(dst, Text(s))
		}
		return dst
	case string:
		return append(dst, Text(v))
	case fmt.Stringer:
		return append(dst, Text(v.String()))
	}
	if s, ok := numberText(child); ok {
		return append(dst, Text(s))
	}
	panic(fmt.Sprintf("vdom: unsupported child %T", child))
}

// numberText formats integer and float children.
func numberText(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	default:
		return "", false
	}
}
