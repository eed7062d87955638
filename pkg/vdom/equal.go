package vdom

import (
	"reflect"
	"strings"
)

// IsEventProp returns true if the key is an event listener (starts with "on").
// Case-insensitive to catch onclick, ONCLICK, onClick, OnLoad, etc.
func IsEventProp(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// EventName returns the event type bound by a listener property:
// "onClick" → "click".
func EventName(key string) string {
	if !IsEventProp(key) {
		return ""
	}
	return strings.ToLower(key[2:])
}

// SameValue reports whether a and b are the same value for diffing purposes.
// Comparable values are compared with ==; maps, slices and pointers by
// reference; funcs are never the same unless both are nil. There is no deep
// comparison.
func SameValue(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case *Listener:
		bv, ok := b.(*Listener)
		return ok && av == bv
	case nil:
		return b == nil
	}
	if b == nil {
		return false
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	}

	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return false
}

// SameDeps reports whether two effect dependency lists hold the same values
// position by position.
func SameDeps(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameValue(a[i], b[i]) {
			return false
		}
	}
	return true
}
