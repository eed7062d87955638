package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the className attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("className", strings.Join(classes, " ")) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// Visibility attributes

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// TitleAttr sets the title attribute (named to avoid conflict with elements).
func TitleAttr(title string) Attr { return attr("title", title) }

// Form attributes

// Value sets the value attribute.
func Value(v any) Attr { return attr("value", v) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Checked sets the checked attribute.
func Checked(checked bool) Attr { return attr("checked", checked) }

// Terminal presentation attributes, understood by the tui host.

// Color sets the foreground color (ANSI number or hex).
func Color(c string) Attr { return attr("color", c) }

// Bold renders the element's text in bold.
func Bold() Attr { return attr("bold", true) }

// Key sets a debugging key. Children are still diffed by position; the key
// is an ordinary attribute and does not influence node identity.
func Key(k string) Attr { return attr("key", k) }

// Prop sets an arbitrary property.
func Prop(key string, value any) Attr { return attr(key, value) }
