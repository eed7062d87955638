package vdom

// createElement creates a host element with the given tag and arguments.
// Arguments can be: nil, bool, Attr, []Attr, EventHandler, Props, *Element,
// []*Element, []any, string or a number. Attributes and handlers become
// props; everything else is a child.
func createElement(tag string, args []any) *Element {
	props := make(Props)
	var children []any

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			if v.Key != "" {
				props[v.Key] = v.Value
			}

		case []Attr:
			for _, attr := range v {
				if attr.Key != "" {
					props[attr.Key] = attr.Value
				}
			}

		case EventHandler:
			props[v.Event] = v.Handler

		case Props:
			for key, value := range v {
				props[key] = value
			}

		default:
			children = append(children, arg)
		}
	}

	return Create(tag, props, children...)
}

// El creates an element with a custom tag name.
func El(tag string, args ...any) *Element {
	return createElement(tag, args)
}

// Content sectioning elements

func Header(args ...any) *Element  { return createElement("header", args) }
func Footer(args ...any) *Element  { return createElement("footer", args) }
func Main(args ...any) *Element    { return createElement("main", args) }
func Nav(args ...any) *Element     { return createElement("nav", args) }
func Section(args ...any) *Element { return createElement("section", args) }
func Article(args ...any) *Element { return createElement("article", args) }
func H1(args ...any) *Element      { return createElement("h1", args) }
func H2(args ...any) *Element      { return createElement("h2", args) }
func H3(args ...any) *Element      { return createElement("h3", args) }

// Text content elements

func Div(args ...any) *Element  { return createElement("div", args) }
func P(args ...any) *Element    { return createElement("p", args) }
func Span(args ...any) *Element { return createElement("span", args) }
func Pre(args ...any) *Element  { return createElement("pre", args) }
func Ul(args ...any) *Element   { return createElement("ul", args) }
func Ol(args ...any) *Element   { return createElement("ol", args) }
func Li(args ...any) *Element   { return createElement("li", args) }
func Hr(args ...any) *Element   { return createElement("hr", args) }
func Br(args ...any) *Element   { return createElement("br", args) }

// Inline text semantics

func A(args ...any) *Element      { return createElement("a", args) }
func Strong(args ...any) *Element { return createElement("strong", args) }
func Em(args ...any) *Element     { return createElement("em", args) }
func Code(args ...any) *Element   { return createElement("code", args) }

// Form elements

func Form(args ...any) *Element     { return createElement("form", args) }
func Input(args ...any) *Element    { return createElement("input", args) }
func Textarea(args ...any) *Element { return createElement("textarea", args) }
func Button(args ...any) *Element   { return createElement("button", args) }
func Label(args ...any) *Element    { return createElement("label", args) }

// Table elements

func Table(args ...any) *Element { return createElement("table", args) }
func Tr(args ...any) *Element    { return createElement("tr", args) }
func Th(args ...any) *Element    { return createElement("th", args) }
func Td(args ...any) *Element    { return createElement("td", args) }
