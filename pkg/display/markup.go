package display

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/vango-dev/vfiber/pkg/vdom"
)

// MarkupOptions configures tree serialization.
type MarkupOptions struct {
	// Pretty puts every node on its own line, indented by depth.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string
}

// voidElements are elements that cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"br":    true,
	"hr":    true,
	"img":   true,
	"input": true,
	"meta":  true,
	"wbr":   true,
}

// Markup serializes the attached tree (the container's children) as HTML.
func (t *MemoryTree) Markup() string {
	var sb strings.Builder
	_ = t.WriteMarkup(&sb, MarkupOptions{})
	return sb.String()
}

// WriteMarkup streams the attached tree to w.
func (t *MemoryTree) WriteMarkup(w io.Writer, opts MarkupOptions) error {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	sw := &stickyWriter{w: w}
	for _, c := range t.root.children {
		writeNode(sw, c, opts, 0)
	}
	return sw.err
}

// Fingerprint hashes the tree markup. Equal trees have equal fingerprints.
func (t *MemoryTree) Fingerprint() uint64 {
	return xxhash.Sum64String(t.Markup())
}

// stickyWriter remembers the first write error and drops later writes.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) WriteString(str string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n, err := io.WriteString(s.w, str)
	s.err = err
	return n, err
}

func (s *stickyWriter) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n, err := s.w.Write(p)
	s.err = err
	return n, err
}

type stringWriter interface {
	io.Writer
	io.StringWriter
}

// writeNode serializes n. Callers hold the tree's read lock.
func writeNode(w stringWriter, n *MemoryNode, opts MarkupOptions, depth int) {
	if opts.Pretty {
		w.WriteString(strings.Repeat(opts.Indent, depth))
	}

	if n.text {
		w.WriteString(escapeHTML(attrString(n.attrs[vdom.TextValueKey])))
		if opts.Pretty {
			w.WriteString("\n")
		}
		return
	}

	w.WriteString("<")
	w.WriteString(n.tag)
	writeAttributes(w, n)
	w.WriteString(">")

	if voidElements[n.tag] {
		if opts.Pretty {
			w.WriteString("\n")
		}
		return
	}

	if opts.Pretty && len(n.children) > 0 {
		w.WriteString("\n")
	}
	for _, c := range n.children {
		writeNode(w, c, opts, depth+1)
	}
	if opts.Pretty && len(n.children) > 0 {
		w.WriteString(strings.Repeat(opts.Indent, depth))
	}

	w.WriteString("</")
	w.WriteString(n.tag)
	w.WriteString(">")
	if opts.Pretty {
		w.WriteString("\n")
	}
}

func writeAttributes(w stringWriter, n *MemoryNode) {
	// Sort keys for deterministic output
	keys := make([]string, 0, len(n.attrs))
	for key := range n.attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := n.attrs[key]
		name := key
		switch key {
		case "className":
			name = "class"
		case "htmlFor":
			name = "for"
		}

		// Boolean attributes
		if b, ok := value.(bool); ok {
			if b {
				w.WriteString(" ")
				w.WriteString(name)
			}
			continue
		}
		if value == nil {
			continue
		}
		fmt.Fprintf(w, ` %s="%s"`, name, escapeAttr(attrString(value)))
	}

	// Event markers
	for _, event := range n.events() {
		fmt.Fprintf(w, ` data-on-%s="%d"`, event, n.listeners[event].Cardinality())
	}
}

// attrString converts an attribute value to a string.
func attrString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for safe inclusion in attribute values.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\n':
			buf.WriteString("&#10;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}
