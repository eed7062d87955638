package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/vfiber/pkg/display"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	focusStyle = lipgloss.NewStyle().
			Reverse(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// blockTags start and end a line.
var blockTags = map[string]bool{
	"div": true, "section": true, "article": true, "main": true, "header": true,
	"footer": true, "nav": true, "p": true, "ul": true, "ol": true, "li": true,
	"h1": true, "h2": true, "h3": true, "pre": true, "form": true, "table": true,
	"tr": true, "hr": true,
}

// painter lays a display tree out as terminal lines.
type painter struct {
	lines []string
	cur   strings.Builder

	focus     *display.MemoryNode
	draftNode string
	draft     string
}

func (p *painter) flush() {
	if p.cur.Len() > 0 {
		p.lines = append(p.lines, p.cur.String())
		p.cur.Reset()
	}
}

// inline appends s to the current line, separated by a space.
func (p *painter) inline(s string) {
	if s == "" {
		return
	}
	if p.cur.Len() > 0 {
		p.cur.WriteByte(' ')
	}
	p.cur.WriteString(s)
}

func (p *painter) node(n *display.MemoryNode) {
	if n.IsText() {
		p.inline(strings.TrimSpace(n.Text()))
		return
	}
	if _, hidden := n.Attr("hidden"); hidden {
		return
	}

	switch n.Tag() {
	case "h1", "h2", "h3":
		p.flush()
		p.inline(p.styled(n, headingStyle, n.TextContent()))
		p.flush()
		return

	case "button":
		label := "[" + n.TextContent() + "]"
		if v, _ := n.Attr("disabled"); v == true {
			p.inline(placeholderStyle.Render(label))
			return
		}
		p.inline(p.styled(n, buttonStyle, label))
		return

	case "input", "textarea":
		p.inline(p.styled(n, inputStyle, p.field(n)))
		return

	case "br":
		p.flush()
		return

	case "hr":
		p.flush()
		p.lines = append(p.lines, strings.Repeat("─", 20))
		return
	}

	block := blockTags[n.Tag()]
	if block {
		p.flush()
	}
	if n.Tag() == "li" {
		p.cur.WriteString("• ")
	}
	for _, c := range n.Children() {
		p.node(c)
	}
	if block {
		p.flush()
	}
}

// field renders an input with its current text or placeholder.
func (p *painter) field(n *display.MemoryNode) string {
	var text string
	if p.draftNode == n.ID() {
		text = p.draft
	} else if v, ok := n.Attr("value"); ok && v != nil {
		text = fmt.Sprint(v)
	}
	if text == "" && n != p.focus {
		ph, _ := n.Attr("placeholder")
		if s, ok := ph.(string); ok && s != "" {
			return placeholderStyle.Render("[" + s + "]")
		}
	}
	if n == p.focus {
		text += "_"
	}
	return "[" + text + "]"
}

func (p *painter) styled(n *display.MemoryNode, style lipgloss.Style, s string) string {
	if n == p.focus {
		return focusStyle.Render(s)
	}
	return style.Render(s)
}
