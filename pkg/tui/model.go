// Package tui hosts an engine in the terminal with bubbletea.
//
// Each bubbletea frame message is an idle window: the model performs
// engine work until the frame budget runs out. Key presses are delivered
// to the focused display node as events.
//
// # Thread Safety
//
// The engine and display tree are only touched from the bubbletea event
// loop. Do not access them from other goroutines while the program runs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/idle"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// =============================================================================
// Config
// =============================================================================

// Config configures the terminal host.
type Config struct {
	// Engine renders into Tree.
	Engine *fiber.Engine

	// Tree is the display tree shown on screen.
	Tree *display.MemoryTree

	// Root is rendered when the program starts.
	Root *vdom.Element

	// Interval is the time between frames (default: 16ms).
	Interval time.Duration

	// Budget is the idle window of each frame (default: Interval/2).
	Budget time.Duration

	// Title is shown above the tree.
	Title string
}

// =============================================================================
// Messages
// =============================================================================

// frameMsg opens an idle window.
type frameMsg time.Time

// =============================================================================
// Model
// =============================================================================

// Model is the bubbletea model of the terminal host.
type Model struct {
	config Config

	// focus indexes the focusable nodes in tree order.
	focus int

	// draft is the text being typed into the node with ID draftNode.
	draft     string
	draftNode string

	quitting bool
	width    int
}

// New creates a model and schedules the root element.
func New(cfg Config) Model {
	if cfg.Interval <= 0 {
		cfg.Interval = 16 * time.Millisecond
	}
	if cfg.Budget <= 0 || cfg.Budget > cfg.Interval {
		cfg.Budget = cfg.Interval / 2
	}
	if cfg.Root != nil {
		cfg.Engine.Render(cfg.Root)
	}
	return Model{config: cfg}
}

// Run starts a bubbletea program for the model and blocks until it exits.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(New(cfg), opts...).Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.frame()
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(m.config.Interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case frameMsg:
		m.config.Engine.Work(idle.Until(time.Now().Add(m.config.Budget)))
		return m, m.frame()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.moveFocus(1)
		return m, nil

	case "shift+tab":
		m.moveFocus(-1)
		return m, nil
	}

	target := m.focused()
	if target == nil {
		return m, nil
	}
	tree := m.config.Tree

	switch {
	case msg.Type == tea.KeyEnter:
		tree.Dispatch(target, "keydown", "enter")
		tree.Dispatch(target, "click", nil)
		m.draftNode = ""

	case msg.Type == tea.KeyBackspace && target.Listeners("input") > 0:
		text := []rune(m.text(target))
		if len(text) > 0 {
			m.edit(target, string(text[:len(text)-1]))
		}

	case (msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace) && target.Listeners("input") > 0:
		m.edit(target, m.text(target)+string(msg.Runes))

	case msg.Type == tea.KeySpace:
		tree.Dispatch(target, "click", nil)

	default:
		tree.Dispatch(target, "keydown", msg.String())
	}
	return m, nil
}

// edit replaces the text of an input node and notifies its listeners.
func (m *Model) edit(n *display.MemoryNode, text string) {
	m.draft = text
	m.draftNode = n.ID()
	m.config.Tree.Dispatch(n, "input", text)
}

// text returns the current text of an input node, including keystrokes
// whose render is still pending.
func (m *Model) text(n *display.MemoryNode) string {
	if m.draftNode == n.ID() {
		return m.draft
	}
	v, ok := n.Attr("value")
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (m *Model) moveFocus(delta int) {
	n := len(focusable(m.config.Tree))
	if n == 0 {
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
	m.draftNode = ""
}

func (m Model) focused() *display.MemoryNode {
	nodes := focusable(m.config.Tree)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[min(m.focus, len(nodes)-1)]
}

// Focused returns the focused display node, or nil.
func (m Model) Focused() *display.MemoryNode {
	return m.focused()
}

// focusable returns the nodes with interactive listeners in tree order.
func focusable(t *display.MemoryTree) []*display.MemoryNode {
	return t.Find(func(n *display.MemoryNode) bool {
		return n.Listeners("click") > 0 || n.Listeners("keydown") > 0 || n.Listeners("input") > 0
	})
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	var b strings.Builder
	if m.config.Title != "" {
		b.WriteString(titleStyle.Render(m.config.Title))
		b.WriteString("\n\n")
	}

	p := painter{focus: m.focused(), draftNode: m.draftNode, draft: m.draft}
	for _, c := range m.config.Tree.Root().Children() {
		p.node(c)
	}
	p.flush()
	b.WriteString(strings.Join(p.lines, "\n"))
	b.WriteString("\n\n")

	b.WriteString(statusStyle.Render(m.config.Engine.LastCommit().String()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab focus • enter activate • esc quit"))
	b.WriteString("\n")
	return b.String()
}
