package fiber

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/idle"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// DefaultMinRemaining is the idle time below which a turn yields.
const DefaultMinRemaining = time.Millisecond

// Default tracer name for engine spans.
const defaultTracerName = "vfiber"

// Render pass kinds, used as the metrics label.
const (
	renderRoot    = "root"
	renderPartial = "partial"
	renderRestart = "restart"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records engine activity on m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracer sets the tracer used for commit spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithMinRemaining sets the idle time below which a turn yields.
func WithMinRemaining(d time.Duration) Option {
	return func(e *Engine) {
		e.minRemaining = d
	}
}

// WithHookValidation makes the engine panic with ErrHookOrder when a
// component calls a different number of hooks than on its previous render.
func WithHookValidation() Option {
	return func(e *Engine) {
		e.validateHooks = true
	}
}

// WithCommitObserver calls fn after every commit.
func WithCommitObserver(fn func(CommitReport)) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, fn)
	}
}

// Engine renders element trees into one display container.
type Engine struct {
	doc       display.Document
	container display.Node
	arena     *arena

	rootElement *vdom.Element
	hasRoot     bool

	currentRoot fiberID
	wipRoot     fiberID
	nextUnit    fiberID
	deletions   []fiberID
	partial     bool

	// busy is set while a unit or a commit runs. Updates requested meanwhile
	// are queued and scheduled once it finishes.
	busy      bool
	deferred  []*stateCell
	deferRoot bool

	units    int
	restarts int
	seq      uint64
	last     CommitReport

	logger        *slog.Logger
	metrics       *Metrics
	tracer        trace.Tracer
	minRemaining  time.Duration
	validateHooks bool
	observers     []func(CommitReport)
}

// New creates an engine that renders into container.
func New(doc display.Document, container display.Node, opts ...Option) *Engine {
	e := &Engine{
		doc:          doc,
		container:    container,
		arena:        newArena(),
		minRemaining: DefaultMinRemaining,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default().With("component", "fiber")
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(defaultTracerName)
	}
	return e
}

// Render schedules el as the new root element. Any uncommitted work is
// discarded. Nothing happens until Work or Flush runs.
func (e *Engine) Render(el *vdom.Element) {
	e.rootElement = el
	e.hasRoot = true
	if e.busy {
		e.deferRoot = true
		return
	}
	e.scheduleRoot(renderRoot)
}

// Work performs one scheduling turn: units of work run until none remain or
// d reports less than the minimum idle time. At least one unit runs per
// turn. When the pass is complete it is committed. Work reports whether work
// remains.
func (e *Engine) Work(d idle.Deadline) bool {
	if e.busy {
		// Called from a listener or effect during a turn.
		return e.Pending()
	}

	units := 0
	for e.nextUnit != noFiber {
		e.performUnit()
		units++
		if d.TimeRemaining() < e.minRemaining {
			break
		}
	}
	e.units += units

	yielded := e.nextUnit != noFiber
	e.metrics.recordTurn(units, yielded)
	if !yielded && e.wipRoot != noFiber {
		e.commitRoot()
	}
	return e.Pending()
}

// Flush runs turns with an unlimited deadline until no work remains,
// including renders scheduled by effects.
func (e *Engine) Flush() error {
	if !e.hasRoot {
		return errors.New("E003")
	}
	for e.Work(idle.Unlimited()) {
	}
	return nil
}

// Pending reports whether a render pass is scheduled or in progress.
func (e *Engine) Pending() bool {
	return e.wipRoot != noFiber
}

// Abort discards the in-flight render pass and queued updates. It is used to
// recover after a component or effect panicked; the display tree may have
// been partially updated by an interrupted commit.
func (e *Engine) Abort() {
	e.busy = false
	e.deferred = nil
	e.deferRoot = false
	e.discard()
	e.units, e.restarts = 0, 0
}

// LastCommit returns the report of the most recent commit.
func (e *Engine) LastCommit() CommitReport {
	return e.last
}

// LiveFibers returns the number of fibers held by the engine.
func (e *Engine) LiveFibers() int {
	return e.arena.live
}

// scheduleRoot starts a full render from the root element.
func (e *Engine) scheduleRoot(kind string) {
	e.discard()

	root := &Fiber{
		kind:      vdom.KindHost,
		node:      e.container,
		alternate: e.currentRoot,
	}
	if e.rootElement != nil {
		root.elements = []*vdom.Element{e.rootElement}
	}
	e.wipRoot = e.arena.alloc(root)
	e.partial = false
	e.nextUnit = e.wipRoot

	e.metrics.recordRender(kind)
	e.logger.Debug("render scheduled", "root", rootTag, "kind", kind)
}

// scheduleFrom starts a render rooted at the committed component owner.
// The pass works on a shallow copy whose alternate is owner.
func (e *Engine) scheduleFrom(owner *Fiber) {
	e.discard()

	c := &Fiber{
		kind:      owner.kind,
		tag:       owner.tag,
		component: owner.component,
		props:     owner.props,
		elements:  owner.elements,
		node:      owner.node,
		parent:    owner.parent,
		sibling:   owner.sibling,
		alternate: owner.id,
	}
	e.wipRoot = e.arena.alloc(c)
	e.partial = true
	e.nextUnit = e.wipRoot

	e.metrics.recordRender(renderPartial)
	e.logger.Debug("render scheduled", "root", owner.name(), "kind", renderPartial)
}

// discard abandons the in-flight pass and releases its fibers.
func (e *Engine) discard() {
	if e.wipRoot == noFiber {
		return
	}
	e.wipRoot = noFiber
	e.nextUnit = noFiber
	e.deletions = nil
	e.partial = false
	e.restarts++
	e.gc()
}

// enqueue records a state transition for cell and schedules a render.
func (e *Engine) enqueue(cell *stateCell, fn func(any) any) {
	if cell.unmounted {
		e.metrics.recordDropped()
		e.logger.Warn("state update on unmounted component dropped", "component", cell.component)
		return
	}
	cell.pending = append(cell.pending, fn)
	if e.busy {
		e.deferred = append(e.deferred, cell)
		return
	}
	e.schedule(cell)
}

// schedule picks the render pass that will apply cell's queued updates.
// Only an idle engine, or one already re-rendering the same owner, starts a
// partial pass; everything else restarts from the root so no queued update
// is lost.
func (e *Engine) schedule(cell *stateCell) {
	owner := e.arena.resolve(cell.owner)
	switch {
	case owner == nil:
		e.scheduleRoot(renderRestart)
	case e.wipRoot == noFiber:
		e.scheduleFrom(owner)
	case e.partial && e.arena.get(e.wipRoot).alternate == owner.id:
		e.scheduleFrom(owner)
	default:
		e.scheduleRoot(renderRestart)
	}
}

// flushDeferred schedules updates requested while the engine was busy.
func (e *Engine) flushDeferred() {
	root, cells := e.deferRoot, e.deferred
	e.deferRoot, e.deferred = false, nil

	if root {
		// A full pass drains every queue.
		e.scheduleRoot(renderRoot)
		return
	}
	for _, cell := range cells {
		e.schedule(cell)
	}
}

// performUnit processes nextUnit and advances to the next fiber.
func (e *Engine) performUnit() {
	e.busy = true
	defer func() { e.busy = false }()

	f := e.arena.get(e.nextUnit)
	e.beginWork(f)
	e.nextUnit = e.next(f)

	e.busy = false
	e.flushDeferred()
}

// next returns the fiber after f in pre-order, bounded by wipRoot.
func (e *Engine) next(f *Fiber) fiberID {
	if f.child != noFiber {
		return f.child
	}
	for cur := f; cur != nil; cur = e.arena.get(cur.parent) {
		if cur.id == e.wipRoot {
			return noFiber
		}
		if cur.sibling != noFiber {
			return cur.sibling
		}
	}
	return noFiber
}
