// Package scheduler drives a render engine from idle windows and runs host
// callbacks on the same goroutine.
//
// The engine is single threaded. Everything that touches it (event
// listeners, Render calls, state updates) is submitted to the Loop, which
// runs tasks between scheduling turns.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	verrors "github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/idle"
)

var (
	// ErrStopped is returned by Submit and Do after Run has returned.
	ErrStopped = errors.New("scheduler: loop stopped")

	// ErrRunning is returned by Run when the loop is already running.
	ErrRunning = errors.New("scheduler: loop already running")
)

// Worker performs scheduling turns. *fiber.Engine implements it.
type Worker interface {
	// Work performs one turn and reports whether work remains.
	Work(d idle.Deadline) bool

	// Abort discards in-flight work after a panic.
	Abort()
}

// Task is a host callback run on the loop goroutine.
type Task func()

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithQueueSize sets the task queue capacity (default 256).
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		l.queueSize = n
	}
}

// WithTurnObserver calls fn after every turn with whether work remains.
func WithTurnObserver(fn func(pending bool)) Option {
	return func(l *Loop) {
		l.onTurn = fn
	}
}

// Loop runs a Worker against an idle.Source.
type Loop struct {
	worker    Worker
	source    idle.Source
	logger    *slog.Logger
	queueSize int
	onTurn    func(pending bool)

	tasks   chan Task
	done    chan struct{}
	running atomic.Bool
	turns   atomic.Uint64
	panics  atomic.Uint64
}

// New creates a loop.
func New(worker Worker, source idle.Source, opts ...Option) *Loop {
	l := &Loop{
		worker:    worker,
		source:    source,
		queueSize: 256,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default().With("component", "scheduler")
	}
	l.tasks = make(chan Task, l.queueSize)
	return l
}

// Submit queues task to run on the loop goroutine. It blocks while the
// queue is full.
func (l *Loop) Submit(task Task) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.tasks <- task:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Submit(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// Turns returns the number of scheduling turns run so far.
func (l *Loop) Turns() uint64 {
	return l.turns.Load()
}

// Panics returns the number of recovered panics.
func (l *Loop) Panics() uint64 {
	return l.panics.Load()
}

// Run drives the worker until ctx is cancelled. While the worker has
// nothing to do the loop sleeps until a task arrives. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(l.done)

	pending := true
	for {
		if !pending {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case task := <-l.tasks:
				l.runTask(task)
			}
		}
		l.drain()

		d, err := l.source.Next(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}

		// Tasks that arrived while waiting run before the turn.
		l.drain()
		pending = l.turn(d)
	}
}

// drain runs every queued task without blocking.
func (l *Loop) drain() {
	for {
		select {
		case task := <-l.tasks:
			l.runTask(task)
		default:
			return
		}
	}
}

func (l *Loop) runTask(task Task) {
	defer func() {
		if p := recover(); p != nil {
			l.handlePanic("task", p)
		}
	}()
	task()
}

func (l *Loop) turn(d idle.Deadline) (pending bool) {
	l.turns.Add(1)
	defer func() {
		if p := recover(); p != nil {
			l.handlePanic("turn", p)
			l.worker.Abort()
			pending = false
		}
		if l.onTurn != nil {
			l.onTurn(pending)
		}
	}()
	return l.worker.Work(d)
}

// handlePanic logs a panic recovered from a task or turn.
func (l *Loop) handlePanic(where string, p any) {
	l.panics.Add(1)

	var cause error
	if err, ok := p.(error); ok {
		cause = err
	} else {
		cause = fmt.Errorf("%v", p)
	}
	err := verrors.New("E004").Wrap(cause)
	l.logger.Error("recovered panic",
		"where", where,
		"error", err,
		"stack", string(debug.Stack()),
	)
}
