package scheduler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/idle"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeWorker counts turns and can be told to panic.
type fakeWorker struct {
	mu      sync.Mutex
	turns   int
	aborts  int
	panicAt int
}

func (w *fakeWorker) Work(idle.Deadline) bool {
	w.mu.Lock()
	w.turns++
	n := w.turns
	w.mu.Unlock()
	if n == w.panicAt {
		panic("boom")
	}
	return false
}

func (w *fakeWorker) Abort() {
	w.mu.Lock()
	w.aborts++
	w.mu.Unlock()
}

func (w *fakeWorker) counts() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.turns, w.aborts
}

func startLoop(t *testing.T, l *Loop) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	return func() error {
		stop()
		select {
		case err := <-errc:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("loop did not stop")
			return nil
		}
	}
}

func TestLoopRendersEngine(t *testing.T) {
	tree := display.NewMemoryTree()
	eng := fiber.New(tree, tree.Root(), fiber.WithLogger(discard))
	l := New(eng, idle.Immediate{Budget: time.Millisecond}, WithLogger(discard))
	stop := startLoop(t, l)

	require.NoError(t, l.Submit(func() {
		eng.Render(vdom.Div(vdom.Class("x"), "hello"))
	}))

	assert.Eventually(t, func() bool {
		return tree.Markup() == `<div class="x">hello</div>`
	}, 5*time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestLoopRunsEventsThroughEngine(t *testing.T) {
	count := vdom.Define("Count", func(h vdom.Hooks, _ vdom.Props) *vdom.Element {
		n, set := vdom.UseState(h, 0)
		return vdom.Button(vdom.OnClick(func() { set.Update(func(n int) int { return n + 1 }) }), n)
	})

	tree := display.NewMemoryTree()
	eng := fiber.New(tree, tree.Root(), fiber.WithLogger(discard))
	l := New(eng, idle.Immediate{}, WithLogger(discard))
	stop := startLoop(t, l)
	defer stop()

	require.NoError(t, l.Submit(func() { eng.Render(vdom.Create(count, nil)) }))
	require.Eventually(t, func() bool { return tree.FindTag("button") != nil }, 5*time.Second, 5*time.Millisecond)

	btn := tree.FindTag("button")
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Submit(func() { tree.Dispatch(btn, "click", nil) }))
	}

	assert.Eventually(t, func() bool { return btn.TextContent() == "3" }, 5*time.Second, 5*time.Millisecond)
}

func TestLoopRecoversPanickingTurn(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{w: &buf, mu: &mu}, nil))

	w := &fakeWorker{panicAt: 1}
	l := New(w, idle.Immediate{}, WithLogger(logger))
	stop := startLoop(t, l)

	require.Eventually(t, func() bool { return l.Panics() == 1 }, 5*time.Second, time.Millisecond)

	// The loop keeps serving tasks after the panic.
	ran := make(chan struct{})
	require.NoError(t, l.Submit(func() { close(ran) }))
	<-ran
	require.ErrorIs(t, stop(), context.Canceled)

	turns, aborts := w.counts()
	assert.GreaterOrEqual(t, turns, 1)
	assert.Equal(t, 1, aborts)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, buf.String(), "recovered panic")
	assert.Contains(t, buf.String(), "E004")
}

func TestLoopRecoversPanickingTask(t *testing.T) {
	w := &fakeWorker{}
	l := New(w, idle.Immediate{}, WithLogger(discard))
	stop := startLoop(t, l)
	defer stop()

	require.NoError(t, l.Submit(func() { panic("listener") }))
	require.NoError(t, l.Do(context.Background(), func() {}))

	assert.Equal(t, uint64(1), l.Panics())
	_, aborts := w.counts()
	assert.Equal(t, 0, aborts, "task panics do not abort rendering")
}

func TestLoopSleepsWhenIdle(t *testing.T) {
	var turns atomic.Int64
	w := &fakeWorker{}
	l := New(w, idle.Immediate{}, WithLogger(discard), WithTurnObserver(func(bool) { turns.Add(1) }))
	stop := startLoop(t, l)
	defer stop()

	require.NoError(t, l.Do(context.Background(), func() {}))
	// Let the turn that follows the task finish.
	time.Sleep(20 * time.Millisecond)
	before := turns.Load()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, before, turns.Load(), "no turns without tasks or pending work")
	assert.Equal(t, uint64(before), l.Turns())
}

func TestLoopStopped(t *testing.T) {
	l := New(&fakeWorker{}, idle.Immediate{}, WithLogger(discard))
	stop := startLoop(t, l)
	require.ErrorIs(t, stop(), context.Canceled)

	assert.ErrorIs(t, l.Submit(func() {}), ErrStopped)
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrStopped)
	assert.ErrorIs(t, l.Run(context.Background()), ErrRunning)
}

type lockedWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}
