package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/idle"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

func benchCmd(flags *globalFlags) *cobra.Command {
	var (
		sizes []int
		iters int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure render and update times",
		Long: `Measure mount, full update and single row update times of a list
of components, and the number of idle windows a full update needs.

Examples:
  vfiber bench
  vfiber bench --rows 100,10000 --iters 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			log, err := logger(cfg)
			if err != nil {
				return err
			}
			return runBench(cmd.OutOrStdout(), log, sizes, iters, cfg.Scheduler.FrameBudget.Duration)
		},
	}

	cmd.Flags().IntSliceVar(&sizes, "rows", []int{10, 100, 1_000}, "List sizes")
	cmd.Flags().IntVarP(&iters, "iters", "n", 50, "Iterations per measurement")

	return cmd
}

// benchList is a list of n stateful rows. It exposes setters for the list
// and for the first row.
type benchList struct {
	root    *vdom.Component
	setTick vdom.Setter[int]
	setRow  vdom.Setter[int]
}

var benchRow = vdom.Define("BenchRow", func(h vdom.Hooks, props vdom.Props) *vdom.Element {
	hits, set := vdom.UseState(h, 0)
	if bind, ok := props.Get("bind").(func(vdom.Setter[int])); ok {
		bind(set)
	}
	idx, _ := props.Get("index").(int)
	tick, _ := props.Get("tick").(int)

	class := "odd"
	if (idx+tick)%2 == 0 {
		class = "even"
	}
	return vdom.Li(vdom.Class(class),
		vdom.Span(idx),
		vdom.Span(tick),
		vdom.Strong(hits),
	)
})

func newBenchList(n int) *benchList {
	b := &benchList{}
	b.root = vdom.Define("BenchList", func(h vdom.Hooks, _ vdom.Props) *vdom.Element {
		tick, set := vdom.UseState(h, 0)
		b.setTick = set

		rows := make([]*vdom.Element, n)
		for i := range rows {
			props := vdom.Props{"index": i, "tick": tick}
			if i == 0 {
				props["bind"] = func(s vdom.Setter[int]) { b.setRow = s }
			}
			rows[i] = vdom.Create(benchRow, props)
		}
		return vdom.Ul(rows)
	})
	return b
}

func mountBench(n int, log *slog.Logger) (*benchList, *fiber.Engine, error) {
	tree := display.NewMemoryTree(display.WithOpLimit(0))
	eng := fiber.New(tree, tree.Root(), fiber.WithLogger(log))
	b := newBenchList(n)
	eng.Render(vdom.Create(b.root, nil))
	return b, eng, eng.Flush()
}

func runBench(w io.Writer, log *slog.Logger, sizes []int, iters int, budget time.Duration) error {
	if iters <= 0 {
		iters = 1
	}

	tbl := table.NewWriter()
	tbl.SetTitle("vfiber list benchmark")
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"benchmark", "fibers", "avg", "min", "p75", "p99", "max", "windows"})

	row := func(name string, fibers int, t *tachymeter.Tachymeter, windows string) {
		calc := t.Calc()
		tbl.AppendRow(table.Row{
			name, humanize.Comma(int64(fibers)),
			calc.Time.Avg, calc.Time.Min, calc.Time.P75, calc.Time.P99, calc.Time.Max,
			windows,
		})
	}

	for _, n := range sizes {
		label := humanize.Comma(int64(n)) + " rows"

		// Mount
		mount := tachymeter.New(&tachymeter.Config{Size: iters})
		var fibers int
		for i := 0; i < iters; i++ {
			start := time.Now()
			_, eng, err := mountBench(n, log)
			if err != nil {
				return err
			}
			mount.AddTime(time.Since(start))
			fibers = eng.LiveFibers()
		}
		row("mount: "+label, fibers, mount, "-")

		b, eng, err := mountBench(n, log)
		if err != nil {
			return err
		}

		// Full update through idle windows of the configured budget.
		update := tachymeter.New(&tachymeter.Config{Size: iters})
		windows := 0
		for i := 0; i < iters; i++ {
			start := time.Now()
			b.setTick.Update(func(t int) int { return t + 1 })
			for eng.Work(idle.Until(time.Now().Add(budget))) {
				windows++
			}
			windows++
			update.AddTime(time.Since(start))
		}
		row("update all: "+label, eng.LiveFibers(), update,
			fmt.Sprintf("%.1f", float64(windows)/float64(iters)))

		// Single row update
		partial := tachymeter.New(&tachymeter.Config{Size: iters})
		for i := 0; i < iters; i++ {
			start := time.Now()
			b.setRow.Update(func(h int) int { return h + 1 })
			if err := eng.Flush(); err != nil {
				return err
			}
			partial.AddTime(time.Since(start))
		}
		row("update one: "+label, eng.LiveFibers(), partial, "1")
	}

	tbl.Render()
	return nil
}
