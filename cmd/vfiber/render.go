package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vfiber/internal/config"
	"github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/fiber"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		app    string
		pretty bool
		ops    bool
		stats  bool
		clicks []string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a demo app and print its markup",
		Long: `Render a demo app headlessly and print the resulting display tree.

Clicks are dispatched in order to the elements with the given id
attributes, each followed by a full flush.

Examples:
  vfiber render --app counter
  vfiber render --app counter --click a-inc --click a-inc --stats
  vfiber render --app todo --pretty --ops`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if app == "" {
				app = cfg.Inspector.App
			}
			return runRender(cmd.OutOrStdout(), cfg, app, clicks, pretty, ops, stats)
		},
	}

	cmd.Flags().StringVarP(&app, "app", "a", "", "Demo app to render (default from config)")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the markup")
	cmd.Flags().BoolVar(&ops, "ops", false, "Print the display mutations")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print a table of commits")
	cmd.Flags().StringArrayVar(&clicks, "click", nil, "Click the element with this id (repeatable)")

	return cmd
}

func runRender(w io.Writer, cfg *config.Config, app string, clicks []string, pretty, ops, stats bool) error {
	log, err := logger(cfg)
	if err != nil {
		return err
	}

	var reports []fiber.CommitReport
	h, err := newHost(cfg, app, log, fiber.WithCommitObserver(func(r fiber.CommitReport) {
		reports = append(reports, r)
	}))
	if err != nil {
		return err
	}

	h.engine.Render(h.app.Root())
	if err := h.engine.Flush(); err != nil {
		return err
	}

	for _, id := range clicks {
		node, ok := h.byID(id)
		if !ok {
			return errors.Newf(errors.CategoryCLI, "no element with id %q", id)
		}
		if h.tree.Dispatch(node, "click", nil) == 0 {
			return errors.Newf(errors.CategoryCLI, "element %q has no click listener", id)
		}
		if err := h.engine.Flush(); err != nil {
			return err
		}
	}

	opts := display.MarkupOptions{}
	if pretty {
		opts = display.MarkupOptions{Pretty: true, Indent: "  "}
	}
	if err := h.tree.WriteMarkup(w, opts); err != nil {
		return err
	}
	if !pretty {
		fmt.Fprintln(w)
	}

	if ops {
		fmt.Fprintln(w)
		for _, op := range h.tree.Ops() {
			fmt.Fprintln(w, op.String())
		}
	}

	if stats {
		fmt.Fprintln(w)
		commitTable(w, reports, h.tree.Len())
	}
	return nil
}

// commitTable prints one row per commit.
func commitTable(w io.Writer, reports []fiber.CommitReport, nodes int) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetTitle(fmt.Sprintf("%s commits, %s display nodes", humanize.Comma(int64(len(reports))), humanize.Comma(int64(nodes))))
	tbl.AppendHeader(table.Row{"#", "root", "created", "updated", "changed", "deleted", "effects", "cleanups", "units", "duration"})
	for _, r := range reports {
		tbl.AppendRow(table.Row{
			r.Seq, r.Root, r.Created, r.Updated, r.Changed, r.Deleted,
			r.EffectsRun, r.Cleanups, humanize.Comma(int64(r.Units)), r.Duration,
		})
	}
	tbl.Render()
}
