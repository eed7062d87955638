package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vfiber/pkg/tui"
)

func tuiCmd(flags *globalFlags) *cobra.Command {
	var (
		app     string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run a demo app in the terminal",
		Long: `Run a demo app in the terminal.

Each frame is an idle window of scheduler.frameBudget. Tab moves the
focus, enter and space activate, typing edits the focused input.

Examples:
  vfiber tui
  vfiber tui --app todo --log-file vfiber.log --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if app == "" {
				app = cfg.Inspector.App
			}

			// The terminal belongs to the program; logs go to a file or nowhere.
			out := io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			log, err := cfg.Log.NewLogger(out)
			if err != nil {
				return err
			}
			slog.SetDefault(log)

			h, err := newHost(cfg, app, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return tui.Run(ctx, tui.Config{
				Engine:   h.engine,
				Tree:     h.tree,
				Root:     h.app.Root(),
				Interval: cfg.Scheduler.FrameInterval.Duration,
				Budget:   cfg.Scheduler.FrameBudget.Duration,
				Title:    "vfiber · " + h.app.Description,
			}, tea.WithAltScreen())
		},
	}

	cmd.Flags().StringVarP(&app, "app", "a", "", "Demo app to run (default from config)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file")

	return cmd
}
