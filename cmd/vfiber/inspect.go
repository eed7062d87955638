package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/idle"
	"github.com/vango-dev/vfiber/pkg/inspect"
	"github.com/vango-dev/vfiber/pkg/scheduler"
)

func inspectCmd(flags *globalFlags) *cobra.Command {
	var (
		app  string
		addr string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve a demo app with a live inspector",
		Long: `Run a demo app on the scheduler loop and serve an HTTP inspector.

The inspector shows the display tree, streams mutations over WebSocket,
exposes Prometheus metrics and accepts events:

  curl -X POST localhost:7070/events/n4/click

Examples:
  vfiber inspect
  vfiber inspect --app todo --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if app != "" {
				cfg.Inspector.App = app
			}
			if addr != "" {
				cfg.Inspector.Addr = addr
			}

			log, err := logger(cfg)
			if err != nil {
				return err
			}

			hub := inspect.NewHub(log)
			h, err := newHost(cfg, cfg.Inspector.App, log, fiber.WithCommitObserver(hub.NotifyCommit))
			if err != nil {
				return err
			}

			frames := idle.NewFrames(cfg.Scheduler.FrameInterval.Duration, cfg.Scheduler.FrameBudget.Duration)
			defer frames.Stop()
			loop := scheduler.New(h.engine, frames, scheduler.WithLogger(log))

			icfg := inspect.Config{
				Addr:   cfg.Inspector.Addr,
				Tree:   h.tree,
				Engine: h.engine,
				Loop:   loop,
				Hub:    hub,
				Logger: log,
			}
			if h.registry != nil {
				icfg.Gatherer = h.registry
			}
			srv := inspect.New(icfg)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printBanner()
			info("App:       %s", h.app.Name)
			info("Inspector: http://%s", cfg.Inspector.Addr)
			info("Frames:    %s every %s", cfg.Scheduler.FrameBudget, cfg.Scheduler.FrameInterval)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				err := loop.Run(ctx)
				if ctx.Err() != nil {
					return nil
				}
				return err
			})
			g.Go(func() error {
				return srv.Run(ctx)
			})
			g.Go(func() error {
				if err := loop.Submit(func() { h.engine.Render(h.app.Root()) }); err != nil {
					return err
				}
				success("Rendering %s", h.app.Name)
				return nil
			})

			if err := g.Wait(); err != nil {
				return err
			}
			success("Stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&app, "app", "a", "", "Demo app to serve (default from config)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}
