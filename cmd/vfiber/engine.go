package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/vfiber/internal/config"
	"github.com/vango-dev/vfiber/internal/demo"
	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/fiber"
)

// host is an engine rendering a demo app into a memory tree.
type host struct {
	app      *demo.App
	tree     *display.MemoryTree
	engine   *fiber.Engine
	registry *prometheus.Registry
}

// newHost wires an engine from configuration. Extra options are applied
// after the configured ones.
func newHost(cfg *config.Config, appName string, logger *slog.Logger, opts ...fiber.Option) (*host, error) {
	app, err := demo.Get(appName)
	if err != nil {
		return nil, err
	}

	h := &host{
		app:  app,
		tree: display.NewMemoryTree(display.WithOpLimit(cfg.Engine.OpLogLimit)),
	}

	engineOpts := []fiber.Option{
		fiber.WithLogger(logger),
		fiber.WithMinRemaining(cfg.Scheduler.MinRemaining.Duration),
	}
	if cfg.Engine.ValidateHooks {
		engineOpts = append(engineOpts, fiber.WithHookValidation())
	}
	if cfg.Metrics.Enabled {
		h.registry = prometheus.NewRegistry()
		engineOpts = append(engineOpts, fiber.WithMetrics(fiber.NewMetrics(
			fiber.WithNamespace(cfg.Metrics.Namespace),
			fiber.WithRegistry(h.registry),
		)))
	}
	engineOpts = append(engineOpts, opts...)

	h.engine = fiber.New(h.tree, h.tree.Root(), engineOpts...)
	return h, nil
}

// byID returns the display node whose id attribute is id.
func (h *host) byID(id string) (*display.MemoryNode, bool) {
	nodes := h.tree.Find(func(n *display.MemoryNode) bool {
		v, _ := n.Attr("id")
		return v == id
	})
	if len(nodes) != 1 {
		return nil, false
	}
	return nodes[0], true
}
