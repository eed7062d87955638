package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vfiber/pkg/display"
	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/scheduler"
)

// Config configures the inspector.
type Config struct {
	// Addr is the address to listen on (e.g., "127.0.0.1:7070").
	Addr string

	// Tree is the display tree the engine renders into.
	Tree *display.MemoryTree

	// Engine is read on the loop goroutine for /stats.
	Engine *fiber.Engine

	// Loop runs event dispatches and engine reads.
	Loop *scheduler.Loop

	// Hub streams mutations and commits. Default: a new hub.
	Hub *Hub

	// Gatherer serves /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// Logger is the structured logger. Default: slog.Default().
	Logger *slog.Logger

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 5 seconds.
	ShutdownTimeout time.Duration
}

// Stats is the /stats response.
type Stats struct {
	LastCommit fiber.CommitReport `json:"lastCommit"`
	LiveFibers int                `json:"liveFibers"`
	Pending    bool               `json:"pending"`
	Turns      uint64             `json:"turns"`
	Panics     uint64             `json:"panics"`
	Nodes      int                `json:"nodes"`
	Clients    int                `json:"clients"`
}

// EventResult is the response of an event dispatch.
type EventResult struct {
	Node      string `json:"node"`
	Event     string `json:"event"`
	Listeners int    `json:"listeners"`
}

// Server is the inspector HTTP server.
type Server struct {
	config     Config
	router     chi.Router
	hub        *Hub
	logger     *slog.Logger
	httpServer *http.Server
	unobserve  func()
}

// New creates an inspector and subscribes its hub to the tree.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	hub := cfg.Hub
	if hub == nil {
		hub = NewHub(cfg.Logger)
	}
	hub.hash = func() string { return fingerprint(cfg.Tree) }

	s := &Server{
		config:    cfg,
		hub:       hub,
		logger:    cfg.Logger.With("component", "inspect"),
		unobserve: cfg.Tree.Observe(hub.PublishOp),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/tree", s.handleTree)
	r.Get("/tree/hash", s.handleHash)
	r.Get("/ops", s.handleOps)
	r.Get("/stats", s.handleStats)
	r.Get("/ws", s.hub.HandleWebSocket)
	r.Post("/events/{node}/{event}", s.handleEvent)
	if s.config.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the inspector's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the stream hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves on Config.Addr until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops the HTTP server and disconnects stream clients.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.unobserve()
	s.hub.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("inspector shutdown complete")
	return nil
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	hash := fingerprint(s.config.Tree)
	w.Header().Set("ETag", strconv.Quote(hash))
	if r.Header.Get("If-None-Match") == strconv.Quote(hash) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	opts := display.MarkupOptions{}
	if r.URL.Query().Get("pretty") != "" {
		opts = display.MarkupOptions{Pretty: true, Indent: "  "}
	}
	if err := s.config.Tree.WriteMarkup(w, opts); err != nil {
		s.logger.Debug("write markup", "error", err)
	}
}

func (s *Server) handleHash(w http.ResponseWriter, r *http.Request) {
	hash := fingerprint(s.config.Tree)
	w.Header().Set("ETag", strconv.Quote(hash))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, hash)
}

func (s *Server) handleOps(w http.ResponseWriter, r *http.Request) {
	ops := s.config.Tree.Ops()
	if ops == nil {
		ops = []display.Op{}
	}
	writeJSON(w, http.StatusOK, ops)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := Stats{
		Nodes:   s.config.Tree.Len(),
		Clients: s.hub.ClientCount(),
	}
	if s.config.Loop != nil {
		stats.Turns = s.config.Loop.Turns()
		stats.Panics = s.config.Loop.Panics()
		if s.config.Engine != nil {
			eng := s.config.Engine
			err := s.config.Loop.Do(r.Context(), func() {
				stats.LastCommit = eng.LastCommit()
				stats.LiveFibers = eng.LiveFibers()
				stats.Pending = eng.Pending()
			})
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, err)
				return
			}
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleEvent dispatches an event. The request body, if any, is the event
// value: JSON when it parses, otherwise the raw text.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	res := EventResult{
		Node:  chi.URLParam(r, "node"),
		Event: chi.URLParam(r, "event"),
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	value := eventValue(body)

	if s.config.Loop == nil {
		writeError(w, http.StatusServiceUnavailable, scheduler.ErrStopped)
		return
	}

	var dispatchErr error
	err = s.config.Loop.Do(r.Context(), func() {
		res.Listeners, dispatchErr = s.config.Tree.DispatchID(res.Node, res.Event, value)
	})
	switch {
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err)
	case errors.Is(dispatchErr, display.ErrNodeNotFound):
		writeError(w, http.StatusNotFound, dispatchErr)
	case dispatchErr != nil:
		writeError(w, http.StatusInternalServerError, dispatchErr)
	default:
		s.logger.Debug("event dispatched", "node", res.Node, "event", res.Event, "listeners", res.Listeners)
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func eventValue(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}

func fingerprint(t *display.MemoryTree) string {
	return strconv.FormatUint(t.Fingerprint(), 16)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
