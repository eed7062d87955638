package fiber

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures engine metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vfiber").
	Namespace string

	// Subsystem is the metrics subsystem (default: "engine").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for commit duration.
	// Default: exponential from 50µs.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures engine metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vfiber",
		Subsystem: "engine",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14), // 50µs to ~400ms
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for one or more engines. A nil
// *Metrics records nothing.
type Metrics struct {
	units          prometheus.Counter
	yields         prometheus.Counter
	renders        *prometheus.CounterVec
	commits        prometheus.Counter
	effectTags     *prometheus.CounterVec
	hookCalls      *prometheus.CounterVec
	droppedUpdates prometheus.Counter
	commitDuration prometheus.Histogram
	liveFibers     prometheus.Gauge
}

// NewMetrics registers the engine collectors.
//
// Metrics collected:
//   - vfiber_engine_units_total: fibers processed
//   - vfiber_engine_yields_total: turns that ran out of idle time with work left
//   - vfiber_engine_renders_total: render passes started, by kind (root, partial, restart)
//   - vfiber_engine_commits_total: committed render passes
//   - vfiber_engine_effect_tags_total: committed fibers by effect tag
//   - vfiber_engine_effect_hooks_total: effect callbacks and cleanups run
//   - vfiber_engine_dropped_updates_total: state updates on unmounted components
//   - vfiber_engine_commit_duration_seconds: commit phase duration
//   - vfiber_engine_live_fibers: fibers held in the arena after the last commit
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		units: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "units_total",
			Help:        "Total number of fibers processed",
			ConstLabels: config.ConstLabels,
		}),

		yields: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "yields_total",
			Help:        "Total number of turns that yielded with work remaining",
			ConstLabels: config.ConstLabels,
		}),

		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of render passes started",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		commits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commits_total",
			Help:        "Total number of committed render passes",
			ConstLabels: config.ConstLabels,
		}),

		effectTags: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_tags_total",
			Help:        "Total number of committed fibers by effect tag",
			ConstLabels: config.ConstLabels,
		}, []string{"tag"}),

		hookCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_hooks_total",
			Help:        "Total number of effect callbacks and cleanups run",
			ConstLabels: config.ConstLabels,
		}, []string{"action"}),

		droppedUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dropped_updates_total",
			Help:        "Total number of state updates dropped because the component unmounted",
			ConstLabels: config.ConstLabels,
		}),

		commitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_duration_seconds",
			Help:        "Commit phase duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		liveFibers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_fibers",
			Help:        "Number of fibers held after the last commit",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) recordTurn(units int, yielded bool) {
	if m == nil {
		return
	}
	m.units.Add(float64(units))
	if yielded {
		m.yields.Inc()
	}
}

func (m *Metrics) recordRender(kind string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(kind).Inc()
}

func (m *Metrics) recordDropped() {
	if m == nil {
		return
	}
	m.droppedUpdates.Inc()
}

func (m *Metrics) recordCommit(r CommitReport, d time.Duration) {
	if m == nil {
		return
	}
	m.commits.Inc()
	m.commitDuration.Observe(d.Seconds())
	m.effectTags.WithLabelValues(EffectCreate.String()).Add(float64(r.Created))
	m.effectTags.WithLabelValues(EffectUpdate.String()).Add(float64(r.Updated))
	m.effectTags.WithLabelValues(EffectDelete.String()).Add(float64(r.Deleted))
	m.hookCalls.WithLabelValues("run").Add(float64(r.EffectsRun))
	m.hookCalls.WithLabelValues("cleanup").Add(float64(r.Cleanups))
	m.liveFibers.Set(float64(r.LiveFibers))
}
