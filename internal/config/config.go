package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vfiber/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "vfiber.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "vfiber.yaml"

	// DefaultFrameInterval is the time between idle windows.
	DefaultFrameInterval = 16 * time.Millisecond

	// DefaultFrameBudget is the length of each idle window.
	DefaultFrameBudget = 8 * time.Millisecond

	// DefaultMinRemaining is the idle time below which a turn yields.
	DefaultMinRemaining = time.Millisecond

	// DefaultInspectorAddr is the default inspector listen address.
	DefaultInspectorAddr = "127.0.0.1:7070"

	// DefaultApp is the demo application served by default.
	DefaultApp = "counter"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "vfiber"

	// DefaultOpLogLimit bounds the display mutation log kept by hosts.
	DefaultOpLogLimit = 1024
)

// Config represents the complete vfiber configuration.
type Config struct {
	// Name is an optional label for the host.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Scheduler contains idle window settings.
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`

	// Engine contains reconciliation engine settings.
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Inspector contains inspector server settings.
	Inspector InspectorConfig `json:"inspector" yaml:"inspector"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SchedulerConfig contains idle window settings.
type SchedulerConfig struct {
	// FrameInterval is the time between idle windows (e.g., "16ms").
	FrameInterval Duration `json:"frameInterval" yaml:"frameInterval"`

	// FrameBudget is how long each idle window stays open.
	FrameBudget Duration `json:"frameBudget" yaml:"frameBudget"`

	// MinRemaining is the idle time below which a turn yields.
	MinRemaining Duration `json:"minRemaining" yaml:"minRemaining"`
}

// EngineConfig contains engine settings.
type EngineConfig struct {
	// ValidateHooks makes the engine panic when hook order changes.
	ValidateHooks bool `json:"validateHooks,omitempty" yaml:"validateHooks,omitempty"`

	// OpLogLimit bounds the display mutation log (0 disables it).
	OpLogLimit int `json:"opLogLimit,omitempty" yaml:"opLogLimit,omitempty"`
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Addr is the address to listen on.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// App is the demo application to serve.
	App string `json:"app,omitempty" yaml:"app,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled registers engine metrics and serves /metrics.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Duration is a time.Duration encoded as a string ("16ms").
type Duration struct {
	time.Duration
}

// D wraps a time.Duration.
func D(d time.Duration) Duration {
	return Duration{d}
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. Bare numbers are milliseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var ms float64
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("duration must be a string like \"16ms\": %s", data)
		}
		d.Duration = time.Duration(ms * float64(time.Millisecond))
		return nil
	}
	return d.parse(s)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.parse(value.Value)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			FrameInterval: D(DefaultFrameInterval),
			FrameBudget:   D(DefaultFrameBudget),
			MinRemaining:  D(DefaultMinRemaining),
		},
		Engine: EngineConfig{
			OpLogLimit: DefaultOpLogLimit,
		},
		Inspector: InspectorConfig{
			Addr: DefaultInspectorAddr,
			App:  DefaultApp,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// vfiber.json, then vfiber.yaml. A directory with neither yields the
// defaults.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "vfiber.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E120").
				WithDetail("No configuration file at " + path).
				Wrap(err)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E121").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Scheduler
	if c.Scheduler.FrameInterval.Duration == 0 {
		c.Scheduler.FrameInterval = D(DefaultFrameInterval)
	}
	if c.Scheduler.FrameBudget.Duration == 0 {
		c.Scheduler.FrameBudget = D(c.Scheduler.FrameInterval.Duration / 2)
	}

	// Inspector
	if c.Inspector.Addr == "" {
		c.Inspector.Addr = DefaultInspectorAddr
	}
	if c.Inspector.App == "" {
		c.Inspector.App = DefaultApp
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	s := c.Scheduler
	if s.FrameInterval.Duration <= 0 {
		return errors.New("E122").
			WithDetail("scheduler.frameInterval must be positive")
	}
	if s.FrameBudget.Duration <= 0 || s.FrameBudget.Duration > s.FrameInterval.Duration {
		return errors.New("E122").
			WithDetail("scheduler.frameBudget must be positive and no longer than frameInterval")
	}
	if s.MinRemaining.Duration < 0 || s.MinRemaining.Duration >= s.FrameBudget.Duration {
		return errors.New("E122").
			WithDetail("scheduler.minRemaining must be non-negative and shorter than frameBudget")
	}
	if c.Engine.OpLogLimit < 0 {
		return errors.New("E122").
			WithDetail("engine.opLogLimit must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return errors.New("E122").WithDetail(err.Error())
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E122").
			WithDetail("log.format must be text or json, got " + c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", l.Level, err)
	}
	return level, nil
}

// NewLogger builds a logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, errors.New("E122").WithDetail(err.Error())
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "vfiber.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
