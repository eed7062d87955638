package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	verrors "github.com/vango-dev/vfiber/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Scheduler.FrameInterval.Duration != DefaultFrameInterval {
		t.Errorf("Scheduler.FrameInterval = %v, want %v", cfg.Scheduler.FrameInterval, DefaultFrameInterval)
	}
	if cfg.Scheduler.FrameBudget.Duration != DefaultFrameBudget {
		t.Errorf("Scheduler.FrameBudget = %v, want %v", cfg.Scheduler.FrameBudget, DefaultFrameBudget)
	}
	if cfg.Scheduler.MinRemaining.Duration != DefaultMinRemaining {
		t.Errorf("Scheduler.MinRemaining = %v, want %v", cfg.Scheduler.MinRemaining, DefaultMinRemaining)
	}
	if cfg.Inspector.Addr != DefaultInspectorAddr {
		t.Errorf("Inspector.Addr = %q, want %q", cfg.Inspector.Addr, DefaultInspectorAddr)
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultMetricsNamespace)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// No config file means defaults
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}

	configPath := filepath.Join(tmpDir, ConfigFileName)
	configJSON := `{
  "scheduler": {
    "frameInterval": "20ms",
    "minRemaining": "2ms"
  },
  "engine": {
    "validateHooks": true
  },
  "inspector": {
    "addr": ":9000",
    "app": "todo"
  },
  "log": {
    "level": "debug",
    "format": "json"
  }
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scheduler.FrameInterval.Duration != 20*time.Millisecond {
		t.Errorf("FrameInterval = %v, want 20ms", cfg.Scheduler.FrameInterval)
	}
	if cfg.Scheduler.FrameBudget.Duration != DefaultFrameBudget {
		t.Errorf("FrameBudget = %v, want default", cfg.Scheduler.FrameBudget)
	}
	if cfg.Scheduler.MinRemaining.Duration != 2*time.Millisecond {
		t.Errorf("MinRemaining = %v, want 2ms", cfg.Scheduler.MinRemaining)
	}
	if !cfg.Engine.ValidateHooks {
		t.Error("ValidateHooks should be true")
	}
	if cfg.Inspector.Addr != ":9000" {
		t.Errorf("Inspector.Addr = %q, want :9000", cfg.Inspector.Addr)
	}
	if cfg.Inspector.App != "todo" {
		t.Errorf("Inspector.App = %q, want todo", cfg.Inspector.App)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
}

func TestLoad_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `scheduler:
  frameInterval: 10ms
  frameBudget: 4ms
metrics:
  enabled: true
  namespace: app
`
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scheduler.FrameInterval.Duration != 10*time.Millisecond {
		t.Errorf("FrameInterval = %v, want 10ms", cfg.Scheduler.FrameInterval)
	}
	if cfg.Scheduler.FrameBudget.Duration != 4*time.Millisecond {
		t.Errorf("FrameBudget = %v, want 4ms", cfg.Scheduler.FrameBudget)
	}
	if cfg.Metrics.Namespace != "app" {
		t.Errorf("Metrics.Namespace = %q, want app", cfg.Metrics.Namespace)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, verrors.New("E120")) {
		t.Fatalf("LoadFile() error = %v, want E120", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte("{invalid json}"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !errors.Is(err, verrors.New("E121")) {
		t.Errorf("error = %v, want E121", err)
	}
}

func TestLoadFile_BadDuration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte(`{"scheduler":{"frameInterval":"soon"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if !errors.Is(err, verrors.New("E121")) {
		t.Errorf("error = %v, want E121", err)
	}
}

func TestDuration_NumberIsMilliseconds(t *testing.T) {
	var d Duration
	if err := d.UnmarshalJSON([]byte("12")); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 12*time.Millisecond {
		t.Errorf("Duration = %v, want 12ms", d.Duration)
	}
}

func TestSave(t *testing.T) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, name)

			cfg := New()
			cfg.Scheduler.FrameInterval = D(33 * time.Millisecond)
			cfg.Inspector.App = "todo"

			if err := cfg.SaveTo(configPath); err != nil {
				t.Fatalf("SaveTo() error = %v", err)
			}
			if cfg.Path() != configPath {
				t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
			}

			data, err := os.ReadFile(configPath)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), "33ms") {
				t.Errorf("saved file should contain 33ms:\n%s", data)
			}

			loaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if loaded.Scheduler.FrameInterval.Duration != 33*time.Millisecond {
				t.Errorf("FrameInterval = %v, want 33ms", loaded.Scheduler.FrameInterval)
			}
			if loaded.Inspector.App != "todo" {
				t.Errorf("Inspector.App = %q, want todo", loaded.Inspector.App)
			}

			loaded.Log.Level = "warn"
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			again, err := LoadFile(configPath)
			if err != nil {
				t.Fatal(err)
			}
			if again.Log.Level != "warn" {
				t.Errorf("Log.Level = %q, want warn", again.Log.Level)
			}
		})
	}
}

func TestSave_NoPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		detail string
	}{
		{"zero interval", func(c *Config) { c.Scheduler.FrameInterval = D(0) }, "frameInterval"},
		{"budget over interval", func(c *Config) { c.Scheduler.FrameBudget = D(time.Second) }, "frameBudget"},
		{"negative min remaining", func(c *Config) { c.Scheduler.MinRemaining = D(-time.Millisecond) }, "minRemaining"},
		{"min remaining over budget", func(c *Config) { c.Scheduler.MinRemaining = D(time.Second) }, "minRemaining"},
		{"negative op limit", func(c *Config) { c.Engine.OpLogLimit = -1 }, "opLogLimit"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)

			err := cfg.Validate()
			var ve *verrors.Error
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want *errors.Error", err)
			}
			if ve.Code != "E122" {
				t.Errorf("Code = %q, want E122", ve.Code)
			}
			if !strings.Contains(ve.Detail, tt.detail) {
				t.Errorf("Detail = %q, want it to mention %q", ve.Detail, tt.detail)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered:\n%s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON record:\n%s", out)
	}

	if _, err := (LogConfig{Level: "chatty"}).NewLogger(&buf); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	if Exists(tmpDir) {
		t.Error("Exists() should return false for empty dir")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if !Exists(tmpDir) {
		t.Error("Exists() should return true after creating config")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Scheduler.FrameInterval = D(30 * time.Millisecond)
	cfg.applyDefaults()

	if cfg.Scheduler.FrameBudget.Duration != 15*time.Millisecond {
		t.Errorf("FrameBudget = %v, want half the interval", cfg.Scheduler.FrameBudget)
	}
	if cfg.Inspector.Addr != DefaultInspectorAddr {
		t.Errorf("Inspector.Addr = %q, want %q", cfg.Inspector.Addr, DefaultInspectorAddr)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want info/text", cfg.Log)
	}
}
