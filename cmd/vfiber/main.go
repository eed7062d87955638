package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vfiber/internal/config"
	"github.com/vango-dev/vfiber/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┌─┐┬┌┐ ┌─┐┬─┐
  ╚╗╔╝├┤ │├┴┐├┤ ├┬┘
   ╚╝ └  ┴└─┘└─┘┴└─
`

// globalFlags are shared by all commands.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "vfiber",
		Short: "Incremental fiber reconciliation engine",
		Long: `vfiber renders component trees into a display tree incrementally.

Rendering is split into units of work that run inside idle windows,
and changes are committed to the display tree in one pass. Commands:

  • render   render a demo app headlessly and print its markup
  • tui      run a demo app in the terminal
  • inspect  serve a demo app with a live HTTP inspector
  • bench    measure render and update times`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to vfiber.json or vfiber.yaml (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: text or json (default from config)")

	// Add commands
	rootCmd.AddCommand(
		renderCmd(&flags),
		tuiCmd(&flags),
		inspectCmd(&flags),
		benchCmd(&flags),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the configuration and applies flag overrides.
func (f *globalFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}

	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logger builds the process logger and installs it as the default.
func logger(cfg *config.Config) (*slog.Logger, error) {
	l, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	return l, nil
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
