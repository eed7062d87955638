package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vfiber/internal/config"
	"github.com/vango-dev/vfiber/internal/demo"
	"github.com/vango-dev/vfiber/pkg/fiber"
)

// buildInfo describes the running binary.
type buildInfo struct {
	Version      string            `json:"version"`
	Commit       string            `json:"commit"`
	Built        string            `json:"built"`
	Module       string            `json:"module"`
	Go           string            `json:"go"`
	Platform     string            `json:"platform"`
	MinRemaining string            `json:"minRemaining"`
	FrameBudget  string            `json:"frameBudget"`
	Apps         []string          `json:"apps"`
	Deps         map[string]string `json:"deps,omitempty"`
}

// stackModules are the dependencies reported by version.
var stackModules = []string{
	"github.com/charmbracelet/bubbletea",
	"github.com/go-chi/chi/v5",
	"github.com/gorilla/websocket",
	"github.com/prometheus/client_golang",
	"go.opentelemetry.io/otel",
}

// readBuildInfo collects version data, falling back to the module version
// recorded by the Go toolchain when no version was set with -ldflags.
func readBuildInfo() buildInfo {
	info := buildInfo{
		Version:      version,
		Commit:       commit,
		Built:        date,
		Module:       "github.com/vango-dev/vfiber",
		Go:           runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		MinRemaining: fiber.DefaultMinRemaining.String(),
		FrameBudget:  config.DefaultFrameBudget.String(),
		Apps:         demo.List(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if bi.Main.Path != "" {
		info.Module = bi.Main.Path
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && info.Commit == "none" {
			info.Commit = s.Value
		}
	}
	for _, dep := range bi.Deps {
		for _, mod := range stackModules {
			if dep.Path == mod {
				if info.Deps == nil {
					info.Deps = make(map[string]string)
				}
				info.Deps[dep.Path] = dep.Version
			}
		}
	}
	return info
}

func writeVersion(w io.Writer, info buildInfo, short, asJSON bool) error {
	switch {
	case short:
		_, err := fmt.Fprintln(w, info.Version)
		return err
	case asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprint(w, banner)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Version:       %s\n", info.Version)
	fmt.Fprintf(w, "  Commit:        %s\n", info.Commit)
	fmt.Fprintf(w, "  Built:         %s\n", info.Built)
	fmt.Fprintf(w, "  Module:        %s\n", info.Module)
	fmt.Fprintf(w, "  Go version:    %s\n", info.Go)
	fmt.Fprintf(w, "  OS/Arch:       %s\n", info.Platform)
	fmt.Fprintf(w, "  Min remaining: %s\n", info.MinRemaining)
	fmt.Fprintf(w, "  Frame budget:  %s\n", info.FrameBudget)
	fmt.Fprintf(w, "  Demo apps:     %s\n", strings.Join(info.Apps, ", "))
	for _, mod := range stackModules {
		if v, ok := info.Deps[mod]; ok {
			fmt.Fprintf(w, "  %s %s\n", mod, v)
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func versionCmd() *cobra.Command {
	var short, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the vfiber build, its scheduling defaults and the bundled demo apps.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeVersion(cmd.OutOrStdout(), readBuildInfo(), short, asJSON)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")

	return cmd
}
