// Package cli implements the graphweave command-line interface.
//
// This package provides commands for loading CSV edge lists into property
// graphs, probing unknown files (dialect, headers, column types, candidate
// edge pairs), consolidating bipartite pair lists, rendering graph documents,
// and managing the artifact cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - load: Build a graph from a CSV edge list (plus optional vertex metadata)
//   - sniff: Report the inferred dialect, headers, and column types of a file
//   - detect: Rank column pairs by how edge-like their shared values look
//   - consolidate: Derive a unipartite graph from (vertex, pivot) pairs
//   - render: Re-render a saved graph document to DOT, SVG, or PNG
//   - graphs: Manage graphs stored in MongoDB
//   - cache: Manage the artifact cache
//   - serve: Run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphweave/pkg/buildinfo"
	"github.com/matzehuels/graphweave/pkg/cache"
	"github.com/matzehuels/graphweave/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "graphweave"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and configuration
// loaded from the config file (missing files fall back to defaults).
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: LoadConfig(""),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "graphweave",
		Short:        "Graphweave builds property graphs from CSV files",
		Long:         `Graphweave is a CLI tool for turning tabular edge lists into property graphs: it sniffs dialects and headers, infers column types, assembles weighted graphs with metadata, and renders them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.sniffCommand())
	root.AddCommand(c.detectCommand())
	root.AddCommand(c.consolidateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.graphsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(noCache), c.Logger)
}

// newCache picks the cache backend: disabled, Redis when configured,
// otherwise the file cache. Backend failures degrade to the next option
// rather than aborting the command.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	if c.Config.RedisAddr != "" {
		if rc, err := cache.NewRedisCache(context.Background(), c.Config.RedisAddr); err == nil {
			return rc
		}
		c.Logger.Warn("redis unreachable, using file cache", "addr", c.Config.RedisAddr)
	}
	dir := c.Config.CacheDir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/graphweave/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the default config file path using XDG standard
// (~/.config/graphweave/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	return strings.Split(s, ",")
}

// headerFlag converts the tri-state --headers flag value into the loader's
// optional bool: "auto" (or empty) detects, "true"/"false" force.
func headerFlag(s string) *bool {
	switch s {
	case "true", "yes":
		v := true
		return &v
	case "false", "no":
		v := false
		return &v
	}
	return nil
}
