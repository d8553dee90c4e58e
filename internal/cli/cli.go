// Package cli implements the uiadoption command-line interface.
//
// # Commands
//
//   - scan: analyze every repository of an organization and write a report
//   - analyze: analyze a single local directory
//   - report: render, show, browse and list stored reports
//   - serve: serve the rendered page and stored reports over HTTP
//   - cache: manage the repository-list cache
//
// # Configuration
//
// Settings come from uiadoption.toml (or .yaml), .env, the environment and
// flags, in increasing precedence. See package config.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/uiadoption/pkg/buildinfo"
	"github.com/matzehuels/uiadoption/pkg/cache"
	"github.com/matzehuels/uiadoption/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "uiadoption"
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

	configFile string
	// lookupEnv overrides environment lookups in tests.
	lookupEnv func(string) (string, bool)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "uiadoption inventories UI framework and component library usage",
		Long: `uiadoption scans the repositories of a GitHub organization, classifies each one
by UI framework and design-system component library, counts component usage and
writes a dated report plus an HTML page that charts adoption over time.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./uiadoption.toml or .yaml if present)")

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves configuration from files and the environment. Flags
// are applied by each command.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{File: c.configFile, Lookup: c.lookupEnv})
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}
	return cfg, nil
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache selects the repository-list cache: Redis when configured, the
// file cache otherwise, and no cache when disabled or no cache directory can
// be determined.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		return cache.NewRedisCache(ctx, cfg.RedisURL, appName+":")
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/uiadoption/).
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
