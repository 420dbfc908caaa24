// Package cli implements the speakerbox command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/speakerbox/pkg/buildinfo"
	"github.com/matzehuels/speakerbox/pkg/cache"
	"github.com/matzehuels/speakerbox/pkg/config"
	"github.com/matzehuels/speakerbox/pkg/extract"
	"github.com/matzehuels/speakerbox/pkg/observability"
	"github.com/matzehuels/speakerbox/pkg/pipeline"
	"github.com/matzehuels/speakerbox/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "speakerbox"

	// defaultOutputBase is the file name (without extension) for rendered
	// artifacts when -o is not given.
	defaultOutputBase = "speaker_box"
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

	configPath string
	cfg        *config.Config

	// interactive reports whether prompts may be shown. Tests replace it.
	interactive func() bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:      newLogger(w, level),
		interactive: isInteractive,
	}
}

// SetLogLevel updates the logger's level. At debug level every pipeline,
// cache and HTTP event is logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Speakerbox designs loudspeaker enclosures and their cut sheets",
		Long: `Speakerbox sizes sealed and ported loudspeaker enclosures from a driver's
Thiele-Small parameters (fs, qts, vas), derives golden-ratio panel dimensions,
and writes a DXF cut sheet for the front, side and top/bottom panels.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", c.configPath, "config file (default: ~/.config/speakerbox/config.toml)")

	root.AddCommand(c.calculateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.savedCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Factories
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.cfg = &cfg
	c.Logger.Debug("loaded config", "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	return cfg, nil
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ch, err := cfg.OpenCache(ctx)
	if err != nil {
		// A broken cache never blocks a calculation.
		c.Logger.Warn("cache unavailable, continuing without it", "err", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return c.newRunnerWithCache(ch), nil
}

func (c *CLI) newRunnerWithCache(ch cache.Cache) *pipeline.Runner {
	return pipeline.NewRunner(ch, nil, c.Logger)
}

func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return cfg.OpenStore(ctx)
}

// extractClient creates a parameter extraction client backed by the
// configured cache. The caller closes the returned cache.
func (c *CLI) extractClient(ctx context.Context, apiKey string) (*extract.Client, cache.Cache, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	ch, err := c.openCache(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	return cfg.ExtractClient(apiKey, ch), ch, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatDXF}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
