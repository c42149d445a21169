// Package cli implements the stacksketch command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksketch/pkg/buildinfo"
	"github.com/matzehuels/stacksketch/pkg/cache"
	"github.com/matzehuels/stacksketch/pkg/jobs"
	"github.com/matzehuels/stacksketch/pkg/layout"
	"github.com/matzehuels/stacksketch/pkg/scene"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stacksketch"
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

	// Global flags.
	noCache   bool
	redisAddr string
	workers   int
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
		Use:          appName,
		Short:        "Stacksketch generates procedural stacks and scatters for instanced rendering",
		Long:         `Stacksketch builds recursively subdivided block towers and randomly scattered instance sets from TOML scene files, animates them over time and exports per-frame instance transforms.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the element cache")
	flags.StringVar(&c.redisAddr, "redis", "", "share built elements through a Redis server at `addr`")
	flags.IntVar(&c.workers, "workers", 0, "transform evaluation workers (0 = one per CPU, 1 = serial)")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.frameCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Layout Factory
// =============================================================================

// scheduler returns the evaluation scheduler selected by --workers.
func (c *CLI) scheduler() *jobs.Scheduler {
	switch {
	case c.workers == 1:
		return jobs.Serial()
	case c.workers > 1:
		return &jobs.Scheduler{Workers: c.workers, BatchSize: jobs.DefaultBatchSize}
	}
	return jobs.Default()
}

// openCache returns the element cache selected by the global flags. An
// unreachable Redis server falls back to the file cache.
func (c *CLI) openCache(ctx context.Context) cache.Cache {
	if c.noCache {
		return cache.NewNullCache()
	}
	if c.redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.redisAddr})
		if err == nil {
			c.Logger.Debug("using redis cache", "addr", c.redisAddr)
			return rc
		}
		c.Logger.Warn("redis unavailable, using file cache", "addr", c.redisAddr, "err", err)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// session is a loaded scene with its layouter and cache.
type session struct {
	scene  *scene.Scene
	layout layout.Layouter
	cache  cache.Cache
}

func (s *session) Close() error {
	return s.cache.Close()
}

// openScene loads path and builds its layouter. Element cache keys are
// scoped by scene name so scenes sharing a Redis server stay apart.
func (c *CLI) openScene(ctx context.Context, path string) (*session, error) {
	sc, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	ch := c.openCache(ctx)
	l, err := sc.NewLayouter(layout.Options{
		Scheduler: c.scheduler(),
		Cache:     ch,
		Keyer:     cache.NewScopedKeyer(cache.NewDefaultKeyer(), "scene:"+sc.Name+":"),
		Logger:    c.Logger.With("scene", sc.Name),
	})
	if err != nil {
		ch.Close()
		return nil, err
	}
	c.Logger.Debug("loaded scene", "path", path, "kind", sc.Kind)
	return &session{scene: sc, layout: l, cache: ch}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stacksketch/).
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
