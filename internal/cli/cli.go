package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchenplan/pkg/buildinfo"
	"github.com/matzehuels/kitchenplan/pkg/cache"
	"github.com/matzehuels/kitchenplan/pkg/catalog"
	"github.com/matzehuels/kitchenplan/pkg/config"
	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "kitchenplan"

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

	// settingsPath is the --settings flag; empty means config.Path().
	settingsPath string
	// storeBackend is the --store flag; it overrides the settings file.
	storeBackend string
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
		Short: "Kitchenplan turns kitchen configs into 3D module layouts",
		Long: `Kitchenplan validates declarative kitchen configurations, resolves them into
positioned 3D module trees and stores the results for later retrieval.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.settingsPath, "settings", "", "settings file (default: $XDG_CONFIG_HOME/kitchenplan/config.toml)")
	root.PersistentFlags().StringVar(&c.storeBackend, "store", "", "store backend: memory, file, redis, mongo, sqlite")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.saveCommand())
	root.AddCommand(c.getCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.materialsCommand())
	root.AddCommand(c.modulesCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Settings & Runner Factory
// =============================================================================

// settings loads the settings file and applies command-line overrides.
func (c *CLI) settings() (config.Settings, error) {
	s, err := config.Load(c.settingsPath)
	if err != nil {
		return config.Settings{}, err
	}
	if c.storeBackend != "" {
		s.Store.Backend = c.storeBackend
		if err := s.Validate(); err != nil {
			return config.Settings{}, err
		}
	}
	return s, nil
}

// writeSettings writes the default settings to the --settings path or
// config.Path().
func (c *CLI) writeSettings(force bool) error {
	path := c.settingsPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}
	if err := writeNew(path, force, func() error {
		return config.Write(config.Default(), path)
	}); err != nil {
		return err
	}
	printSuccess("Settings written")
	printFile(path)
	return nil
}

// newRunner creates a pipeline runner wired to the configured cache,
// catalog and store.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	s, err := c.settings()
	if err != nil {
		return nil, err
	}
	return c.runnerFor(ctx, s, noCache)
}

func (c *CLI) runnerFor(ctx context.Context, s config.Settings, noCache bool) (*pipeline.Runner, error) {
	cat, err := loadCatalog(s.Catalog)
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx, s.Store)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(newCache(s.Cache, noCache), nil, c.Logger)
	c.Logger.Debug("runner ready", "store", s.Store.Backend, "cache", s.Cache.Enabled && !noCache)
	return r.WithCatalog(cat).WithStore(st), nil
}

func loadCatalog(s config.CatalogSettings) (*catalog.Catalog, error) {
	if s.Materials == "" && s.Modules == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(s.Materials, s.Modules)
}

func newCache(s config.CacheSettings, noCache bool) cache.Cache {
	if noCache || !s.Enabled {
		return cache.NewNullCache()
	}
	dir := s.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		dir = d
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

// cacheDir returns the cache directory using XDG standard (~/.cache/kitchenplan/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "locate home directory")
	}
	return filepath.Join(home, ".cache", appName), nil
}
