package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchenplan/pkg/config"
	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/store"
	"github.com/matzehuels/kitchenplan/pkg/store/file"
	"github.com/matzehuels/kitchenplan/pkg/store/memory"
	"github.com/matzehuels/kitchenplan/pkg/store/mongo"
	"github.com/matzehuels/kitchenplan/pkg/store/redis"
	"github.com/matzehuels/kitchenplan/pkg/store/sqlite"
)

// openStore builds the configured backend and wraps it with store hooks.
func openStore(ctx context.Context, s config.StoreSettings) (store.Store, error) {
	ttl := s.TTL.Duration
	var (
		st  store.Store
		err error
	)
	switch s.Backend {
	case config.BackendMemory:
		st = memory.New(memory.Options{TTL: ttl, Capacity: s.Capacity})
	case config.BackendFile:
		st, err = file.New(s.Dir, ttl)
	case config.BackendRedis:
		st, err = redis.New(ctx, redis.Config{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
			TTL:      ttl,
		})
	case config.BackendMongo:
		st, err = mongo.New(ctx, mongo.Config{
			URI:      s.MongoURI,
			Database: s.MongoDatabase,
			TTL:      ttl,
		})
	case config.BackendSQLite:
		path := s.SQLitePath
		if path == "" {
			dir, derr := config.Dir()
			if derr != nil {
				return nil, derr
			}
			path = filepath.Join(dir, "kitchens.db")
		}
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
		st, err = sqlite.New(ctx, path, ttl)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", s.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store.Instrument(st, s.Backend), nil
}

// storeCommand creates the store maintenance command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Maintain the kitchen configuration store",
	}
	cmd.AddCommand(c.storeCleanupCommand())
	cmd.AddCommand(c.storeInfoCommand())
	return cmd
}

func (c *CLI) storeCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired kitchen configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			before, err := runner.List(ctx, 0)
			if err != nil {
				return err
			}
			if err := runner.Cleanup(ctx); err != nil {
				return err
			}
			after, err := runner.List(ctx, 0)
			if err != nil {
				return err
			}
			printSuccess("Store cleaned up")
			printDetail("%d live configurations (%d before)", len(after), len(before))
			return nil
		},
	}
}

func (c *CLI) storeInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the active store backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}
			printKeyValue("Backend", s.Store.Backend)
			printKeyValue("TTL", s.Store.TTL.String())
			switch s.Store.Backend {
			case config.BackendFile:
				dir := s.Store.Dir
				if dir == "" {
					dir, _ = file.DefaultDir()
				}
				printKeyValue("Directory", dir)
			case config.BackendRedis:
				printKeyValue("Address", s.Store.RedisAddr)
			case config.BackendMongo:
				printKeyValue("URI", s.Store.MongoURI)
			case config.BackendSQLite:
				printKeyValue("Database", s.Store.SQLitePath)
			}
			return nil
		},
	}
}
