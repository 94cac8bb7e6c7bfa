// Package config reads the kitchenplan settings file.
//
// Settings live in $XDG_CONFIG_HOME/kitchenplan/config.toml (by default
// ~/.config/kitchenplan/config.toml). A missing file yields [Default].
// The KITCHENPLAN_STORE environment variable overrides the store backend;
// command-line flags override both.
//
//	[store]
//	backend = "sqlite"
//	ttl = "720h"
//	sqlite_path = "~/.config/kitchenplan/kitchens.db"
//
//	[cache]
//	enabled = true
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/store"
)

// EnvStore overrides Store.Backend.
const EnvStore = "KITCHENPLAN_STORE"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// Backends lists the accepted store backends.
var Backends = []string{BackendMemory, BackendFile, BackendRedis, BackendMongo, BackendSQLite}

// Settings is the parsed settings file.
type Settings struct {
	Store   StoreSettings   `toml:"store"`
	Cache   CacheSettings   `toml:"cache"`
	Server  ServerSettings  `toml:"server"`
	Catalog CatalogSettings `toml:"catalog"`
}

// StoreSettings selects and configures the configuration store.
type StoreSettings struct {
	Backend       string   `toml:"backend"`
	TTL           Duration `toml:"ttl"`
	Capacity      int      `toml:"capacity"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	SQLitePath    string   `toml:"sqlite_path"`
}

// CacheSettings configures the layout cache.
type CacheSettings struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// ServerSettings configures `kitchenplan serve`.
type ServerSettings struct {
	Addr string `toml:"addr"`
}

// CatalogSettings points at optional catalog override files.
type CatalogSettings struct {
	Materials string `toml:"materials"`
	Modules   string `toml:"modules"`
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses "90m", "720h" and the like.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText writes the duration back as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings: a file store, caching enabled.
func Default() Settings {
	return Settings{
		Store: StoreSettings{
			Backend:       BackendFile,
			TTL:           Duration{store.DefaultTTL},
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "kitchenplan",
		},
		Cache:  CacheSettings{Enabled: true},
		Server: ServerSettings{Addr: ":8080"},
	}
}

// Dir returns the kitchenplan configuration directory.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kitchenplan"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConfigNotFound, err, "locate home directory")
	}
	return filepath.Join(home, ".config", "kitchenplan"), nil
}

// Path returns the settings file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the settings file at path, or at Path() when path is empty.
// A missing file is not an error unless path was given explicitly.
func Load(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Settings{}, err
		}
		path = p
	}

	s := Default()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return Settings{}, errors.Wrap(errors.ErrCodeConfigNotFound, err, "settings file %s", path)
			}
		} else {
			return Settings{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse settings %s", path)
		}
	}

	if env := os.Getenv(EnvStore); env != "" {
		s.Store.Backend = env
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	s.expandPaths()
	return s, nil
}

// Validate rejects unknown backends and negative limits.
func (s Settings) Validate() error {
	known := false
	for _, b := range Backends {
		if s.Store.Backend == b {
			known = true
		}
	}
	if !known {
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown store backend %q (must be one of: %s)", s.Store.Backend, strings.Join(Backends, ", "))
	}
	if s.Store.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "store ttl must not be negative")
	}
	if s.Store.Capacity < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "store capacity must not be negative")
	}
	return nil
}

func (s *Settings) expandPaths() {
	for _, p := range []*string{&s.Store.Dir, &s.Store.SQLitePath, &s.Cache.Dir, &s.Catalog.Materials, &s.Catalog.Modules} {
		*p = expandHome(*p)
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Write saves s to path as TOML, creating parent directories.
func Write(s Settings, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(s)
}
