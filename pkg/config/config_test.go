package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/store"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvStore, "")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Store.Backend != BackendFile || s.Store.TTL.Duration != store.DefaultTTL {
		t.Errorf("defaults = %+v", s.Store)
	}
	if !s.Cache.Enabled || s.Server.Addr != ":8080" {
		t.Errorf("defaults = %+v / %+v", s.Cache, s.Server)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeConfigNotFound) {
		t.Errorf("err = %v, want CONFIG_NOT_FOUND", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvStore, "")
	path := writeFile(t, `
[store]
backend = "sqlite"
ttl = "1h30m"
capacity = 50
sqlite_path = "/tmp/k.db"

[cache]
enabled = false

[server]
addr = "127.0.0.1:9000"

[catalog]
materials = "/etc/kitchenplan/materials.toml"
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Store.Backend != BackendSQLite || s.Store.TTL.Duration != 90*time.Minute || s.Store.Capacity != 50 {
		t.Errorf("store = %+v", s.Store)
	}
	if s.Store.SQLitePath != "/tmp/k.db" {
		t.Errorf("sqlite_path = %q", s.Store.SQLitePath)
	}
	// Unset keys keep their defaults.
	if s.Store.RedisAddr != "localhost:6379" {
		t.Errorf("redis_addr default lost: %q", s.Store.RedisAddr)
	}
	if s.Cache.Enabled || s.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("cache/server = %+v / %+v", s.Cache, s.Server)
	}
	if s.Catalog.Materials != "/etc/kitchenplan/materials.toml" {
		t.Errorf("catalog = %+v", s.Catalog)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	path := writeFile(t, "[store]\nbackend = \"sqlite\"\n")
	t.Setenv(EnvStore, "memory")
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Store.Backend != BackendMemory {
		t.Errorf("backend = %q, want memory", s.Store.Backend)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvStore, "")
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[store\n"},
		{"unknown backend", "[store]\nbackend = \"postgres\"\n"},
		{"bad duration", "[store]\nttl = \"soon\"\n"},
		{"negative ttl", "[store]\nttl = \"-1h\"\n"},
		{"negative capacity", "[store]\ncapacity = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/kitchens"); got != filepath.Join(home, "kitchens") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %q", got)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	t.Setenv(EnvStore, "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	s := Default()
	s.Store.Backend = BackendRedis
	s.Store.TTL = Duration{2 * time.Hour}
	if err := Write(s, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Store.Backend != BackendRedis || got.Store.TTL.Duration != 2*time.Hour {
		t.Errorf("round trip = %+v", got.Store)
	}
}
