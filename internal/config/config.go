// Package config resolves where the todo list lives and how it is printed.
//
// Values are layered, later sources winning:
//
//	defaults < config file < environment < command-line flags
//
// Flags are applied by the CLI after Load returns.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/roach88/todo/internal/store"
)

// AppName names the per-user config and data directories.
const AppName = "todo"

// ConfigFileName is the config file inside the config directory.
const ConfigFileName = "config.toml"

// Backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Default values.
const (
	DefaultBackend = BackendFile
	DefaultFormat  = "text"
)

// Environment variables.
const (
	EnvDataDir = "TODO_DATA_DIR"
	EnvBackend = "TODO_BACKEND"
	EnvFormat  = "TODO_FORMAT"
)

// ValidBackends lists the accepted backend names.
var ValidBackends = []string{BackendFile, BackendSQLite}

// Config holds the resolved settings.
type Config struct {
	// DataDir holds the backing store. Empty means the XDG data directory.
	DataDir string `toml:"data_dir"`

	// Backend is "file" (todo.txt) or "sqlite" (todo.db).
	Backend string `toml:"backend"`

	// Format is the output format used when --format is not given.
	Format string `toml:"format"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Backend: DefaultBackend,
		Format:  DefaultFormat,
	}
}

// Load builds a Config from defaults, the config file and the environment.
//
// If path is empty the default config path is used and a missing file is
// not an error. An explicitly given path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	err := loadConfigFile(cfg, path)
	if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	loadFromEnv(cfg)

	cfg.DataDir = expandPath(cfg.DataDir)
	return cfg, nil
}

// loadConfigFile decodes TOML from path into cfg.
// Keys that do not map to a Config field are rejected.
func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		cfg.Format = v
	}
}

// Validate checks that the settings name known values.
// Formats are validated by the CLI, which owns the list of formats.
func (c *Config) Validate() error {
	for _, b := range ValidBackends {
		if c.Backend == b {
			return nil
		}
	}
	return fmt.Errorf("invalid backend %q: must be one of %v", c.Backend, ValidBackends)
}

// ResolveDataDir returns DataDir, falling back to the XDG data directory.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	return DefaultDataDir()
}

// StorePath returns the path of the backing store for the configured backend.
func (c *Config) StorePath() (string, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	if c.Backend == BackendSQLite {
		return filepath.Join(dir, store.DatabaseName), nil
	}
	return filepath.Join(dir, store.FileName), nil
}
