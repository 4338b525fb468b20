// ABOUTME: Repertoire configuration management with backend selection
// ABOUTME: Handles settings, scoring overrides, and storage backend factory

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/harper/repertoire/internal/results"
	"github.com/harper/repertoire/internal/storage"
)

const (
	// BackendSQLite stores everything in a single SQLite file.
	BackendSQLite = "sqlite"
	// BackendBadger stores everything in a Badger directory.
	BackendBadger = "badger"

	// DefaultBook is the repertoire name used when none is configured.
	DefaultBook = "main"

	appName           = "repertoire"
	configFilename    = "config.json"
	defaultDBFilename = "repertoire.db"
	badgerDirname     = "badger"
)

var validate = validator.New()

// Config stores repertoire configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "badger".
	Backend string `json:"backend,omitempty" validate:"omitempty,oneof=sqlite badger"`

	// DataDir is the root directory for data storage.
	// SQLite puts repertoire.db here. Badger uses the badger/ subdirectory.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/repertoire.
	DataDir string `json:"data_dir,omitempty"`

	// Book is the repertoire commands work on when --book is not given.
	Book string `json:"book,omitempty" validate:"omitempty,excludesall=:/"`

	// Scoring overrides individual drill scoring parameters; omitted fields
	// keep their defaults.
	Scoring *results.Config `json:"scoring,omitempty"`
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetBook returns the configured book name, defaulting to "main".
func (c *Config) GetBook() string {
	if c.Book == "" {
		return DefaultBook
	}
	return c.Book
}

// UnmarshalJSON decodes c. Scoring fields missing from a scoring block keep
// their default values.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	var raw struct {
		Scoring json.RawMessage `json:"scoring"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var p plain
	if len(raw.Scoring) > 0 && string(raw.Scoring) != "null" {
		scoring := results.DefaultConfig()
		p.Scoring = &scoring
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Config(p)
	return nil
}

// GetScoring returns the scoring parameters, falling back to the defaults.
func (c *Config) GetScoring() results.Config {
	if c.Scoring == nil {
		return results.DefaultConfig()
	}
	return *c.Scoring
}

// xdgDir returns the repertoire directory under $env, or under ~/fallback
// when env is unset.
func xdgDir(env, fallback string) string {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, fallback)
	}
	return filepath.Join(base, appName)
}

func defaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// defaultFirstRunConfig returns the appropriate default config for first-time runs.
// An existing Badger directory keeps Badger as the backend; everyone else gets SQLite.
func defaultFirstRunConfig() *Config {
	found, err := storage.IsDirNonEmpty(filepath.Join(defaultDataDir(), badgerDirname))
	if err != nil {
		slog.Warn("could not check for existing database", "error", err)
	}
	if found {
		return &Config{Backend: BackendBadger}
	}
	return &Config{Backend: BackendSQLite}
}

// ExpandPath expands a leading ~ to the user's home directory. ~user forms
// are left alone.
func ExpandPath(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/') {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, rest)
}

// StoragePath returns the file or directory the configured backend uses.
func (c *Config) StoragePath() string {
	if c.GetBackend() == BackendBadger {
		return filepath.Join(c.GetDataDir(), badgerDirname)
	}
	return filepath.Join(c.GetDataDir(), defaultDBFilename)
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage(readOnly bool) (storage.Repository, error) {
	path := c.StoragePath()

	switch c.GetBackend() {
	case BackendSQLite:
		if readOnly {
			return storage.NewReadOnlySQLiteDB(path)
		}
		return storage.NewSQLiteDB(path)
	case BackendBadger:
		return storage.NewBadgerStore(path, readOnly)
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.GetBackend())
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), configFilename)
}

// Load reads config from disk. On first run the default config is written
// back so later runs keep the same backend.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := defaultFirstRunConfig()
		if err := cfg.Save(); err != nil {
			slog.Warn("could not save default config", "path", path, "error", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return atomicWrite(GetConfigPath(), data)
}

// atomicWrite writes data to a temp file in the target directory and renames it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user config directory
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}
