// Package config provides reading and writing of safechange configuration.
// Supports both global (~/.safechange/config.yaml) and local
// (.safechange/config.yaml) scopes.
// Reading: uses local if it exists, otherwise global.
// Writing: goes to the same place reads came from; --local forces local.
//
// The backup directory, log paths, change tag, naming scheme, and the
// backup-on-no-match policy all live here, and every component receives
// them at construction. Nothing reads ambient globals, so tests can point
// an entire invocation at a throwaway state directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.safechange/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is directory-specific config in .safechange/config.yaml
	ScopeLocal
)

// Defaults applied when not configured.
const (
	// DefaultStateDir holds backups and logs when no --dir or config
	// override is given.
	DefaultStateDir = "/var/lib/safechange"
	DefaultTag      = "change"
	DefaultScheme   = "sequential"
)

// Backup holds backup store configuration.
type Backup struct {
	Dir    *string `yaml:"dir,omitempty"`
	Tag    *string `yaml:"tag,omitempty"`
	Scheme *string `yaml:"scheme,omitempty"`
	Always *bool   `yaml:"always,omitempty"`
}

// Log holds activity log configuration.
type Log struct {
	File *string `yaml:"file,omitempty"`
	DB   *string `yaml:"db,omitempty"`
}

// Config contains configuration for safechange.
type Config struct {
	Backup Backup `yaml:"backup,omitempty"`
	Log    Log    `yaml:"log,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are acceptable.
func (c *Config) Validate() error {
	if c.Backup.Scheme != nil {
		s := *c.Backup.Scheme
		if s != "sequential" && s != "timestamp" {
			return fmt.Errorf("%w: backup.scheme must be sequential or timestamp, got %q", ErrInvalidValue, s)
		}
	}
	if c.Backup.Tag != nil {
		t := *c.Backup.Tag
		if t == "" || strings.ContainsAny(t, "/ \t\n") {
			return fmt.Errorf("%w: backup.tag must be non-empty with no spaces or slashes, got %q", ErrInvalidValue, t)
		}
	}
	return nil
}

// BackupDir returns the backup directory: configured, else
// <stateDir>/backups.
func (c *Config) BackupDir(stateDir string) string {
	if c.Backup.Dir != nil && *c.Backup.Dir != "" {
		return *c.Backup.Dir
	}
	return filepath.Join(stateDir, "backups")
}

// LogFile returns the text activity log path: configured, else
// <stateDir>/activity.log.
func (c *Config) LogFile(stateDir string) string {
	if c.Log.File != nil && *c.Log.File != "" {
		return *c.Log.File
	}
	return filepath.Join(stateDir, "activity.log")
}

// LogDB returns the audit query database path: configured, else
// <stateDir>/audit.db.
func (c *Config) LogDB(stateDir string) string {
	if c.Log.DB != nil && *c.Log.DB != "" {
		return *c.Log.DB
	}
	return filepath.Join(stateDir, "audit.db")
}

// Tag returns the change tag used to namespace sequential backup versions.
func (c *Config) Tag() string {
	if c.Backup.Tag == nil || *c.Backup.Tag == "" {
		return DefaultTag
	}
	return *c.Backup.Tag
}

// Scheme returns the backup naming scheme name.
func (c *Config) Scheme() string {
	if c.Backup.Scheme == nil || *c.Backup.Scheme == "" {
		return DefaultScheme
	}
	return *c.Backup.Scheme
}

// BackupAlways reports whether modify backs up before searching, so even a
// no-match attempt leaves a backup (defaults to true).
func (c *Config) BackupAlways() bool {
	if c.Backup.Always == nil {
		return true
	}
	return *c.Backup.Always
}

// Scope returns where this config was loaded from.
func (c *Config) Scope() Scope { return c.scope }

// LocalPath returns the path to the local config file.
func LocalPath() string {
	return filepath.Join(".safechange", "config.yaml")
}

// GlobalPath returns the path to the global config file:
// ~/.safechange/config.yaml.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoConfigPath, err)
	}
	return filepath.Join(home, ".safechange", "config.yaml"), nil
}

// Load reads config: local if it exists, otherwise global. A missing file
// is not an error - an empty Config with defaults is returned.
func Load() (*Config, error) {
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	return LoadScope(ScopeGlobal)
}

// LoadScope reads config from the given scope, whether or not the file
// exists yet.
func LoadScope(scope Scope) (*Config, error) {
	var path string
	if scope == ScopeLocal {
		path = LocalPath()
	} else {
		p, err := GlobalPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{path: path, scope: scope}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config back to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		return ErrNoConfigPath
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(c.path, data, 0o644)
}
