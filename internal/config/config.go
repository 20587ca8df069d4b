// Package config loads the distill configuration file.
//
// The file is optional. Values are layered: built-in defaults, then
// ~/.config/distill/config.yaml (or the file named with --config), then
// environment variables, then command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/source/wfdb"
)

// WFDBConfig configures the annotation file source
type WFDBConfig struct {
	Path []string `yaml:"path,omitempty"`
}

// DatabaseConfig configures the annotation archives
type DatabaseConfig struct {
	Path       string `yaml:"path,omitempty"`
	Connection string `yaml:"connection,omitempty"`
}

// LogConfig configures the log file
type LogConfig struct {
	Debug bool   `yaml:"debug"`
	Dir   string `yaml:"dir,omitempty"`
}

// Config models config.yaml
type Config struct {
	Source   string         `yaml:"source"`
	WFDB     WFDBConfig     `yaml:"wfdb"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

const defaultConfigYAML = `# distill configuration
# Annotation source: wfdb, sqlite or postgres.
source: wfdb

wfdb:
  # Directories searched for RECORD.ANNOTATOR files, in order.
  # The WFDB environment variable overrides this list.
  path:
    - .

database:
  # SQLite archive file used by 'distill init' and 'distill archive'.
  path: ~/.config/distill/distill.db
  # PostgreSQL connection string without a password. Leave empty to use
  # DISTILL_DB_CONNECTION or the OS keyring.
  connection: ""

log:
  debug: false
  dir: ~/.config/distill/logs
`

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Source: constants.SourceWFDB,
		WFDB:   WFDBConfig{Path: []string{"."}},
		Database: DatabaseConfig{
			Path: filepath.Join(constants.DefaultConfigDir, constants.DefaultDBFile),
		},
		Log: LogConfig{
			Dir: filepath.Join(constants.DefaultConfigDir, "logs"),
		},
	}
}

// DefaultPath returns the location of the default config file
func DefaultPath() string {
	return filepath.Join(constants.DefaultConfigDir, constants.DefaultConfigFile)
}

// Load reads the config file at path over the defaults. A missing file is
// only an error when required is set, i.e. the user named it explicitly.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	expanded, err := ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, cfg.expand()
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", expanded, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", expanded, err)
	}
	return cfg, cfg.expand()
}

// WriteDefault writes the commented default config file unless one exists
func WriteDefault(path string) (bool, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(expanded); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(defaultConfigYAML), 0600); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// ApplyEnv overrides values from the environment
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(constants.EnvSource)); v != "" {
		c.Source = v
	}
	if v := getenv(constants.EnvWFDBPath); v != "" {
		c.WFDB.Path = wfdb.SplitPath(v)
	}
	if v := getenv(constants.EnvDBConnection); v != "" {
		c.Database.Connection = v
	}
}

// Validate checks the values a user can get wrong
func (c Config) Validate() error {
	switch c.Source {
	case constants.SourceWFDB, constants.SourceSQLite, constants.SourcePostgres:
	default:
		return fmt.Errorf("unknown source %q (want %s, %s or %s)", c.Source,
			constants.SourceWFDB, constants.SourceSQLite, constants.SourcePostgres)
	}
	return nil
}

func (c *Config) expand() error {
	var err error
	if c.Database.Path, err = ExpandHome(c.Database.Path); err != nil {
		return err
	}
	if c.Log.Dir, err = ExpandHome(c.Log.Dir); err != nil {
		return err
	}
	for i, dir := range c.WFDB.Path {
		if c.WFDB.Path[i], err = ExpandHome(dir); err != nil {
			return err
		}
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
