package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size" yaml:"max_size"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Daily      bool   `mapstructure:"daily" yaml:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" yaml:"level"`
	Path       string            `mapstructure:"path" yaml:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation" yaml:"rotation"`
	Components map[string]string `mapstructure:"components" yaml:"components"`
}

// HashConfig tunes the hashing strategies.
type HashConfig struct {
	PartialSize string `mapstructure:"partial_size" yaml:"partial_size"`
	ChunkSize   string `mapstructure:"chunk_size" yaml:"chunk_size"`
}

// ScanConfig selects what the scanner visits.
type ScanConfig struct {
	Extensions     []string `mapstructure:"extensions" yaml:"extensions"`
	IgnorePrefixes []string `mapstructure:"ignore_prefixes" yaml:"ignore_prefixes"`
	Exclude        []string `mapstructure:"exclude" yaml:"exclude"`
	MinSize        string   `mapstructure:"min_size" yaml:"min_size"`
}

// WorkersConfig bounds concurrency. Zero selects a tuned value.
type WorkersConfig struct {
	Scan int `mapstructure:"scan" yaml:"scan"`
	Hash int `mapstructure:"hash" yaml:"hash"`
}

// ManifestConfig controls the run history.
type ManifestConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Path          string `mapstructure:"path" yaml:"path"`
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	DefaultPath string         `mapstructure:"default_path" yaml:"default_path"`
	Policy      string         `mapstructure:"policy" yaml:"policy"`
	Output      string         `mapstructure:"output" yaml:"output"`
	Sort        string         `mapstructure:"sort" yaml:"sort"`
	Limit       int            `mapstructure:"limit" yaml:"limit"`
	Hash        HashConfig     `mapstructure:"hash" yaml:"hash"`
	Scan        ScanConfig     `mapstructure:"scan" yaml:"scan"`
	Workers     WorkersConfig  `mapstructure:"workers" yaml:"workers"`
	Manifest    ManifestConfig `mapstructure:"manifest" yaml:"manifest"`
	Logging     LoggingConfig  `mapstructure:"logging" yaml:"logging"`

	// File is the config file that was read, empty when defaults were used.
	File string `mapstructure:"-" yaml:"-"`
}

// PartialSizeBytes parses Hash.PartialSize.
func (c *Config) PartialSizeBytes() (int64, error) {
	return parsePositiveSize("hash.partial_size", c.Hash.PartialSize)
}

// ChunkSizeBytes parses Hash.ChunkSize.
func (c *Config) ChunkSizeBytes() (int64, error) {
	return parsePositiveSize("hash.chunk_size", c.Hash.ChunkSize)
}

// MinSizeBytes parses Scan.MinSize. An empty value means no minimum.
func (c *Config) MinSizeBytes() (int64, error) {
	if strings.TrimSpace(c.Scan.MinSize) == "" {
		return 0, nil
	}
	n, err := types.ParseSize(c.Scan.MinSize)
	if err != nil {
		return 0, fmt.Errorf("scan.min_size: %w", err)
	}
	return n, nil
}

func parsePositiveSize(key, value string) (int64, error) {
	n, err := types.ParseSize(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %q", key, value)
	}
	return n, nil
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/photodedup/config.yaml
//   - $HOME/.config/photodedup/config.yaml
//
// Environment variables are prefixed with PHOTODEDUP_ (e.g., PHOTODEDUP_POLICY,
// PHOTODEDUP_HASH_PARTIAL_SIZE).
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is like Load but reads the given file instead of searching the
// standard locations. An explicit file that does not exist is an error.
func LoadFrom(file string) (*Config, error) {
	return LoadWithFlags(file, nil, nil)
}

// LoadWithFlags is like LoadFrom and additionally binds command-line flags.
// bindings maps config keys (e.g. "hash.partial_size") to flag names; a flag
// overrides the file and environment only when it was set explicitly.
func LoadWithFlags(file string, flags *pflag.FlagSet, bindings map[string]string) (*Config, error) {
	v := viper.New()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	if file != "" {
		path, err := ExpandPath(file)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, AppName))
		}
		v.AddConfigPath(filepath.Join(homeDir, ".config", AppName))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, homeDir)

	if flags != nil {
		for key, name := range bindings {
			flag := flags.Lookup(name)
			if flag == nil {
				return nil, fmt.Errorf("unknown flag %q bound to %q", name, key)
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %q: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if cfg.Manifest.Path, err = ExpandPath(cfg.Manifest.Path); err != nil {
		return nil, err
	}
	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault("default_path", DefaultPath)
	v.SetDefault("policy", DefaultPolicy)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("sort", DefaultSort)
	v.SetDefault("limit", DefaultLimit)

	v.SetDefault("hash.partial_size", DefaultPartialSize)
	v.SetDefault("hash.chunk_size", DefaultChunkSize)

	v.SetDefault("scan.extensions", DefaultExtensions)
	v.SetDefault("scan.ignore_prefixes", DefaultIgnorePrefixes)
	v.SetDefault("scan.exclude", []string{})
	v.SetDefault("scan.min_size", DefaultMinSize)

	v.SetDefault("workers.scan", 0)
	v.SetDefault("workers.hash", 0)

	v.SetDefault("manifest.enabled", true)
	v.SetDefault("manifest.retention_days", DefaultRetentionDays)
	v.SetDefault("manifest.path", filepath.Join(configDirFor(homeDir), ".manifest"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", DefaultComponentLevels)
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil && os.Getenv("XDG_CONFIG_HOME") == "" {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return configDirFor(homeDir), nil
}

func configDirFor(homeDir string) string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName)
	}
	return filepath.Join(homeDir, ".config", AppName)
}

// ConfigPath returns the path of the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ManifestDir returns the default manifest directory path.
func ManifestDir() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, ".manifest"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists and returns its
// path. An existing file is left untouched.
func WriteDefault() (string, error) {
	if err := EnsureConfigDir(); err != nil {
		return "", err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	manifestDir, err := ManifestDir()
	if err != nil {
		return "", err
	}

	defaultConfig := fmt.Sprintf(`# photodedup configuration

# Directory scanned when none is given on the command line
default_path: %s

# Detection policy: prefilter, exact, partial or legacy
#   prefilter  partial hash narrows candidates, full hash confirms (recommended)
#   exact      full hash of every same-size file
#   partial    partial hash only; fast but may report false duplicates
#   legacy     reproduces the historical report of partial-hash groups
policy: %s

# Report format: pretty, plain, json, jsonl, yaml, csv, tsv, markdown, paths or null
output: %s

# Group order (size, count or path) and number of groups shown (0 = all)
sort: %s
limit: %d

# Hashing
hash:
  partial_size: %s
  chunk_size: %s

# What to scan
scan:
  extensions: [%s]
  ignore_prefixes: ["_", ".", "node_modules"]
  exclude: []
  min_size: "%s"

# Concurrency (0 = tuned to this machine)
workers:
  scan: 0
  hash: 0

# Run history
manifest:
  enabled: true
  path: %s
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/photodedup/photodedup.log)
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    scanner: info
    dedup: info
    hasher: warn
    output: info
    manifest: info
    cli: info
`, DefaultPath, DefaultPolicy, DefaultOutput, DefaultSort, DefaultLimit,
		DefaultPartialSize, DefaultChunkSize,
		strings.Join(DefaultExtensions, ", "), DefaultMinSize,
		manifestDir, DefaultRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// StateDir returns $XDG_STATE_HOME/photodedup/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), AppName+".log")
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}
