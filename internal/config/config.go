// Package config provides configuration management for claude-base-setup using Viper.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "CLAUDE_BASE_SETUP"

// ConfigDirEnv overrides the directory searched for config.yaml.
const ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

// Default values.
const (
	DefaultVersion   = 1
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultRetention = 5
)

// Config represents the top-level configuration structure.
type Config struct {
	Version      int          `mapstructure:"version" yaml:"version"`
	TemplatesDir string       `mapstructure:"templates_dir" yaml:"templates_dir"`
	Model        string       `mapstructure:"model" yaml:"model"`
	Backup       BackupConfig `mapstructure:"backup" yaml:"backup"`
}

// BackupConfig controls snapshots taken before destructive operations.
type BackupConfig struct {
	Enabled   bool `mapstructure:"enabled" yaml:"enabled"`
	Retention int  `mapstructure:"retention" yaml:"retention"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version: DefaultVersion,
		Model:   DefaultModel,
		Backup: BackupConfig{
			Retention: DefaultRetention,
		},
	}
}

// Init resets Viper and registers search paths, env bindings, and defaults.
// Call this once at application startup before accessing config values.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		viper.AddConfigPath(dir)
	} else {
		viper.AddConfigPath(paths.AppConfigDir())
	}

	// CLAUDE_BASE_SETUP_BACKUP_ENABLED maps to backup.enabled.
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault("version", d.Version)
	viper.SetDefault("templates_dir", d.TemplatesDir)
	viper.SetDefault("model", d.Model)
	viper.SetDefault("backup.enabled", d.Backup.Enabled)
	viper.SetDefault("backup.retention", d.Backup.Retention)
}

// Load reads and validates the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load: defaults are fine.
		case os.IsNotExist(err):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errs[0], "validating config"), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// FileUsed returns the config file Viper loaded, or "" when running on defaults.
func FileUsed() string {
	return viper.ConfigFileUsed()
}
