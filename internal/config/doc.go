// Package config provides configuration management for the claude-base-setup
// CLI.
//
// The configuration file is optional. It lives at
// <XDG config>/claude-base-setup/config.yaml, or in the directory named by
// CLAUDE_BASE_SETUP_CONFIG_DIR, and uses YAML:
//
//	version: 1
//	templates_dir: /path/to/templates  # optional on-disk template tree
//	model: claude-3-5-haiku-latest     # written to .env with a new API key
//	backup:
//	  enabled: false                   # snapshot .claude before destructive runs
//	  retention: 5
//
// Every key can be overridden by an environment variable with the
// CLAUDE_BASE_SETUP_ prefix, dots replaced by underscores
// (CLAUDE_BASE_SETUP_BACKUP_ENABLED=true). Command-line flags win over both.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//
// Load validates the result; validation failures are marked with
// errors.ErrInvalidConfig.
package config
