// Package commands implements the CLI commands for claude-base-setup.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claude-base-setup/cmd"
	"github.com/thoreinstein/claude-base-setup/internal/config"
	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/logging"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
)

// debugEnv enables debug (1, true) or trace (2) logging when no -v is given.
const debugEnv = config.EnvPrefix + "_DEBUG"

// Install, update, and remove flags.
var (
	force          bool
	remove         bool
	uninstall      bool
	skipAPIKey     bool
	noAPIKey       bool
	updateHooks    bool
	updateAgents   bool
	updateRules    bool
	updateCommands bool
	backupFlag     bool
)

// projectDir holds the value of the -C/--dir flag.
var projectDir string

// templatesDir holds the value of the --templates flag.
var templatesDir string

// configPath holds the value of the --config flag.
var configPath string

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// cfg holds the loaded configuration; configLoadErr any error loading it.
var (
	cfg           *config.Config
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.BoolVarP(&force, "force", "f", false, "overwrite existing .claude directory")
	flags.BoolVarP(&remove, "remove", "r", false, "remove .claude directory (alias: --uninstall)")
	flags.BoolVar(&uninstall, "uninstall", false, "alias for --remove")
	flags.BoolVarP(&skipAPIKey, "skip-api-key", "s", false, "skip API key prompt (alias: --no-api-key)")
	flags.BoolVar(&noAPIKey, "no-api-key", false, "alias for --skip-api-key")
	flags.BoolVar(&updateHooks, "update-hooks", false, "update only hooks/")
	flags.BoolVar(&updateAgents, "update-agents", false, "update only agents/")
	flags.BoolVar(&updateRules, "update-rules", false, "update only rules/")
	flags.BoolVar(&updateCommands, "update-commands", false, "update only commands/")
	flags.BoolVar(&backupFlag, "backup", false, "snapshot .claude before replacing or removing it")
	flags.StringVar(&templatesDir, "templates", "", "use templates from this directory instead of the bundled set")
	_ = flags.MarkHidden("uninstall")
	_ = flags.MarkHidden("no-api-key")

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&projectDir, "dir", "C", "",
		"project directory (default: current directory)")
	persistent.StringVar(&configPath, "config", "",
		"config file (default: $XDG_CONFIG_HOME/claude-base-setup/config.yaml)")
	persistent.CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	persistent.BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	persistent.StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	persistent.StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.Summary()
	rootCmd.SetVersionTemplate(paths.AppName + " version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configPath)
}

var rootCmd = &cobra.Command{
	Use:   paths.AppName,
	Short: "Initialize .claude configuration for Claude Code",
	Long: `claude-base-setup - Initialize .claude configuration for Claude Code

Copies hooks, rules, agents, slash commands, skills, and component recipes
into the project's .claude directory, then optionally saves an Anthropic API
key to .env so the prompt hook can use semantic rule matching.

Selective updates (preserves settings.json and CLAUDE.md):
  --update-hooks     Update only hooks/
  --update-agents    Update only agents/
  --update-rules     Update only rules/
  --update-commands  Update only commands/

What's included:
  • hooks/     Smart context injection on every prompt
  • rules/     Behavioral guidelines (code standards, etc.)
  • agents/    Task workers (pre-code-check, package-checker, etc.)
  • commands/  Slash commands (/review, /test, /commit)
  • CLAUDE.md  Project context (auto-loaded by Claude)

Learn more: https://github.com/fr0mpy/claude-base-setup`,
	Example: `  # Initialize .claude in the current directory
  claude-base-setup

  # Overwrite an existing .claude directory
  claude-base-setup --force

  # Skip the API key prompt (CI/automation)
  claude-base-setup --skip-api-key

  # Refresh agents and rules from the bundled templates
  claude-base-setup --update-agents --update-rules

  # Remove .claude, keeping a snapshot
  claude-base-setup --remove --backup

  See Also: claude-base-setup doctor`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if configLoadErr != nil && cmd.Name() != "version" {
			return errors.NewConfigError(configLoadErr)
		}
		return nil
	},
	RunE: runRoot,
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv(debugEnv); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return errors.NewUserError(err, "")
	}

	opts := logging.Options{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		opts.File = f
	}

	logger := logging.New(opts)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// loadedConfig returns the loaded configuration, or defaults when loading
// has not run (for example in tests calling run functions directly).
func loadedConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
