package commands

import (
	"context"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/claude-base-setup/cmd"
	"github.com/thoreinstein/claude-base-setup/internal/backup"
	"github.com/thoreinstein/claude-base-setup/internal/cli/prompt"
	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/installer"
	"github.com/thoreinstein/claude-base-setup/internal/logging"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
	"github.com/thoreinstein/claude-base-setup/internal/templates"
)

// installOptions collects the root command flags into installer options.
func installOptions() installer.Options {
	c := loadedConfig()

	var update []string
	for name, set := range map[string]bool{
		paths.SubtreeHooks:    updateHooks,
		paths.SubtreeAgents:   updateAgents,
		paths.SubtreeRules:    updateRules,
		paths.SubtreeCommands: updateCommands,
	} {
		if set {
			update = append(update, name)
		}
	}

	return installer.Options{
		ProjectDir: projectDir,
		Force:      force,
		Remove:     remove || uninstall,
		SkipAPIKey: skipAPIKey || noAPIKey,
		Update:     update,
		Model:      c.Model,
		Backup:     backupFlag || c.Backup.Enabled,
	}
}

// openTemplates returns the template source: --templates, then the config
// file's templates_dir, then the bundled set.
func openTemplates() (afero.Fs, error) {
	dir := templatesDir
	if dir == "" {
		dir = loadedConfig().TemplatesDir
	}
	tmpl, err := templates.Open(dir)
	if err != nil {
		return nil, errors.NewUserError(err, "Templates directory not found. Package may be corrupted.")
	}
	return tmpl, nil
}

// sourceFor opens the template source for intent. Only an install requires
// one. Remove never reads templates, and an update reports every requested
// subtree as missing from an empty source.
func sourceFor(ctx context.Context, intent installer.Intent) (afero.Fs, error) {
	tmpl, err := openTemplates()
	if err == nil {
		return tmpl, nil
	}
	if intent == installer.IntentInstall {
		return nil, err
	}
	logging.FromContext(ctx).Debug("template source unavailable", "error", err)
	return afero.NewReadOnlyFs(afero.NewMemMapFs()), nil
}

func newBackupManager() *backup.Manager {
	return backup.NewManager(
		backup.WithRetentionCount(loadedConfig().Backup.Retention),
		backup.WithToolVersion(cmd.Version),
	)
}

func runRoot(c *cobra.Command, _ []string) error {
	opts := installOptions()
	tmpl, err := sourceFor(c.Context(), opts.Intent())
	if err != nil {
		return err
	}

	inst := installer.New(tmpl,
		installer.WithOutput(c.OutOrStdout(), c.ErrOrStderr()),
		installer.WithPrompter(prompt.NewLinePrompterWithIO(c.InOrStdin(), c.OutOrStdout())),
		installer.WithBackupManager(newBackupManager()),
	)

	_, err = inst.Run(c.Context(), opts)
	return err
}
