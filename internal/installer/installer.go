package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/thoreinstein/claude-base-setup/internal/backup"
	"github.com/thoreinstein/claude-base-setup/internal/cli/prompt"
	"github.com/thoreinstein/claude-base-setup/internal/envfile"
	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/logging"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
	"github.com/thoreinstein/claude-base-setup/internal/scaffold"
	"github.com/thoreinstein/claude-base-setup/internal/settings"
	"github.com/thoreinstein/claude-base-setup/internal/templates"
)

// APIKeyQuestion is the prompt shown when asking for a credential.
const APIKeyQuestion = "   Enter your ANTHROPIC_API_KEY (or press Enter to skip): "

const conflictHint = "Use --force to overwrite, or use selective updates: " +
	"--update-hooks, --update-agents, --update-rules, --update-commands"

// Installer applies install, update, and remove flows to a project.
type Installer struct {
	sync     *scaffold.Synchronizer
	target   afero.Fs
	prompter prompt.Prompter
	report   *reporter
	backups  *backup.Manager
}

// New creates an Installer that copies from the template filesystem tmpl.
// Subtrees are top-level directories of tmpl.
func New(tmpl afero.Fs, opts ...Option) *Installer {
	target := afero.NewOsFs()
	i := &Installer{
		sync:     scaffold.NewSynchronizer(tmpl, target),
		target:   target,
		prompter: prompt.Static(""),
		report:   defaultReporter(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run performs the action selected by opts.Intent.
func (i *Installer) Run(ctx context.Context, opts Options) (*Result, error) {
	intent := opts.Intent()
	result := &Result{Intent: intent}

	logger := logging.FromContext(ctx).With("intent", intent.String())
	ctx = logging.NewContext(ctx, logger)

	if intent == IntentHelp {
		return result, nil
	}

	projectDir, err := paths.ResolveProjectDir(opts.ProjectDir)
	if err != nil {
		return result, errors.NewSystemError(err, "")
	}
	opts.ProjectDir = projectDir
	logger.Debug("resolved project", "dir", projectDir)

	switch intent {
	case IntentRemove:
		err = i.remove(ctx, opts, result)
	case IntentUpdate:
		err = i.update(ctx, opts, result)
	default:
		err = i.install(ctx, opts, result)
	}
	return result, err
}

// rootExists reports whether the configuration root is present.
func (i *Installer) rootExists(root string) (bool, error) {
	_, err := i.target.Stat(root)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, errors.NewSystemError(errors.Wrapf(err, "checking %s", root), "")
	}
}

func (i *Installer) install(ctx context.Context, opts Options, result *Result) error {
	logger := logging.FromContext(ctx)
	root := paths.ConfigRoot(opts.ProjectDir)

	i.report.installing()

	exists, err := i.rootExists(root)
	if err != nil {
		return err
	}
	if exists && !opts.Force {
		return errors.NewUserError(errors.Wrapf(errors.ErrAlreadyInitialized, "%s", root), conflictHint)
	}

	ok, err := afero.DirExists(i.sync.Source, templates.Root)
	if err != nil || !ok {
		return errors.NewUserError(errors.ErrTemplatesNotFound, "Package may be corrupted. Reinstall claude-base-setup.")
	}

	if exists {
		if err := i.snapshot(ctx, opts, result, "force"); err != nil {
			return err
		}
		if err := i.target.RemoveAll(root); err != nil {
			return errors.NewSystemError(errors.Wrapf(err, "removing %s", root), "")
		}
		result.Removed = true
		logger.Info("removed existing configuration root", "root", root)
		i.report.removedExisting()
	}

	if err := i.sync.MirrorAll(templates.Root, root); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "copying templates"), "")
	}
	scripts, err := scaffold.NormalizeExecutable(i.target, root)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	for _, script := range scripts {
		logger.Log(ctx, logging.LevelTrace, "marked executable", "path", script)
	}
	logger.Info("created configuration root", "root", root, "hooks", len(scripts))
	i.report.created()

	mode, err := i.resolveCredential(ctx, opts, result)
	if err != nil {
		return err
	}
	result.Mode = mode

	patched, err := settings.SetInjectionMode(root, mode)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	if !patched {
		logger.Debug("settings left unchanged; hook command path not present")
	}

	i.report.ready()
	return nil
}

// resolveCredential decides the injection mode, prompting for and saving a
// credential unless the prompt is skipped.
func (i *Installer) resolveCredential(ctx context.Context, opts Options, result *Result) (settings.InjectionMode, error) {
	logger := logging.FromContext(ctx)

	if opts.SkipAPIKey {
		i.report.skippedPrompt()
		return settings.ModeKeyword, nil
	}

	i.report.promptIntro()
	answer, err := i.prompter.Prompt(ctx, APIKeyQuestion)
	if err != nil {
		return settings.ModeUnknown, errors.NewSystemError(errors.Wrap(err, "reading API key"), "")
	}
	answer = strings.TrimSpace(answer)

	if answer == "" {
		i.report.keySkipped()
		return settings.ModeKeyword, nil
	}

	model := opts.Model
	if model == "" {
		model = envfile.DefaultModel
	}

	envPath := paths.EnvFile(opts.ProjectDir)
	if err := envfile.Upsert(envPath, envfile.KeyAPIKey, answer); err != nil {
		return settings.ModeUnknown, errors.NewSystemError(err, "")
	}
	if err := envfile.Upsert(envPath, envfile.KeyModel, model); err != nil {
		return settings.ModeUnknown, errors.NewSystemError(err, "")
	}
	result.KeySaved = true
	logger.Info("saved credential", "path", envPath, "model", model)

	i.report.keySaved(model)
	return settings.ModeSemantic, nil
}

func (i *Installer) update(ctx context.Context, opts Options, result *Result) error {
	logger := logging.FromContext(ctx)
	root := paths.ConfigRoot(opts.ProjectDir)

	ordered, unknown := opts.updateOrder()
	if len(unknown) > 0 {
		err := errors.Wrapf(errors.ErrUnknownSubtree, "%s", strings.Join(unknown, ", "))
		return errors.NewUserError(err, "Updatable components: "+strings.Join(paths.UpdatableSubtrees(), ", "))
	}

	exists, err := i.rootExists(root)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewUserError(errors.Wrapf(errors.ErrNotInitialized, "%s", root),
			"Run without flags to initialize first.")
	}

	if err := i.snapshot(ctx, opts, result, "update"); err != nil {
		return err
	}

	i.report.updating()

	for _, name := range ordered {
		if err := i.sync.SyncSubtree(root, name); err != nil {
			if !errors.Is(err, errors.ErrSubtreeNotFound) {
				return errors.NewSystemError(err, "")
			}
			logger.Debug("skipping subtree", "subtree", name, "error", err)
			i.report.subtreeFailed(name, err)
			result.Skipped = append(result.Skipped, name)
			continue
		}
		if name == paths.SubtreeHooks {
			if _, err := scaffold.NormalizeExecutable(i.target, root); err != nil {
				return errors.NewSystemError(err, "")
			}
		}
		logger.Info("updated subtree", "subtree", name)
		result.Updated = append(result.Updated, name)
	}

	if len(result.Updated) == 0 {
		i.report.nothingUpdated()
		return nil
	}
	i.report.updated(result.Updated)
	return nil
}

func (i *Installer) remove(ctx context.Context, opts Options, result *Result) error {
	logger := logging.FromContext(ctx)
	root := paths.ConfigRoot(opts.ProjectDir)

	exists, err := i.rootExists(root)
	if err != nil {
		return err
	}
	if !exists {
		i.report.nothingToRemove()
		return nil
	}

	if err := i.snapshot(ctx, opts, result, "remove"); err != nil {
		return err
	}

	if err := i.target.RemoveAll(root); err != nil {
		return errors.NewSystemError(errors.Wrapf(err, "removing %s", root), "")
	}
	result.Removed = true
	logger.Info("removed configuration root", "root", root)
	i.report.removed()
	return nil
}

// snapshot backs up the existing root when opts.Backup is set.
// A failed backup aborts the run before anything is changed.
func (i *Installer) snapshot(ctx context.Context, opts Options, result *Result, reason string) error {
	if !opts.Backup {
		return nil
	}
	if i.backups == nil {
		i.backups = backup.NewManager()
	}

	manifest, err := i.backups.Backup(opts.ProjectDir, reason)
	if errors.Is(err, backup.ErrNothingToBackUp) {
		logging.FromContext(ctx).Debug("configuration root is empty; no backup taken")
		return nil
	}
	if err != nil {
		return errors.NewSystemError(errors.Wrap(err, "backing up configuration root"),
			"Nothing was changed. Rerun without --backup to skip the snapshot.")
	}
	result.BackupID = manifest.ID

	dir := filepath.Join(i.backups.Dir(opts.ProjectDir), manifest.ID)
	logging.FromContext(ctx).Info("backed up configuration root", "id", manifest.ID, "files", manifest.Size(), "dir", dir)
	i.report.backedUp(manifest.ID, dir)
	return nil
}
