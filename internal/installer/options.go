package installer

import (
	"io"
	"slices"

	"github.com/thoreinstein/claude-base-setup/internal/backup"
	"github.com/thoreinstein/claude-base-setup/internal/cli/prompt"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
	"github.com/thoreinstein/claude-base-setup/internal/settings"
)

// Intent is the top-level action a run performs.
type Intent int

const (
	// IntentInstall mirrors the template tree into a new (or forced) root.
	IntentInstall Intent = iota
	// IntentUpdate replaces selected subtrees of an existing root.
	IntentUpdate
	// IntentRemove deletes the configuration root.
	IntentRemove
	// IntentHelp does nothing; the caller prints usage.
	IntentHelp
)

// String returns the intent name used in logs.
func (i Intent) String() string {
	switch i {
	case IntentInstall:
		return "install"
	case IntentUpdate:
		return "update"
	case IntentRemove:
		return "remove"
	case IntentHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Options selects what a run does and where.
type Options struct {
	// ProjectDir is the directory that holds (or will hold) the .claude root.
	ProjectDir string

	// Force replaces an existing root on install.
	Force bool

	// Remove deletes the root.
	Remove bool

	// SkipAPIKey skips the credential prompt and selects keyword injection.
	SkipAPIKey bool

	// Help makes the run a no-op.
	Help bool

	// Update names the subtrees to synchronize. Any entry selects IntentUpdate.
	Update []string

	// Model is written as ANTHROPIC_MODEL when a credential is saved.
	// Empty selects envfile.DefaultModel.
	Model string

	// Backup snapshots an existing root before it is replaced or removed.
	Backup bool
}

// Intent resolves the action with precedence help > remove > update > install.
func (o Options) Intent() Intent {
	switch {
	case o.Help:
		return IntentHelp
	case o.Remove:
		return IntentRemove
	case len(o.Update) > 0:
		return IntentUpdate
	default:
		return IntentInstall
	}
}

// updateOrder returns the requested subtrees in the order updates are applied,
// followed by any names that are not updatable.
func (o Options) updateOrder() (ordered, unknown []string) {
	for _, name := range paths.UpdatableSubtrees() {
		if slices.Contains(o.Update, name) {
			ordered = append(ordered, name)
		}
	}
	for _, name := range o.Update {
		if !slices.Contains(paths.UpdatableSubtrees(), name) && !slices.Contains(unknown, name) {
			unknown = append(unknown, name)
		}
	}
	return ordered, unknown
}

// Result describes what a run did.
type Result struct {
	Intent Intent

	// Updated lists the subtrees synchronized by an update, in apply order.
	Updated []string

	// Skipped lists the requested subtrees that could not be synchronized.
	Skipped []string

	// Mode is the injection mode selected by an install.
	Mode settings.InjectionMode

	// KeySaved reports whether a credential was written to .env.
	KeySaved bool

	// Removed reports whether a root was deleted, either by remove or by a
	// forced install.
	Removed bool

	// BackupID is the snapshot taken before a destructive step, if any.
	BackupID string
}

// Option configures an Installer.
type Option func(*Installer)

// WithPrompter sets the credential prompter. The default answers every
// question with an empty string.
func WithPrompter(p prompt.Prompter) Option {
	return func(i *Installer) {
		i.prompter = p
	}
}

// WithOutput sets the writers for status lines and per-step failures.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(i *Installer) {
		i.report = newReporter(stdout, stderr)
	}
}

// WithBackupManager sets the manager used when Options.Backup is set.
func WithBackupManager(m *backup.Manager) Option {
	return func(i *Installer) {
		i.backups = m
	}
}
