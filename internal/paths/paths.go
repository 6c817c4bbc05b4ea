package paths

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the application name used for tool directories.
const AppName = "claude-base-setup"

// Fixed names inside a project.
const (
	ConfigRootName  = ".claude"
	EnvFileName     = ".env"
	GitignoreName   = ".gitignore"
	SettingsName    = "settings.json"
	ContextFileName = "CLAUDE.md"
)

// Subtree names inside the configuration root.
const (
	SubtreeHooks            = "hooks"
	SubtreeRules            = "rules"
	SubtreeAgents           = "agents"
	SubtreeCommands         = "commands"
	SubtreeSkills           = "skills"
	SubtreeComponentRecipes = "component-recipes"
)

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// Subtrees returns every subtree name in the configuration root.
func Subtrees() []string {
	return []string{
		SubtreeHooks,
		SubtreeRules,
		SubtreeAgents,
		SubtreeCommands,
		SubtreeSkills,
		SubtreeComponentRecipes,
	}
}

// UpdatableSubtrees returns the subtrees that can be selectively updated,
// in the order updates are applied.
func UpdatableSubtrees() []string {
	return []string{
		SubtreeHooks,
		SubtreeAgents,
		SubtreeRules,
		SubtreeCommands,
	}
}

// ResolveProjectDir returns the absolute project directory.
// An empty dir resolves to the current working directory.
func ResolveProjectDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "getting working directory")
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", dir)
	}
	return abs, nil
}

// ConfigRoot returns <project>/.claude.
func ConfigRoot(projectDir string) string {
	return filepath.Join(projectDir, ConfigRootName)
}

// EnvFile returns <project>/.env.
func EnvFile(projectDir string) string {
	return filepath.Join(projectDir, EnvFileName)
}

// Gitignore returns <project>/.gitignore.
func Gitignore(projectDir string) string {
	return filepath.Join(projectDir, GitignoreName)
}

// SettingsFile returns <root>/settings.json for a configuration root.
func SettingsFile(root string) string {
	return filepath.Join(root, SettingsName)
}

// HooksDir returns <root>/hooks for a configuration root.
func HooksDir(root string) string {
	return filepath.Join(root, SubtreeHooks)
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func DataHome() string {
	return xdg.DataHome
}

// AppConfigDir returns <ConfigHome>/claude-base-setup.
func AppConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// BackupDir returns <DataHome>/claude-base-setup/backups.
func BackupDir() string {
	return filepath.Join(DataHome(), AppName, "backups")
}

// ProjectKey returns a directory-safe identifier for a project directory:
// the sanitized base name followed by a short hash of the absolute path.
// Two projects with the same base name in different locations get different keys.
func ProjectKey(projectDir string) string {
	clean := filepath.Clean(projectDir)
	sum := sha256.Sum256([]byte(clean))

	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, filepath.Base(clean))
	base = strings.Trim(base, ".")
	if base == "" {
		base = "project"
	}

	return base + "-" + hex.EncodeToString(sum[:])[:12]
}
