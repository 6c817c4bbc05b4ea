package doctor

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/thoreinstein/claude-base-setup/internal/backup"
	"github.com/thoreinstein/claude-base-setup/internal/envfile"
	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
	"github.com/thoreinstein/claude-base-setup/internal/scaffold"
	"github.com/thoreinstein/claude-base-setup/internal/settings"
)

// Check categories.
const (
	CategoryProject  = "project"
	CategoryHooks    = "hooks"
	CategorySettings = "settings"
	CategoryEnv      = "env"
	CategoryBackup   = "backup"
)

// hookPerm is the mode hook scripts are expected to carry.
const hookPerm os.FileMode = 0o755

// DefaultChecks returns every check for projectDir in reporting order.
// A nil manager omits the backup check.
func DefaultChecks(projectDir string, fsys afero.Fs, mgr *backup.Manager) []Check {
	checks := []Check{
		NewConfigRootCheck(projectDir),
		NewLayoutCheck(projectDir),
		NewHookPermissionCheck(projectDir, fsys),
		NewInjectionModeCheck(projectDir),
		NewEnvFileCheck(projectDir),
	}
	if mgr != nil {
		checks = append(checks, NewBackupCheck(projectDir, mgr))
	}
	return checks
}

// rootExists reports whether the configuration root of projectDir is a directory.
func rootExists(projectDir string) bool {
	info, err := os.Stat(paths.ConfigRoot(projectDir))
	return err == nil && info.IsDir()
}

// skipped is the result of a check that needs an installed configuration root.
func skipped(c Check) *CheckResult {
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityInfo,
		Message:  "skipped: configuration root not found",
	}
}

// ConfigRootCheck verifies the configuration root exists.
type ConfigRootCheck struct {
	projectDir string
}

var _ Check = (*ConfigRootCheck)(nil)

// NewConfigRootCheck creates a configuration root check.
func NewConfigRootCheck(projectDir string) *ConfigRootCheck {
	return &ConfigRootCheck{projectDir: projectDir}
}

// Name returns the unique identifier for this check.
func (c *ConfigRootCheck) Name() string { return "config-root" }

// Category returns the grouping for this check.
func (c *ConfigRootCheck) Category() string { return CategoryProject }

// Run executes the check.
func (c *ConfigRootCheck) Run() *CheckResult {
	root := paths.ConfigRoot(c.projectDir)
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": root},
	}

	info, err := os.Stat(root)
	switch {
	case os.IsNotExist(err):
		result.Status = SeverityError
		result.Message = "configuration root not found"
		result.FixHint = "run: " + paths.AppName
	case err != nil:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat configuration root: %v", err)
	case !info.IsDir():
		result.Status = SeverityError
		result.Message = "expected directory but found file"
		result.FixHint = "remove " + root + " and run: " + paths.AppName
	default:
		result.Status = SeverityPass
		result.Message = "configuration root present"
	}
	return result
}

// LayoutCheck verifies every expected subtree and top-level file is present.
type LayoutCheck struct {
	projectDir string
}

var _ Check = (*LayoutCheck)(nil)

// NewLayoutCheck creates a layout check.
func NewLayoutCheck(projectDir string) *LayoutCheck {
	return &LayoutCheck{projectDir: projectDir}
}

// Name returns the unique identifier for this check.
func (c *LayoutCheck) Name() string { return "layout" }

// Category returns the grouping for this check.
func (c *LayoutCheck) Category() string { return CategoryProject }

// Run executes the check.
func (c *LayoutCheck) Run() *CheckResult {
	if !rootExists(c.projectDir) {
		return skipped(c)
	}
	root := paths.ConfigRoot(c.projectDir)

	var missing, updates []string
	needsForce := false

	updatable := map[string]bool{}
	for _, name := range paths.UpdatableSubtrees() {
		updatable[name] = true
	}

	for _, name := range paths.Subtrees() {
		info, err := os.Stat(filepath.Join(root, name))
		if err == nil && info.IsDir() {
			continue
		}
		missing = append(missing, name+"/")
		if updatable[name] {
			updates = append(updates, "--update-"+name)
		} else {
			needsForce = true
		}
	}

	for _, name := range []string{paths.SettingsName, paths.ContextFileName} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			missing = append(missing, name)
			needsForce = true
		}
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}
	if len(missing) == 0 {
		result.Status = SeverityPass
		result.Message = "all subtrees and files present"
		return result
	}

	result.Status = SeverityWarning
	result.Message = "missing: " + strings.Join(missing, ", ")
	result.Details = map[string]any{"missing": missing}
	if needsForce {
		result.FixHint = paths.AppName + " --force (replaces the whole configuration root)"
	} else {
		result.FixHint = paths.AppName + " " + strings.Join(updates, " ")
	}
	return result
}

// HookPermissionCheck verifies every hook script is executable.
type HookPermissionCheck struct {
	HookFixer
	projectDir string
	fs         afero.Fs
}

var (
	_ Check = (*HookPermissionCheck)(nil)
	_ Fixer = (*HookPermissionCheck)(nil)
)

// NewHookPermissionCheck creates a hook permission check over fsys.
func NewHookPermissionCheck(projectDir string, fsys afero.Fs) *HookPermissionCheck {
	return &HookPermissionCheck{projectDir: projectDir, fs: fsys}
}

// Name returns the unique identifier for this check.
func (c *HookPermissionCheck) Name() string { return "hook-permissions" }

// Category returns the grouping for this check.
func (c *HookPermissionCheck) Category() string { return CategoryHooks }

// Run executes the check.
func (c *HookPermissionCheck) Run() *CheckResult {
	c.setIssues(c.fs, "", nil)
	if !rootExists(c.projectDir) {
		return skipped(c)
	}
	root := paths.ConfigRoot(c.projectDir)

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	scripts, err := scaffold.NonExecutableHooks(c.fs, root)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot inspect hooks: %v", err)
		return result
	}

	c.setIssues(c.fs, root, scripts)

	if len(scripts) == 0 {
		result.Status = SeverityPass
		result.Message = "all hook scripts are executable"
		return result
	}

	names := make([]string, 0, len(scripts))
	for _, s := range scripts {
		names = append(names, filepath.Base(s))
	}

	result.Status = SeverityWarning
	result.Message = fmt.Sprintf("%d hook script(s) not executable: %s", len(scripts), strings.Join(names, ", "))
	result.Details = map[string]any{"scripts": scripts}
	result.Fixable = true
	result.FixHint = paths.AppName + " doctor --fix"
	return result
}

// InjectionModeCheck reports which script the prompt-submit hook runs.
type InjectionModeCheck struct {
	projectDir string
	getenv     func(string) string
}

var _ Check = (*InjectionModeCheck)(nil)

// NewInjectionModeCheck creates an injection mode check.
func NewInjectionModeCheck(projectDir string) *InjectionModeCheck {
	return &InjectionModeCheck{projectDir: projectDir, getenv: os.Getenv}
}

// Name returns the unique identifier for this check.
func (c *InjectionModeCheck) Name() string { return "injection-mode" }

// Category returns the grouping for this check.
func (c *InjectionModeCheck) Category() string { return CategorySettings }

// Run executes the check.
func (c *InjectionModeCheck) Run() *CheckResult {
	if !rootExists(c.projectDir) {
		return skipped(c)
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	mode, command, err := settings.ReadInjectionMode(paths.ConfigRoot(c.projectDir))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = SeverityWarning
		result.Message = "settings.json not found"
		result.FixHint = paths.AppName + " --force"
		return result
	case errors.Is(err, errors.ErrInvalidSettings):
		result.Status = SeverityError
		result.Message = "settings.json is not valid JSON"
		return result
	case err != nil:
		result.Status = SeverityError
		result.Message = err.Error()
		return result
	}

	result.Details = map[string]any{"mode": mode.String(), "command": command}

	switch {
	case command == "":
		result.Status = SeverityWarning
		result.Message = "no UserPromptSubmit hook configured"
	case mode == settings.ModeKeyword:
		result.Status = SeverityPass
		result.Message = "keyword injection"
	case mode == settings.ModeSemantic:
		if c.hasAPIKey() {
			result.Status = SeverityPass
			result.Message = "semantic injection"
		} else {
			result.Status = SeverityWarning
			result.Message = "semantic injection enabled but " + envfile.KeyAPIKey + " is not set"
			result.FixHint = "add " + envfile.KeyAPIKey + " to .env or the environment"
		}
	default:
		result.Status = SeverityInfo
		result.Message = "custom hook command: " + command
	}
	return result
}

// hasAPIKey reports whether the key is set in .env or the environment.
func (c *InjectionModeCheck) hasAPIKey() bool {
	if c.getenv(envfile.KeyAPIKey) != "" {
		return true
	}
	values, err := envfile.Read(paths.EnvFile(c.projectDir))
	return err == nil && values[envfile.KeyAPIKey] != ""
}

// EnvFileCheck reports on the project's .env and whether git ignores it.
type EnvFileCheck struct {
	projectDir string
}

var _ Check = (*EnvFileCheck)(nil)

// NewEnvFileCheck creates an env file check.
func NewEnvFileCheck(projectDir string) *EnvFileCheck {
	return &EnvFileCheck{projectDir: projectDir}
}

// Name returns the unique identifier for this check.
func (c *EnvFileCheck) Name() string { return "env-file" }

// Category returns the grouping for this check.
func (c *EnvFileCheck) Category() string { return CategoryEnv }

// Run executes the check.
func (c *EnvFileCheck) Run() *CheckResult {
	path := paths.EnvFile(c.projectDir)
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		result.Status = SeverityInfo
		result.Message = "no .env file"
		return result
	}

	values, err := envfile.Read(path)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot parse .env: %v", err)
		return result
	}

	details := make(map[string]any, len(values))
	for k, v := range MaskSecrets(values) {
		details[k] = v
	}
	result.Details = details

	if values[envfile.KeyAPIKey] == "" {
		result.Status = SeverityInfo
		result.Message = ".env has no " + envfile.KeyAPIKey
		return result
	}

	ignored, err := gitignoreCovers(paths.Gitignore(c.projectDir), paths.EnvFileName)
	if err != nil || !ignored {
		result.Status = SeverityWarning
		result.Message = ".env holds an API key but is not listed in .gitignore"
		result.FixHint = "echo .env >> .gitignore"
		return result
	}

	result.Status = SeverityPass
	result.Message = ".env holds " + envfile.KeyAPIKey + " and is git-ignored"
	return result
}

// gitignoreCovers reports whether the top-level .gitignore at path ignores
// name. Only the pattern forms that can match a root-level file are
// considered; negations un-ignore.
func gitignoreCovers(path, name string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	ignored := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		negate := strings.HasPrefix(line, "!")
		pattern := strings.TrimPrefix(line, "!")
		pattern = strings.TrimPrefix(pattern, "**/")
		pattern = strings.TrimPrefix(pattern, "/")
		if strings.HasSuffix(pattern, "/") {
			// Directory-only pattern.
			continue
		}

		if ok, _ := filepath.Match(pattern, name); ok {
			ignored = !negate
		}
	}
	return ignored, scanner.Err()
}

// BackupCheck reports the newest snapshot and verifies its integrity.
type BackupCheck struct {
	projectDir string
	manager    *backup.Manager
}

var _ Check = (*BackupCheck)(nil)

// NewBackupCheck creates a backup check.
func NewBackupCheck(projectDir string, mgr *backup.Manager) *BackupCheck {
	return &BackupCheck{projectDir: projectDir, manager: mgr}
}

// Name returns the unique identifier for this check.
func (c *BackupCheck) Name() string { return "backups" }

// Category returns the grouping for this check.
func (c *BackupCheck) Category() string { return CategoryBackup }

// Run executes the check.
func (c *BackupCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	latest, err := c.manager.Latest(c.projectDir)
	switch {
	case errors.Is(err, backup.ErrNoBackupsFound):
		result.Status = SeverityInfo
		result.Message = "no backups"
		return result
	case err != nil:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("cannot list backups: %v", err)
		return result
	}

	result.Details = map[string]any{
		"id":         latest.ID,
		"created_at": latest.CreatedAt.Format(time.RFC3339),
		"files":      latest.Size(),
		"path":       filepath.Join(c.manager.Dir(c.projectDir), latest.ID),
	}

	if err := c.manager.Verify(c.projectDir, latest.ID); err != nil {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("latest backup %s failed verification", latest.ID)
		result.Details["error"] = err.Error()
		return result
	}

	result.Status = SeverityInfo
	result.Message = fmt.Sprintf("latest backup %s (%d files)", latest.ID, latest.Size())
	return result
}
