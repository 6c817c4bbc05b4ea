package doctor

import (
	"fmt"
	"slices"

	"github.com/spf13/afero"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/scaffold"
)

// Fixer is an optional interface that checks can implement to support auto-remediation.
// Checks that implement Fixer can fix issues they detect when the --fix flag is used.
type Fixer interface {
	// CanFix returns true if this check has fixable issues.
	// Must be called after Run() to check if there are issues that can be fixed.
	CanFix() bool

	// Fix attempts to remediate the issues found by Run().
	// Returns a slice of FixResult indicating what was fixed or why it couldn't be fixed.
	// Must be called after Run().
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix operation.
type FixResult struct {
	// Path is the file or directory that was targeted for fixing.
	Path string `json:"path" yaml:"path"`

	// Fixed indicates whether the fix was successfully applied.
	Fixed bool `json:"fixed" yaml:"fixed"`

	// Description explains what was fixed or why it couldn't be fixed.
	Description string `json:"description" yaml:"description"`

	// Error contains the error if the fix failed.
	Error error `json:"-" yaml:"-"`
}

// HookFixer restores the execute bits on hook scripts.
// It is embedded in HookPermissionCheck to provide fix capability.
type HookFixer struct {
	fs      afero.Fs
	root    string
	scripts []string
}

// CanFix returns true if the last run found non-executable scripts.
func (f *HookFixer) CanFix() bool {
	return len(f.scripts) > 0
}

// CountFixable returns the number of scripts awaiting a fix.
func (f *HookFixer) CountFixable() int {
	return len(f.scripts)
}

// Fix normalizes every hook script and reports the outcome for each script
// the last run flagged.
func (f *HookFixer) Fix() []FixResult {
	results := make([]FixResult, 0, len(f.scripts))

	if _, err := scaffold.NormalizeExecutable(f.fs, f.root); err != nil {
		for _, script := range f.scripts {
			results = append(results, FixResult{
				Path:        script,
				Description: fmt.Sprintf("failed to chmod %04o: %v", hookPerm, err),
				Error:       errors.Wrapf(err, "chmod %04o %s", hookPerm, script),
			})
		}
		return results
	}

	remaining, err := scaffold.NonExecutableHooks(f.fs, f.root)
	if err != nil {
		remaining = f.scripts
	}

	for _, script := range f.scripts {
		result := FixResult{Path: script}
		if slices.Contains(remaining, script) {
			result.Description = "still not executable"
			result.Error = errors.Newf("%s is still not executable", script)
		} else {
			result.Fixed = true
			result.Description = fmt.Sprintf("chmod %04o", hookPerm)
		}
		results = append(results, result)
	}

	f.scripts = remaining
	return results
}

// setIssues stores the scripts found by the check for later fixing.
func (f *HookFixer) setIssues(fsys afero.Fs, root string, scripts []string) {
	f.fs = fsys
	f.root = root
	f.scripts = scripts
}
