package scaffold

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
)

// HookScriptExt is the extension that marks a hook as a shell script.
const HookScriptExt = ".sh"

// hookScripts lists the shell scripts directly inside root/hooks.
// A missing hooks directory yields no scripts and no error.
func hookScripts(fsys afero.Fs, root string) ([]string, error) {
	dir := paths.HooksDir(root)

	ok, err := afero.DirExists(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "checking %s", dir)
	}
	if !ok {
		return nil, nil
	}

	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var scripts []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), HookScriptExt) {
			continue
		}
		scripts = append(scripts, filepath.Join(dir, entry.Name()))
	}
	return scripts, nil
}

// NormalizeExecutable sets rwxr-xr-x on every shell script directly inside
// root/hooks and returns the scripts it touched. It is a no-op when the hooks
// directory does not exist, and idempotent.
func NormalizeExecutable(fsys afero.Fs, root string) ([]string, error) {
	scripts, err := hookScripts(fsys, root)
	if err != nil {
		return nil, err
	}

	for _, script := range scripts {
		if err := fsys.Chmod(script, execPerm); err != nil {
			return nil, errors.Wrapf(err, "chmod %s", script)
		}
	}
	return scripts, nil
}

// NonExecutableHooks returns the hook scripts missing any of the owner, group,
// or other execute bits.
func NonExecutableHooks(fsys afero.Fs, root string) ([]string, error) {
	scripts, err := hookScripts(fsys, root)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, script := range scripts {
		info, err := fsys.Stat(script)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", script)
		}
		if info.Mode().Perm()&0o111 != 0o111 {
			missing = append(missing, script)
		}
	}
	return missing, nil
}
