// Package templates ships the configuration tree that claude-base-setup
// copies into a project's .claude directory.
//
// The tree is embedded into the binary. A directory on disk can stand in for
// it (for local template development) through [Open].
package templates

import (
	"embed"
	"io/fs"
	"os"

	"github.com/spf13/afero"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
)

//go:embed claude
var embedded embed.FS

// rootDir is the embedded directory that mirrors a configuration root.
const rootDir = "claude"

// Root is the path of the template root inside the filesystems returned by
// this package. Subtrees are addressed relative to it ("hooks", "agents").
const Root = "."

// FS returns a read-only filesystem over the embedded template tree.
func FS() afero.Fs {
	sub, err := fs.Sub(embedded, rootDir)
	if err != nil {
		// rootDir is a constant valid path; fs.Sub cannot fail on it.
		panic(err)
	}
	return afero.FromIOFS{FS: sub}
}

// Open returns the template source. An empty dir selects the embedded tree;
// otherwise dir must be an existing directory, exposed read-only.
func Open(dir string) (afero.Fs, error) {
	if dir == "" {
		return FS(), nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(errors.ErrTemplatesNotFound, "%s", dir)
		}
		return nil, errors.Wrapf(err, "checking templates directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(errors.ErrTemplatesNotFound, "%s is not a directory", dir)
	}

	return afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}
