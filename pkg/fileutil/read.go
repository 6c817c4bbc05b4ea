package fileutil

import (
	"io"

	"github.com/spf13/afero"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
)

// MaxFileSize bounds every settings and manifest read. Neither kind of
// file is legitimately larger than a few kilobytes.
const MaxFileSize = 1 << 20

// ErrFileTooLarge indicates that a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads path from the OS filesystem. See ReadFsWithLimit.
func ReadFileWithLimit(path string) ([]byte, error) {
	return ReadFsWithLimit(afero.NewOsFs(), path)
}

// ReadFsWithLimit reads path from fsys, refusing files larger than
// MaxFileSize. A missing file yields an error matching fs.ErrNotExist.
func ReadFsWithLimit(fsys afero.Fs, path string) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	// One byte past the limit tells a file that grew after Stat apart from
	// one that is exactly MaxFileSize.
	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
