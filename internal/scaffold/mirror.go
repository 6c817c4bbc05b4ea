package scaffold

import (
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
	execPerm os.FileMode = 0o755
)

// Mirror recursively copies srcDir from src into dstDir on dst.
//
// dstDir and any missing parents are created. Directories are recreated and
// files byte-copied; files that exist only at the destination are left in
// place. Copied files get 0644, or 0755 when the source file has any execute
// bit set.
func Mirror(src afero.Fs, srcDir string, dst afero.Fs, dstDir string) error {
	info, err := src.Stat(srcDir)
	if err != nil {
		return errors.Wrapf(err, "reading source directory %s", srcDir)
	}
	if !info.IsDir() {
		return errors.Newf("source %s is not a directory", srcDir)
	}

	if err := dst.MkdirAll(dstDir, dirPerm); err != nil {
		return errors.Wrapf(err, "creating directory %s", dstDir)
	}

	return mirrorDir(src, srcDir, dst, dstDir)
}

// mirrorDir copies the contents of srcDir into dstDir, which must exist.
func mirrorDir(src afero.Fs, srcDir string, dst afero.Fs, dstDir string) error {
	entries, err := afero.ReadDir(src, srcDir)
	if err != nil {
		return errors.Wrapf(err, "reading directory %s", srcDir)
	}

	for _, entry := range entries {
		srcPath := path.Join(srcDir, entry.Name())
		dstPath := filepath.Join(dstDir, entry.Name())

		if entry.IsDir() {
			if err := dst.MkdirAll(dstPath, dirPerm); err != nil {
				return errors.Wrapf(err, "creating directory %s", dstPath)
			}
			if err := mirrorDir(src, srcPath, dst, dstPath); err != nil {
				return err
			}
			continue
		}

		if err := copyFile(src, srcPath, dst, dstPath, entry.Mode()); err != nil {
			return err
		}
	}

	return nil
}

// copyFile copies a single file, normalizing its permissions.
func copyFile(src afero.Fs, srcPath string, dst afero.Fs, dstPath string, srcMode os.FileMode) error {
	in, err := src.Open(srcPath)
	if err != nil {
		return errors.Wrapf(err, "opening source file %s", srcPath)
	}
	defer in.Close()

	perm := filePerm
	if srcMode&0o111 != 0 {
		perm = execPerm
	}

	out, err := dst.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrapf(err, "creating destination file %s", dstPath)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "copying %s to %s", srcPath, dstPath)
	}

	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", dstPath)
	}

	// OpenFile leaves the mode of an existing file alone.
	if err := dst.Chmod(dstPath, perm); err != nil {
		return errors.Wrapf(err, "setting permissions on %s", dstPath)
	}

	return nil
}
