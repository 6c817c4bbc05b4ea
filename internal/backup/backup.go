package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
	"github.com/thoreinstein/claude-base-setup/pkg/fileutil"
)

const (
	idLayout = "20060102T150405"

	// filesDir holds the copied tree inside a snapshot directory.
	filesDir = "files"
)

// Manager creates, lists, and prunes snapshots of configuration roots.
type Manager struct {
	rootDir        string
	retentionCount int
	toolVersion    string
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets the number of snapshots to retain per project.
// Values below one are ignored.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// WithToolVersion records v in every manifest.
func WithToolVersion(v string) Option {
	return func(m *Manager) {
		m.toolVersion = v
	}
}

// withClock overrides time.Now for tests.
func withClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.BackupDir(),
		retentionCount: DefaultRetentionCount,
		toolVersion:    "dev",
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the directory holding all snapshots of projectDir.
func (m *Manager) Dir(projectDir string) string {
	return filepath.Join(m.rootDir, paths.ProjectKey(projectDir))
}

// Backup snapshots the configuration root of projectDir and prunes snapshots
// beyond the retention count.
//
// Every regular file under the root is copied with its permissions and a
// SHA256 hash. An empty root returns ErrNothingToBackUp and leaves no snapshot
// directory behind.
func (m *Manager) Backup(projectDir, reason string) (*Manifest, error) {
	if projectDir == "" {
		return nil, errors.New("project directory is required")
	}
	root := paths.ConfigRoot(projectDir)

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Newf("%s is not a directory", root)
	}

	now := m.now()
	id, err := m.reserveID(projectDir, now)
	if err != nil {
		return nil, err
	}
	snapshot := filepath.Join(m.Dir(projectDir), id)

	files, err := copyTree(root, filepath.Join(snapshot, filesDir))
	if err != nil {
		os.RemoveAll(snapshot)
		return nil, errors.Wrapf(err, "backing up %s", root)
	}
	if len(files) == 0 {
		os.RemoveAll(snapshot)
		return nil, ErrNothingToBackUp
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		CreatedAt:   now.UTC(),
		Project:     projectDir,
		Reason:      reason,
		Files:       files,
		ToolVersion: m.toolVersion,
		ID:          id,
	}

	if err := fileutil.AtomicWriteJSON(filepath.Join(snapshot, ManifestName), manifest, 0o644); err != nil {
		os.RemoveAll(snapshot)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(projectDir, m.retentionCount); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}

	return manifest, nil
}

// reserveID creates and returns a snapshot directory name unique for the project.
// Snapshots taken within the same second get a numeric suffix.
func (m *Manager) reserveID(projectDir string, now time.Time) (string, error) {
	dir := m.Dir(projectDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating backup directory")
	}

	base := now.Format(idLayout)
	for i := 0; i < 1000; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s-%d", base, i)
		}
		err := os.Mkdir(filepath.Join(dir, id), 0o755)
		if err == nil {
			return id, nil
		}
		if !os.IsExist(err) {
			return "", errors.Wrap(err, "creating backup directory")
		}
	}
	return "", errors.Newf("too many backups at %s", base)
}

// List returns all snapshots of projectDir, newest first.
// Directories without a readable manifest are skipped.
func (m *Manager) List(projectDir string) ([]Manifest, error) {
	entries, err := os.ReadDir(m.Dir(projectDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(projectDir, entry.Name())
		if err != nil {
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})

	return manifests, nil
}

// Latest returns the newest snapshot of projectDir.
func (m *Manager) Latest(projectDir string) (*Manifest, error) {
	manifests, err := m.List(projectDir)
	if err != nil {
		return nil, err
	}
	return &manifests[0], nil
}

// Get returns the manifest for a specific snapshot.
func (m *Manager) Get(projectDir, id string) (*Manifest, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, errors.Newf("invalid backup ID %q", id)
	}

	manifestPath := filepath.Join(m.Dir(projectDir), id, ManifestName)
	data, err := fileutil.ReadFileWithLimit(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", id)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}

	manifest.ID = id
	return &manifest, nil
}

// Verify re-hashes every file of a snapshot against its manifest.
func (m *Manager) Verify(projectDir, id string) error {
	manifest, err := m.Get(projectDir, id)
	if err != nil {
		return err
	}

	base := filepath.Join(m.Dir(projectDir), id, filesDir)
	for _, f := range manifest.Files {
		hash, err := hashFile(filepath.Join(base, filepath.FromSlash(f.RelPath)))
		if err != nil {
			return errors.Wrapf(ErrBackupCorrupted, "%s: %v", f.RelPath, err)
		}
		if hash != f.SHA256Hash {
			return errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", f.RelPath)
		}
	}
	return nil
}

// Prune removes snapshots of projectDir beyond the newest keep.
func (m *Manager) Prune(projectDir string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List(projectDir)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	for i := keep; i < len(manifests); i++ {
		snapshot := filepath.Join(m.Dir(projectDir), manifests[i].ID)
		if err := os.RemoveAll(snapshot); err != nil {
			return errors.Wrapf(err, "removing backup %s", manifests[i].ID)
		}
	}

	return nil
}

// compareIDs orders IDs sharing a timestamp by their numeric suffix.
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

// copyTree copies every regular file under src into dst, preserving
// permissions, and returns the captured files in walk order.
func copyTree(src, dst string) ([]File, error) {
	var files []File

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrap(err, "creating parent directory")
		}

		hash, mode, err := copyFile(path, target)
		if err != nil {
			return errors.Wrapf(err, "copying %s", rel)
		}

		files = append(files, File{
			RelPath:    filepath.ToSlash(rel),
			SHA256Hash: hash,
			Mode:       mode,
		})
		return nil
	})

	return files, err
}

// hashFile computes the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies a file from src to dst, returning the SHA256 hash and
// permission bits. The destination ends up with the source's permissions.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = srcInfo.Mode().Perm()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	// Hash while copying.
	h := sha256.New()
	w := io.MultiWriter(dstFile, h)

	if _, err := io.Copy(w, srcFile); err != nil {
		dstFile.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}

	if err := dstFile.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}

	if err := os.Chmod(dst, mode); err != nil {
		return "", 0, errors.Wrap(err, "setting permissions")
	}

	return hex.EncodeToString(h.Sum(nil)), mode, nil
}
