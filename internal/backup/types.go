package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
)

// Manifest format version for forward compatibility.
const ManifestVersion = 1

// ManifestName is the file name of the manifest inside each snapshot.
const ManifestName = "manifest.json"

// DefaultRetentionCount is the default number of snapshots kept per project.
const DefaultRetentionCount = 5

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no snapshots exist for the project.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a stored file no longer matches its
	// manifest hash.
	ErrBackupCorrupted = errors.New("backup corrupted")

	// ErrNothingToBackUp indicates the configuration root holds no files.
	ErrNothingToBackUp = errors.New("nothing to back up")
)

// Manifest describes one snapshot of a configuration root.
// It is stored as manifest.json in the snapshot directory.
type Manifest struct {
	// Version is the manifest format version.
	Version int `json:"version"`

	// CreatedAt is when the snapshot was taken.
	CreatedAt time.Time `json:"created_at"`

	// Project is the absolute project directory the root belonged to.
	Project string `json:"project"`

	// Reason names the operation that triggered the snapshot (force, update, remove).
	Reason string `json:"reason,omitempty"`

	// Files lists every regular file captured, relative to the root.
	Files []File `json:"files"`

	// ToolVersion is the version of claude-base-setup that took the snapshot.
	ToolVersion string `json:"tool_version"`

	// ID is the snapshot directory name. Populated on load, not stored.
	ID string `json:"-"`
}

// File describes a single captured file.
type File struct {
	// RelPath is the slash-separated path relative to the configuration root.
	RelPath string `json:"rel_path"`

	// SHA256Hash is the hex-encoded SHA256 of the file contents.
	SHA256Hash string `json:"sha256_hash"`

	// Mode is the file's permission bits.
	Mode fs.FileMode `json:"mode"`
}

// Size returns the number of captured files.
func (m *Manifest) Size() int {
	return len(m.Files)
}
