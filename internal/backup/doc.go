// Package backup snapshots a project's configuration root before the
// installer deletes or replaces any of it.
//
// Snapshots are grouped per project under the XDG data directory:
//
//	<data>/claude-base-setup/backups/
//	└── {project-key}/
//	    └── {timestamp}/
//	        ├── manifest.json
//	        └── files/
//	            └── {copied tree...}
//
// The project key is derived from the absolute project path (see
// [paths.ProjectKey]) so two checkouts with the same directory name do not
// share snapshots.
//
// Use [Manager.Backup] to take a snapshot:
//
//	mgr := backup.NewManager(backup.WithRetentionCount(5))
//	manifest, err := mgr.Backup("/work/app", "remove")
//
// Every captured file is hashed with SHA256; [Manager.Verify] re-hashes a
// snapshot and returns [ErrBackupCorrupted] on mismatch. [Manager.Prune] keeps
// the newest N snapshots and Backup prunes automatically after each run.
//
// Snapshots are meant for manual recovery; nothing in this tool restores
// them.
package backup
