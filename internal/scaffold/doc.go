// Package scaffold copies template trees into a configuration root.
//
// It provides the three filesystem primitives the installer is built from:
//
//   - [Mirror] recursively copies a directory from one filesystem to another
//     without removing anything already at the destination.
//   - [Synchronizer.SyncSubtree] replaces one named subtree of a configuration
//     root with the template's copy, leaving siblings untouched.
//   - [NormalizeExecutable] marks hook scripts executable.
//
// Source and destination are [afero.Fs] values so the embedded template tree,
// an on-disk template directory, and in-memory test filesystems are
// interchangeable. Source paths are slash-separated and relative to the
// template root; destination paths are native paths.
//
// Replacing a subtree is delete-then-copy and is not atomic: an interrupted
// sync can leave that one subtree absent until the next update.
package scaffold
