package scaffold

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
)

// Synchronizer replaces subtrees of a configuration root with the template's copy.
type Synchronizer struct {
	// Source is the template filesystem; subtrees are top-level directories in it.
	Source afero.Fs

	// Target is the filesystem holding the configuration root.
	Target afero.Fs
}

// NewSynchronizer creates a Synchronizer over the given filesystems.
func NewSynchronizer(source, target afero.Fs) *Synchronizer {
	return &Synchronizer{Source: source, Target: target}
}

// ValidateSubtree returns ErrUnknownSubtree unless name is one of [paths.Subtrees].
func ValidateSubtree(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || !slices.Contains(paths.Subtrees(), name) {
		return errors.Wrapf(errors.ErrUnknownSubtree, "%q", name)
	}
	return nil
}

// SyncSubtree makes root/name an exact copy of the template's name subtree.
//
// When the template lacks the subtree it returns an error wrapping
// ErrSubtreeNotFound and changes nothing. Otherwise the existing destination
// subtree, if any, is removed in full and the template copy mirrored into its
// place. Everything outside root/name is left untouched.
func (s *Synchronizer) SyncSubtree(root, name string) error {
	if err := ValidateSubtree(name); err != nil {
		return err
	}

	ok, err := afero.DirExists(s.Source, name)
	if err != nil {
		return errors.Wrapf(err, "checking template subtree %s", name)
	}
	if !ok {
		return errors.Wrapf(errors.ErrSubtreeNotFound, "%s", name)
	}

	dst := filepath.Join(root, name)
	if err := s.Target.RemoveAll(dst); err != nil {
		return errors.Wrapf(err, "removing %s", dst)
	}

	if err := Mirror(s.Source, name, s.Target, dst); err != nil {
		return errors.Wrapf(err, "copying subtree %s", name)
	}

	return nil
}

// MirrorAll copies the whole template tree into root.
func (s *Synchronizer) MirrorAll(templateRoot, root string) error {
	return Mirror(s.Source, templateRoot, s.Target, root)
}
