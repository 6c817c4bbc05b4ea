package config

import (
	"os"
	"strings"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a config version this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrEmptyModel indicates the model field is blank.
	ErrEmptyModel = errors.New("model must not be empty")

	// ErrNegativeRetention indicates backup.retention is below zero.
	ErrNegativeRetention = errors.New("backup.retention must be >= 0")

	// ErrInvalidPath indicates a path value is malformed or not a directory.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != DefaultVersion {
		errs = append(errs, errors.Mark(errors.Newf("unsupported config version: %d", cfg.Version), ErrUnsupportedVersion))
	}

	if strings.TrimSpace(cfg.Model) == "" {
		errs = append(errs, ErrEmptyModel)
	}

	if cfg.Backup.Retention < 0 {
		errs = append(errs, ErrNegativeRetention)
	}

	if cfg.TemplatesDir != "" {
		if err := validateDir(cfg.TemplatesDir); err != nil {
			errs = append(errs, &PathError{
				Field: "templates_dir",
				Path:  cfg.TemplatesDir,
				Err:   err,
			})
		}
	}

	return errs
}

// validateDir checks that path names an existing directory.
func validateDir(path string) error {
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return ErrInvalidPath
	}

	return nil
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
