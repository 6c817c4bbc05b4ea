// Package errors provides error handling conventions for the claude-base-setup CLI.
//
// This package defines sentinel errors for the failure conditions of the
// installer, an ExitError type for CLI exit code handling, and exit code
// constants following standard Unix conventions. Construction and wrapping
// helpers are re-exported from [github.com/cockroachdb/errors] so callers
// only need a single import.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, cbserrors.ErrAlreadyInitialized) {
//	    // .claude already exists and --force was not given
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (existing root without --force,
//     selective update without an installed root, missing template source)
//   - ExitSystem (2): System-related error (I/O, permissions)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. It supports unwrapping via [Unwrap] and [As]:
//
//	var exitErr *cbserrors.ExitError
//	if errors.As(err, &exitErr) {
//	    if exitErr.Suggestion != "" {
//	        fmt.Fprintln(os.Stderr, "hint:", exitErr.Suggestion)
//	    }
//	    os.Exit(exitErr.Code)
//	}
package errors
