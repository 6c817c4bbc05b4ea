// Package logging provides structured logging for the claude-base-setup CLI
// using slog.
//
// The package supports both text and JSON output formats, configurable log
// levels, and helpers for testing. All loggers are based on the standard
// library's [log/slog] package. Logs go to stderr; the installer's status
// lines are written separately to stdout.
//
// # Basic Usage
//
//	logger := logging.New(logging.Options{
//		Level:  logging.LevelFromVerbosity(verbose),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	ctx = logging.NewContext(ctx, logger)
//
// Setting Options.File additionally writes every record as JSON to that
// writer, which is how --log-file works.
//
// Attributes whose key looks like a credential (api_key, token, ...) or whose
// value starts with a known token prefix are masked by the text handler.
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
//
// # Quiet Mode
//
// Use [NewDiscard] when log output should be suppressed entirely:
//
//	logger := logging.NewDiscard()
package logging
