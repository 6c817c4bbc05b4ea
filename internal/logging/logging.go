package logging

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
)

// Format specifies the output format for log messages.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// ParseFormat validates a --log-format value. Empty selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Newf("unknown log format %q (valid: text, json)", s)
	}
}

// Options describes the loggers a run writes to.
type Options struct {
	// Level is the minimum level for every destination.
	Level slog.Level

	// Format selects the console handler.
	Format Format

	// Output receives console logs. Nil means os.Stderr.
	Output io.Writer

	// File, when set, also receives every record as JSON.
	File io.Writer
}

// New builds a logger from opts. The console handler is the colored text
// handler unless Format is FormatJSON; a File destination is always JSON.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: redact}

	var console slog.Handler = NewHandler(out, &slog.HandlerOptions{Level: opts.Level})
	if opts.Format == FormatJSON {
		console = slog.NewJSONHandler(out, hopts)
	}

	if opts.File == nil {
		return slog.New(console)
	}
	return slog.New(NewMultiHandler(console, slog.NewJSONHandler(opts.File, hopts)))
}

// NewDiscard creates a logger that discards all output.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testWriter forwards each log line to t.Log.
type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	n := len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[:n-1]
	}
	w.t.Log(string(p))
	return n, nil
}

// ForTest returns a debug-level logger whose output shows up with the test's
// own log, visible on failure or with -v.
func ForTest(t testing.TB) *slog.Logger {
	t.Helper()
	return New(Options{Level: LevelTrace, Output: testWriter{t: t}})
}
