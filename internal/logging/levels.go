package logging

import "log/slog"

// LevelTrace is below Debug and carries per-file detail such as each hook
// script marked executable.
const LevelTrace = slog.LevelDebug - 4

// LevelFromVerbosity maps a -v count to a minimum level.
// Zero or negative counts log warnings and errors only.
func LevelFromVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	case verbosity == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// levelName renders a level, naming LevelTrace.
func levelName(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}
