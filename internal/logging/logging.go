package logging

import (
	"io"
	"log"
	"log/slog"
	"strings"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

// Init builds the application logger writing to w and installs it as the
// slog default. Production uses JSON; any other environment uses text.
func Init(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	// Redirect standard log package output (used by gin's debug printer) to the same writer
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags)

	return Logger
}

// ParseLevel maps debug, info, warn and error to slog levels. Unknown values
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
