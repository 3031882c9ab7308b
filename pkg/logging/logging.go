// Package logging configures structured logging for log/slog.
//
// Usage:
//
//	logging.Setup(slog.LevelInfo, "text")  // colored output with tint
//	logging.Setup(slog.LevelDebug, "json") // one JSON object per line
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// FormatJSON selects the JSON handler; any other format is colored text.
const FormatJSON = "json"

// Setup installs the handler for format at the given level as the default
// logger, writing to stderr.
func Setup(level slog.Level, format string) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, level, format)))
}

// NewHandler builds the handler used by Setup.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	if format == FormatJSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    !isTerminal(w),
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
