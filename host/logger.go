package host

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the logger for a run. format is "text" or "json"; source
// locations are added at debug level.
func NewLogger(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("log format must be text or json (got %q)", format)
	}
	return slog.New(handler), nil
}
