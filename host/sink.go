package host

import (
	"context"
	"log/slog"

	"github.com/cpcf/proforma/engine"
)

// LogSink forwards notices to a logger at the notice's level.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "proforma")}
}

func (s *LogSink) Notify(n engine.Notice) {
	s.logger.Log(context.Background(), n.Level, n.Message)
}
