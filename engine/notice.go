package engine

import (
	"fmt"
	"log/slog"
)

// Notice is a human-readable message about a generation run. Notices never
// interrupt processing.
type Notice struct {
	Level   slog.Level
	Message string
}

func (n Notice) String() string {
	return n.Level.String() + " " + n.Message
}

// Sink receives the notices of a run.
type Sink interface {
	Notify(Notice)
}

type SinkFunc func(Notice)

func (f SinkFunc) Notify(n Notice) {
	f(n)
}

// Discard drops every notice.
var Discard Sink = SinkFunc(func(Notice) {})

func notify(sink Sink, level slog.Level, format string, args ...any) {
	sink.Notify(Notice{Level: level, Message: fmt.Sprintf(format, args...)})
}
