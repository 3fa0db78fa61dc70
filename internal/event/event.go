// internal/event/event.go
package event

import (
	"fmt"
	"log/slog"
)

// Level classifies a simulator event.
type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "INFO"
	case Success:
		return "SUCCESS"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Sink receives formatted simulator events.
// The receiver owns timestamping and presentation.
type Sink interface {
	Event(message string, level Level)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(message string, level Level)

func (f SinkFunc) Event(message string, level Level) {
	f(message, level)
}

// Nop returns a sink that discards everything.
func Nop() Sink {
	return SinkFunc(func(string, Level) {})
}

// Post delivers "[{source}] {text}" to the sink. A nil sink is a no-op.
// A panicking sink is contained here: the failure is reported through slog
// and never reaches the operation that emitted the event.
func Post(s Sink, source, text string, level Level) {
	if s == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event sink failure", "source", source, "err", r)
		}
	}()
	s.Event(fmt.Sprintf("[%s] %s", source, text), level)
}

// Postf is Post with fmt.Sprintf formatting of the text.
func Postf(s Sink, source string, level Level, format string, args ...any) {
	Post(s, source, fmt.Sprintf(format, args...), level)
}
