// internal/tui/logbuffer.go
package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tamzrod/modbus-slavesim/internal/event"
)

var levelStyles = map[event.Level]lipgloss.Style{
	event.Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	event.Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	event.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	event.Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

// LogBuffer is the event sink behind the cockpit's log pane. It timestamps
// incoming events and keeps the most recent maxLines of them.
type LogBuffer struct {
	mu       sync.Mutex
	lines    []string
	maxLines int
}

// NewLogBuffer creates a buffer keeping the last maxLines events.
func NewLogBuffer(maxLines int) *LogBuffer {
	return &LogBuffer{maxLines: maxLines}
}

// Event implements event.Sink.
func (b *LogBuffer) Event(message string, level event.Level) {
	ts := time.Now().Format(time.DateTime)
	line := levelStyles[level].Render(fmt.Sprintf("%s %-7s %s", ts, level, message))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.maxLines {
		b.lines = b.lines[len(b.lines)-b.maxLines:]
	}
}

// Render returns the buffered lines as one string for the viewport.
func (b *LogBuffer) Render() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}
