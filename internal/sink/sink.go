// Package sink defines the destination abstraction for the dual-channel
// logging core. A Sink receives severity-leveled writes plus lifecycle
// operations; the two process-wide instances (user channel and diagnostic
// channel) are independent implementations of the same capability set, so
// tests can substitute either with a recording double.
package sink

import (
	"fmt"
	"time"
)

// Sink is the capability set every log destination must satisfy.
type Sink interface {
	// One write method per severity. Writes below the sink's own
	// threshold are dropped silently; write failures never propagate.
	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)

	// Name returns the fixed channel name the sink was created with.
	Name() string

	// Show marks the sink visible, optionally taking focus in hosts
	// that surface a panel. Hide reverses it. Writer-backed sinks only
	// track the flag.
	Show(focus bool)
	Hide()

	// Clear discards accumulated content where the backing store
	// supports it.
	Clear()

	// Dispose releases the underlying resource. Safe to call once.
	Dispose() error
}

// formatLine renders one log line: wall-clock time, severity tag, message.
func formatLine(ts time.Time, level Level, msg string) string {
	return fmt.Sprintf("%s [%s] %s\n", ts.Format("15:04:05.000"), level, msg)
}
