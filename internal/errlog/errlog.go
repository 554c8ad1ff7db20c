// Package errlog layers error/warning bookkeeping on top of the severity
// router: a status-bar projection of running counters, an IDE-style
// diagnostics collection keyed by file URI, and a critical-error
// notification hook. All actual log writing delegates to the router; this
// package only adds orthogonal state.
package errlog

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Severity grades a diagnostic entry.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Position is a zero-based line/character location in a document.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open span between two positions. The zero value is a
// zero-width point at document start, which is the default when a caller
// supplies no range.
type Range struct {
	Start Position
	End   Position
}

// Diagnostic is one reported problem attached to a document.
type Diagnostic struct {
	Rng      Range
	Message  string
	Severity Severity
}

// Logger is the slice of the severity router this package consumes.
type Logger interface {
	Error(msg string, cause error)
	Warn(msg string)
	Show(focus bool)
	ClearExport()
}

// StatusBar is the host status-bar item capability.
type StatusBar interface {
	SetText(text string)
	SetTooltip(text string)
	Show()
	Hide()
	Dispose() error
}

// DiagnosticSet is the host diagnostics-collection capability.
type DiagnosticSet interface {
	// Add appends a diagnostic to any existing ones for the URI.
	Add(uri string, d Diagnostic)
	Clear()
	Dispose() error
}

// Notifier surfaces a critical error to the user. showLogs is the
// "Show Logs" action; implementations invoke it when the user asks.
type Notifier interface {
	Critical(msg string, showLogs func())
}

const statusTooltip = "Demo Builder: errors and warnings this session"

// Option configures an ErrorLogger.
type Option func(*ErrorLogger)

// WithStatusBar substitutes the status-bar implementation.
func WithStatusBar(b StatusBar) Option {
	return func(e *ErrorLogger) { e.bar = b }
}

// WithDiagnostics substitutes the diagnostics collection.
func WithDiagnostics(d DiagnosticSet) Option {
	return func(e *ErrorLogger) { e.diags = d }
}

// WithNotifier substitutes the critical-error notifier.
func WithNotifier(n Notifier) Option {
	return func(e *ErrorLogger) { e.notify = n }
}

// ErrorLogger tracks error/warning counts and diagnostics while delegating
// every write to the router. It holds a non-owning reference to the router
// and must not outlive it.
type ErrorLogger struct {
	log    Logger
	bar    StatusBar
	diags  DiagnosticSet
	notify Notifier

	mu       sync.Mutex
	errors   int
	warnings int
}

// New creates an ErrorLogger over the given router slice. Defaults:
// in-memory status bar and diagnostics, no-op notifier.
func New(log Logger, opts ...Option) *ErrorLogger {
	e := &ErrorLogger{log: log}
	for _, opt := range opts {
		opt(e)
	}
	if e.bar == nil {
		e.bar = NewMemoryStatusBar()
	}
	if e.diags == nil {
		e.diags = NewMemoryDiagnostics()
	}
	if e.notify == nil {
		e.notify = nopNotifier{}
	}
	e.bar.SetTooltip(statusTooltip)
	return e
}

// LogError logs an error and bumps the error counter. An empty msg with a
// non-nil cause uses the cause's message. Critical errors additionally
// raise the notifier with a "Show Logs" action that focuses the router's
// user channel.
func (e *ErrorLogger) LogError(msg string, cause error, critical bool) {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	e.log.Error(msg, cause)

	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
	e.refreshStatusBar()

	if critical {
		e.notify.Critical(msg, func() { e.log.Show(true) })
	}
}

// LogWarning logs a warning and bumps the warning counter.
func (e *ErrorLogger) LogWarning(msg string) {
	e.log.Warn(msg)

	e.mu.Lock()
	e.warnings++
	e.mu.Unlock()
	e.refreshStatusBar()
}

// AddDiagnostic attaches a problem to a document URI, appending to any
// existing diagnostics for that URI. A nil range means a zero-width point
// at document start.
func (e *ErrorLogger) AddDiagnostic(uri, message string, severity Severity, rng *Range) {
	d := Diagnostic{Message: message, Severity: severity}
	if rng != nil {
		d.Rng = *rng
	}
	e.diags.Add(uri, d)
}

// Counts returns the current error and warning counters.
func (e *ErrorLogger) Counts() (errors, warnings int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errors, e.warnings
}

// Clear resets both counters, hides the status bar, clears the
// diagnostics collection, and clears the router's export buffer.
func (e *ErrorLogger) Clear() {
	e.mu.Lock()
	e.errors = 0
	e.warnings = 0
	e.mu.Unlock()

	e.bar.Hide()
	e.diags.Clear()
	e.log.ClearExport()
}

// Dispose releases the status bar and diagnostics collection.
func (e *ErrorLogger) Dispose() error {
	return errors.Join(e.bar.Dispose(), e.diags.Dispose())
}

// refreshStatusBar projects the counters onto the status bar: hidden when
// both are zero, otherwise visible with one segment per non-zero counter.
func (e *ErrorLogger) refreshStatusBar() {
	e.mu.Lock()
	errs, warns := e.errors, e.warnings
	e.mu.Unlock()

	if errs == 0 && warns == 0 {
		e.bar.Hide()
		return
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, fmt.Sprintf("$(error) %d", errs))
	}
	if warns > 0 {
		parts = append(parts, fmt.Sprintf("$(warning) %d", warns))
	}
	e.bar.SetText(strings.Join(parts, " "))
	e.bar.Show()
}

type nopNotifier struct{}

func (nopNotifier) Critical(string, func()) {}
