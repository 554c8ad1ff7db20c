package errlog

import (
	"fmt"
	"io"
	"sync"
)

// MemoryStatusBar is the default StatusBar: plain state a host (or test)
// can read back.
type MemoryStatusBar struct {
	mu      sync.Mutex
	text    string
	tooltip string
	visible bool
}

// NewMemoryStatusBar creates an empty, hidden status bar.
func NewMemoryStatusBar() *MemoryStatusBar {
	return &MemoryStatusBar{}
}

func (b *MemoryStatusBar) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
}

func (b *MemoryStatusBar) SetTooltip(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tooltip = text
}

func (b *MemoryStatusBar) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visible = true
}

func (b *MemoryStatusBar) Hide() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visible = false
}

func (b *MemoryStatusBar) Dispose() error { return nil }

// Text returns the current status text.
func (b *MemoryStatusBar) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Tooltip returns the current tooltip.
func (b *MemoryStatusBar) Tooltip() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tooltip
}

// Visible reports whether the bar is shown.
func (b *MemoryStatusBar) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible
}

// MemoryDiagnostics is the default DiagnosticSet: an in-memory map from
// URI to its accumulated diagnostics.
type MemoryDiagnostics struct {
	mu      sync.Mutex
	entries map[string][]Diagnostic
}

// NewMemoryDiagnostics creates an empty collection.
func NewMemoryDiagnostics() *MemoryDiagnostics {
	return &MemoryDiagnostics{entries: make(map[string][]Diagnostic)}
}

func (m *MemoryDiagnostics) Add(uri string, d Diagnostic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[uri] = append(m.entries[uri], d)
}

func (m *MemoryDiagnostics) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]Diagnostic)
}

func (m *MemoryDiagnostics) Dispose() error { return nil }

// Get returns the diagnostics recorded for a URI, in insertion order.
func (m *MemoryDiagnostics) Get(uri string) []Diagnostic {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Diagnostic, len(m.entries[uri]))
	copy(out, m.entries[uri])
	return out
}

// WriterNotifier renders critical errors as lines on a writer. The
// "Show Logs" action is not invoked; terminal hosts have no modal.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Critical(msg string, _ func()) {
	fmt.Fprintf(n.W, "CRITICAL: %s\n", msg)
}
