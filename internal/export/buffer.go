// Package export holds the bounded in-memory buffer behind the
// "copy session logs" surface. The buffer captures user-facing severities
// only: debug and trace payloads may carry secrets and never enter it.
package export

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/demo-builder/duolog/internal/sink"
)

// DefaultCapacity is the entry cap applied when no capacity is configured.
const DefaultCapacity = 10000

// evictFraction is the share of oldest entries dropped in one batch when
// the cap is exceeded. Batch eviction keeps sustained high-volume logging
// amortized instead of shifting the slice once per append.
const evictFraction = 0.1

// Buffer accumulates rendered log entries, oldest first, capped at a fixed
// capacity. Safe for concurrent use.
type Buffer struct {
	capacity int
	now      func() time.Time

	mu      sync.Mutex
	entries []string
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(b *Buffer) { b.now = now }
}

// New creates a Buffer with the given capacity; capacity <= 0 selects
// DefaultCapacity.
func New(capacity int, opts ...Option) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Buffer{
		capacity: capacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Append records one entry for info/warn/error writes and enforces the
// capacity. Debug and trace writes are dropped: the buffer's content is
// handed to end users verbatim, and diagnostic detail stays out of it.
func (b *Buffer) Append(level sink.Level, msg string) {
	if level < sink.LevelInfo {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := fmt.Sprintf("[%s] [%s] %s",
		b.now().Format("2006-01-02T15:04:05.000Z07:00"),
		strings.ToUpper(level.String()), msg)
	b.entries = append(b.entries, entry)

	if len(b.entries) > b.capacity {
		// Drop the oldest ~10% in one slice operation.
		drop := int(float64(len(b.entries)) * evictFraction)
		if drop < 1 {
			drop = 1
		}
		b.entries = append(b.entries[:0], b.entries[drop:]...)
	}
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Content returns all entries joined by newlines, oldest first. Read-only:
// the buffer is unchanged afterwards.
func (b *Buffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.entries, "\n")
}

// Clear discards every entry.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
}
