package sink

import (
	"io"
	"sync"
	"time"
)

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithChannelClock overrides the timestamp source. Used by tests.
func WithChannelClock(now func() time.Time) ChannelOption {
	return func(c *Channel) { c.now = now }
}

// Channel is a leveled line sink over an io.Writer. The threshold models
// the host-controlled minimum-severity filter: writes below it are dropped
// before reaching the writer, which is exactly the filtering the router's
// severity promotion exists to defeat.
type Channel struct {
	name      string
	threshold Level
	now       func() time.Time

	mu       sync.Mutex
	w        io.Writer
	visible  bool
	disposed bool
}

// NewChannel creates a channel sink writing to w with the given
// minimum-severity threshold.
func NewChannel(name string, w io.Writer, threshold Level, opts ...ChannelOption) *Channel {
	c := &Channel{
		name:      name,
		threshold: threshold,
		now:       time.Now,
		w:         w,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Channel) log(level Level, msg string) {
	if level < c.threshold {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Write errors are swallowed: a failing sink must not take down the
	// feature that tried to log.
	io.WriteString(c.w, formatLine(c.now(), level, msg))
}

func (c *Channel) Trace(msg string) { c.log(LevelTrace, msg) }
func (c *Channel) Debug(msg string) { c.log(LevelDebug, msg) }
func (c *Channel) Info(msg string)  { c.log(LevelInfo, msg) }
func (c *Channel) Warn(msg string)  { c.log(LevelWarn, msg) }
func (c *Channel) Error(msg string) { c.log(LevelError, msg) }

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Show marks the channel visible. Focus has no effect on writer-backed
// channels.
func (c *Channel) Show(focus bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = true
}

// Hide marks the channel hidden.
func (c *Channel) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = false
}

// Visible reports whether Show has been called without a subsequent Hide.
func (c *Channel) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Clear resets the backing writer when it supports resetting
// (bytes.Buffer does); otherwise it is a no-op.
func (c *Channel) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.w.(interface{ Reset() }); ok {
		r.Reset()
	}
}

// Dispose closes the backing writer when it is an io.Closer. Disposal is
// idempotent: the sink may be registered with both the router and a host
// disposal registry.
func (c *Channel) Dispose() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return nil
	}
	c.disposed = true
	if closer, ok := c.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
