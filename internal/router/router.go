// Package router implements the severity router at the center of the
// dual-channel logging core: the single source of truth for which sink
// sees which write. User-facing severities fan out to both channels and
// the export buffer; debug and trace stay diagnostic-only and are
// promoted through the info-level write to defeat host severity filtering.
package router

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/demo-builder/duolog/internal/export"
	"github.com/demo-builder/duolog/internal/sink"
)

const (
	// DefaultTruncateLimit caps error detail written to the diagnostic
	// channel. Tunable, not load-bearing.
	DefaultTruncateLimit = 2500

	// DefaultSlowCommand is the duration past which a command result
	// earns the user a warning.
	DefaultSlowCommand = 3 * time.Second
)

// CommandResult captures the outcome of one external command invocation.
type CommandResult struct {
	Stdout   string
	Stderr   string
	Code     int
	Duration time.Duration
}

// Option configures a Router.
type Option func(*Router)

// WithTruncateLimit sets the rune cap for diagnostic error detail.
func WithTruncateLimit(n int) Option {
	return func(r *Router) { r.truncateLimit = n }
}

// WithSlowCommand sets the duration past which LogCommand warns the user.
func WithSlowCommand(d time.Duration) Option {
	return func(r *Router) { r.slowCommand = d }
}

// WithTrustedRoot overrides the replay trusted root. Default:
// {HOME}/.demo-builder, resolved fresh on every replay call.
func WithTrustedRoot(dir string) Option {
	return func(r *Router) { r.trustedRoot = dir }
}

// WithExportBuffer substitutes the export buffer. Default: a fresh buffer
// at export.DefaultCapacity.
func WithExportBuffer(b *export.Buffer) Option {
	return func(r *Router) { r.export = b }
}

// Router owns the two sinks and the export buffer for the process
// lifetime. Callers never touch the sinks directly.
type Router struct {
	user sink.Sink
	diag sink.Sink

	export        *export.Buffer
	truncateLimit int
	slowCommand   time.Duration
	trustedRoot   string
}

// New creates a Router over the given user and diagnostic sinks and writes
// one "initialized" line to each so operators can confirm channel wiring.
func New(user, diag sink.Sink, opts ...Option) *Router {
	r := &Router{
		user:          user,
		diag:          diag,
		truncateLimit: DefaultTruncateLimit,
		slowCommand:   DefaultSlowCommand,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.export == nil {
		r.export = export.New(export.DefaultCapacity)
	}
	user.Info(user.Name() + " initialized")
	diag.Info(diag.Name() + " initialized")
	return r
}

// write is the one routing primitive the five public severity methods
// share. info/warn/error fan out to both sinks and the export buffer;
// debug/trace go to the diagnostic sink only, promoted through its
// info-level write with a literal level tag so host-side severity
// filtering cannot suppress them. Downstream tooling matches on the
// "[debug] "/"[trace] " prefixes; keep them exact.
func (r *Router) write(level sink.Level, msg string) {
	switch level {
	case sink.LevelInfo:
		r.user.Info(msg)
		r.diag.Info(msg)
	case sink.LevelWarn:
		r.user.Warn(msg)
		r.diag.Warn(msg)
	case sink.LevelError:
		r.user.Error(msg)
		r.diag.Error(msg)
	case sink.LevelDebug:
		r.diag.Info("[debug] " + msg)
	case sink.LevelTrace:
		r.diag.Info("[trace] " + msg)
	}
	r.export.Append(level, msg)
}

// Info logs a user-visible informational message.
func (r *Router) Info(msg string) { r.write(sink.LevelInfo, msg) }

// Warn logs a user-visible warning.
func (r *Router) Warn(msg string) { r.write(sink.LevelWarn, msg) }

// Error logs a user-visible error message. The message reaches both sinks
// untruncated; cause detail is diagnostic-only and truncated.
func (r *Router) Error(msg string, cause error) {
	r.write(sink.LevelError, msg)
	if cause != nil {
		detail := r.truncate(fmt.Sprintf("%+v", cause))
		r.write(sink.LevelDebug, "error detail: "+detail)
	}
}

// Debug logs a diagnostic-only message, with optional auxiliary data
// serialized as pretty-printed JSON in a second write.
func (r *Router) Debug(msg string, data ...any) {
	r.write(sink.LevelDebug, msg)
	r.writeData(sink.LevelDebug, data)
}

// Trace logs a diagnostic-only trace message, with optional auxiliary
// data serialized as pretty-printed JSON in a second write.
func (r *Router) Trace(msg string, data ...any) {
	r.write(sink.LevelTrace, msg)
	r.writeData(sink.LevelTrace, data)
}

// writeData appends serialized auxiliary data at the given diagnostic
// level. Serialization failures fall back to the default string
// conversion; a logging call never propagates an error.
func (r *Router) writeData(level sink.Level, data []any) {
	if len(data) == 0 {
		return
	}
	for _, d := range data {
		if d == nil {
			continue
		}
		r.write(level, serialize(d))
	}
}

// serialize renders auxiliary data as indented JSON, falling back to
// fmt's default conversion when the value is not JSON-representable.
func serialize(data any) string {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", data)
	}
	return string(out)
}

// LogCommand writes a diagnostic-only record of an external command run:
// header with exit code and duration, then stdout/stderr at trace level
// when non-empty. A duration past the slow threshold additionally warns
// the user; nothing else in the record reaches the user channel.
func (r *Router) LogCommand(cmd string, res CommandResult) {
	r.write(sink.LevelDebug, fmt.Sprintf("command %q exited %d in %s", cmd, res.Code, res.Duration))
	if strings.TrimSpace(res.Stdout) != "" {
		r.write(sink.LevelTrace, "stdout: "+r.truncate(res.Stdout))
	}
	if strings.TrimSpace(res.Stderr) != "" {
		r.write(sink.LevelTrace, "stderr: "+r.truncate(res.Stderr))
	}
	if res.Duration >= r.slowCommand {
		r.Warn(fmt.Sprintf("Command %q took %s to complete", cmd, res.Duration.Round(100*time.Millisecond)))
	}
}

// LogEnvironment dumps a labeled snapshot of environment variables to the
// diagnostic channel only. Environments carry secrets and paths; nothing
// here may reach the user channel or the export buffer.
func (r *Router) LogEnvironment(label string, vars map[string]string) {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "environment snapshot: %s", label)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s=%s", k, vars[k])
	}
	r.write(sink.LevelDebug, b.String())
}

// Content returns the export buffer joined as newline-separated text,
// oldest first. This is the sole read contract of the external
// "export logs" command.
func (r *Router) Content() string { return r.export.Content() }

// Show reveals the user channel, optionally taking focus.
func (r *Router) Show(focus bool) { r.user.Show(focus) }

// ShowDiagnostics reveals the diagnostic channel, optionally taking focus.
func (r *Router) ShowDiagnostics(focus bool) { r.diag.Show(focus) }

// Clear empties both sinks and the export buffer.
func (r *Router) Clear() {
	r.user.Clear()
	r.diag.Clear()
	r.export.Clear()
}

// ClearExport empties the export buffer only.
func (r *Router) ClearExport() { r.export.Clear() }

// Dispose releases both sinks.
func (r *Router) Dispose() error {
	return errors.Join(r.user.Dispose(), r.diag.Dispose())
}

// truncate caps s at the configured rune limit, marking the cut.
func (r *Router) truncate(s string) string {
	if r.truncateLimit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= r.truncateLimit {
		return s
	}
	return string(runes[:r.truncateLimit]) + "... (truncated)"
}
