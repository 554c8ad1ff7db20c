package duolog

import (
	"context"
	"io"
	"os"

	"github.com/demo-builder/duolog/internal/config"
	"github.com/demo-builder/duolog/internal/errlog"
	"github.com/demo-builder/duolog/internal/export"
	"github.com/demo-builder/duolog/internal/router"
	"github.com/demo-builder/duolog/internal/session"
	"github.com/demo-builder/duolog/internal/sink"
	"github.com/demo-builder/duolog/internal/steplog"
)

// CommandResult re-exports the router's command outcome type.
type CommandResult = router.CommandResult

// Logger is the public handle over the severity router and its two
// channels. Create one per process with New (or the Init singleton) and
// dispose it on shutdown.
type Logger struct {
	cfg config.Config
	rt  *router.Router
}

// New creates a Logger: both channels, the export buffer, and the router
// wiring them together. Channel creation registers both sinks with the
// disposal context when one is supplied.
func New(opts ...Option) (*Logger, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cfg := o.cfg

	user := o.userSink
	if user == nil {
		user = sink.NewChannel(cfg.UserChannelName(), o.userWriter, sink.ParseLevel(cfg.UserLevel))
	}

	diag := o.diagSink
	if diag == nil {
		if cfg.DebugLogPath != "" {
			fs, err := sink.NewFile(cfg.DiagChannelName(), cfg.DebugLogPath, sink.ParseLevel(cfg.DiagLevel))
			if err != nil {
				return nil, err
			}
			diag = fs
		} else {
			diag = sink.NewChannel(cfg.DiagChannelName(), o.diagWriter, sink.ParseLevel(cfg.DiagLevel))
		}
	}

	if o.disposal != nil {
		o.disposal.Track(user)
		o.disposal.Track(diag)
	}

	rt := router.New(user, diag,
		router.WithTruncateLimit(cfg.TruncateLimit),
		router.WithSlowCommand(cfg.SlowCommand),
		router.WithTrustedRoot(cfg.TrustedRoot),
		router.WithExportBuffer(export.New(cfg.ExportCapacity)),
	)
	return &Logger{cfg: cfg, rt: rt}, nil
}

// Info logs a user-visible informational message.
func (l *Logger) Info(msg string) { l.rt.Info(msg) }

// Warn logs a user-visible warning.
func (l *Logger) Warn(msg string) { l.rt.Warn(msg) }

// Error logs a user-visible error; cause detail stays diagnostic-only.
func (l *Logger) Error(msg string, cause error) { l.rt.Error(msg, cause) }

// Debug logs to the diagnostic channel only.
func (l *Logger) Debug(msg string, data ...any) { l.rt.Debug(msg, data...) }

// Trace logs to the diagnostic channel only.
func (l *Logger) Trace(msg string, data ...any) { l.rt.Trace(msg, data...) }

// LogCommand records an external command result on the diagnostic
// channel, warning the user when it was slow.
func (l *Logger) LogCommand(cmd string, res CommandResult) { l.rt.LogCommand(cmd, res) }

// LogEnvironment dumps environment variables to the diagnostic channel.
func (l *Logger) LogEnvironment(label string, vars map[string]string) {
	l.rt.LogEnvironment(label, vars)
}

// GetLogContent returns the export buffer as newline-joined text, oldest
// first. This is the read contract of the "export logs" action.
func (l *Logger) GetLogContent() string { return l.rt.Content() }

// ReplayLogsFromFile feeds a trusted session log file back into the
// logging pipeline and removes it. See router.Router.ReplayLogsFromFile.
func (l *Logger) ReplayLogsFromFile(ctx context.Context, path string) error {
	return l.rt.ReplayLogsFromFile(ctx, path)
}

// ExportToFile writes the current export buffer to a fresh session file
// under the trusted root and returns its path.
func (l *Logger) ExportToFile() (string, error) {
	dir, err := l.rt.TrustedRootDir()
	if err != nil {
		return "", err
	}
	return session.Export(dir, l.GetLogContent())
}

// Show reveals the user channel, optionally taking focus.
func (l *Logger) Show(focus bool) { l.rt.Show(focus) }

// ShowDiagnostics reveals the diagnostic channel.
func (l *Logger) ShowDiagnostics(focus bool) { l.rt.ShowDiagnostics(focus) }

// Clear empties both channels and the export buffer.
func (l *Logger) Clear() { l.rt.Clear() }

// Dispose releases both channels.
func (l *Logger) Dispose() error { return l.rt.Dispose() }

// Router exposes the underlying severity router for derived loggers with
// bespoke wiring. Most callers want ErrorLogger or StepLogger instead.
func (l *Logger) Router() *router.Router { return l.rt }

// ErrorLogger creates an error logger delegating to this Logger's router.
func (l *Logger) ErrorLogger(opts ...errlog.Option) *errlog.ErrorLogger {
	return errlog.New(l.rt, opts...)
}

// StepLogger creates a step-scoped logger seeded with the configured step
// names and message templates; caller options layer on top.
func (l *Logger) StepLogger(opts ...steplog.Option) *steplog.StepLogger {
	seeded := []steplog.Option{
		steplog.WithTemplates(l.cfg.Templates),
		steplog.WithSteps(l.cfg.Steps),
	}
	return steplog.New(l.rt, append(seeded, opts...)...)
}

type options struct {
	cfg        config.Config
	userWriter io.Writer
	diagWriter io.Writer
	userSink   sink.Sink
	diagSink   sink.Sink
	disposal   *Context
}

// Option configures New.
type Option func(*options)

// WithConfig supplies a full configuration. Default: config.Default().
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithUserWriter sets the user channel's writer. Default: stdout.
func WithUserWriter(w io.Writer) Option {
	return func(o *options) { o.userWriter = w }
}

// WithDiagWriter sets the diagnostic channel's writer when no
// debug_log_path is configured. Default: stderr.
func WithDiagWriter(w io.Writer) Option {
	return func(o *options) { o.diagWriter = w }
}

// WithSinks substitutes both sinks wholesale. Tests use this to install
// recording doubles.
func WithSinks(user, diag sink.Sink) Option {
	return func(o *options) {
		o.userSink = user
		o.diagSink = diag
	}
}

// WithDisposalContext registers both sinks with a disposal registry at
// creation time.
func WithDisposalContext(c *Context) Option {
	return func(o *options) { o.disposal = c }
}

func defaultOptions() options {
	return options{
		cfg:        config.Default(),
		userWriter: os.Stdout,
		diagWriter: os.Stderr,
	}
}
