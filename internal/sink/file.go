package sink

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

const defaultBufSize = 64 * 1024 // 64KB

// FileOption configures a File sink.
type FileOption func(*File)

// WithMaxSize sets the file size (bytes) at which rotation triggers.
// 0 (default) disables rotation.
func WithMaxSize(bytes int64) FileOption {
	return func(f *File) { f.maxSize = bytes }
}

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) FileOption {
	return func(f *File) { f.bufSize = bytes }
}

// WithFileClock overrides the timestamp source. Used by tests.
func WithFileClock(now func() time.Time) FileOption {
	return func(f *File) { f.now = now }
}

// File is a sink that appends log lines to a file with buffered I/O and
// optional size-based rotation. Diagnostic channels use it so a session's
// technical log survives the process.
type File struct {
	name      string
	path      string
	threshold Level
	now       func() time.Time
	maxSize   int64 // 0 = no rotation
	bufSize   int

	mu      sync.Mutex
	f       *os.File
	w       *bufio.Writer
	written int64
	visible bool
}

// NewFile creates a file sink appending to path.
func NewFile(name, path string, threshold Level, opts ...FileOption) (*File, error) {
	f := &File{
		name:      name,
		path:      path,
		threshold: threshold,
		now:       time.Now,
		bufSize:   defaultBufSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.openFile(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) log(level Level, msg string) {
	if level < f.threshold {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.w == nil {
		return
	}

	line := formatLine(f.now(), level, msg)
	if f.maxSize > 0 && f.written+int64(len(line)) > f.maxSize {
		if err := f.rotate(); err != nil {
			// Keep appending to the oversized file rather than drop
			// the write.
			f.written = 0
		}
	}
	n, _ := f.w.WriteString(line)
	f.written += int64(n)
}

func (f *File) Trace(msg string) { f.log(LevelTrace, msg) }
func (f *File) Debug(msg string) { f.log(LevelDebug, msg) }
func (f *File) Info(msg string)  { f.log(LevelInfo, msg) }
func (f *File) Warn(msg string)  { f.log(LevelWarn, msg) }
func (f *File) Error(msg string) { f.log(LevelError, msg) }

// Name returns the channel name.
func (f *File) Name() string { return f.name }

// Path returns the file the sink appends to.
func (f *File) Path() string { return f.path }

// Show marks the sink visible.
func (f *File) Show(focus bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = true
}

// Hide marks the sink hidden.
func (f *File) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = false
}

// Visible reports whether Show has been called without a subsequent Hide.
func (f *File) Visible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

// Clear truncates the file, discarding all accumulated lines.
func (f *File) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return
	}
	f.w.Flush()
	f.f.Close()
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		f.f, f.w = nil, nil
		return
	}
	f.f = fh
	f.w = bufio.NewWriterSize(fh, f.bufSize)
	f.written = 0
}

// Dispose flushes buffered lines and closes the file.
func (f *File) Dispose() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil
	}
	defer func() { f.f, f.w = nil, nil }()
	if err := f.w.Flush(); err != nil {
		f.f.Close()
		return fmt.Errorf("file sink: flush: %w", err)
	}
	return f.f.Close()
}

// Flush pushes buffered lines to disk without closing.
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.w == nil {
		return nil
	}
	return f.w.Flush()
}

// openFile opens (or creates) the log file and wraps it in a bufio.Writer.
func (f *File) openFile() error {
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("file sink: open %s: %w", f.path, err)
	}
	info, err := fh.Stat()
	if err != nil {
		fh.Close()
		return fmt.Errorf("file sink: stat %s: %w", f.path, err)
	}
	f.f = fh
	f.w = bufio.NewWriterSize(fh, f.bufSize)
	f.written = info.Size()
	return nil
}

// rotate flushes, closes the current file, renames it to {path}.1
// (shifting existing rotated files), and opens a new file.
func (f *File) rotate() error {
	if err := f.w.Flush(); err != nil {
		return err
	}
	if err := f.f.Close(); err != nil {
		return err
	}

	// Shift existing rotated files: .2 → .3, .1 → .2, current → .1
	for i := 9; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", f.path, i)
		to := fmt.Sprintf("%s.%d", f.path, i+1)
		os.Rename(from, to) // ignore errors — file may not exist
	}
	if err := os.Rename(f.path, f.path+".1"); err != nil {
		return err
	}

	f.written = 0
	return f.openFile()
}
