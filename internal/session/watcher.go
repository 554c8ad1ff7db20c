package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Replayer feeds a session log file back into the logging pipeline.
// The severity router satisfies it.
type Replayer interface {
	ReplayLogsFromFile(ctx context.Context, path string) error
}

// Watch replays session files appearing under dir until the context is
// cancelled. Files already present when the watch starts are replayed
// first (the crashed process wrote them before we came up). Replay itself
// removes each consumed file, so nothing is processed twice.
//
// onError receives per-file replay failures; the watch itself continues.
// Blocks until ctx is done or the watcher fails.
func Watch(ctx context.Context, dir string, r Replayer, onError func(error)) error {
	if onError == nil {
		onError = func(error) {}
	}

	if err := replayExisting(ctx, dir, r, onError); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("session: watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("session: watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !IsSessionFile(ev.Name) {
				continue
			}
			if err := r.ReplayLogsFromFile(ctx, ev.Name); err != nil {
				onError(err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			onError(err)
		}
	}
}

// replayExisting feeds session files already in dir to the replayer.
// A missing dir is fine: nothing was handed off.
func replayExisting(ctx context.Context, dir string, r Replayer, onError func(error)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("session: read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !IsSessionFile(e.Name()) {
			continue
		}
		if err := r.ReplayLogsFromFile(ctx, filepath.Join(dir, e.Name())); err != nil {
			onError(err)
		}
	}
	return nil
}
