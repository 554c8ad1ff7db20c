package duolog

import (
	"errors"
	"sync"
)

// Singleton lifecycle: one Logger per process, created by an explicit
// Init. There is deliberately no lazy auto-creation — a Get before Init
// is a wiring bug and fails loudly.

var (
	// ErrNotInitialized is returned by Get before Init has run.
	ErrNotInitialized = errors.New("duolog: not initialized, call Init first")

	// ErrAlreadyInitialized is returned by a second Init.
	ErrAlreadyInitialized = errors.New("duolog: already initialized")

	globalMu sync.Mutex
	global   *Logger
)

// Init creates the process-wide Logger. A second call fails with
// ErrAlreadyInitialized; dispose and restart the process instead of
// re-initializing.
func Init(opts ...Option) (*Logger, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		return nil, ErrAlreadyInitialized
	}
	l, err := New(opts...)
	if err != nil {
		return nil, err
	}
	global = l
	return l, nil
}

// Get returns the process-wide Logger created by Init.
func Get() (*Logger, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		return nil, ErrNotInitialized
	}
	return global, nil
}

// resetForTest clears the singleton reference. Test-only; not part of the
// production surface.
func resetForTest() {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = nil
}
