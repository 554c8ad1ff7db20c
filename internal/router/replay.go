package router

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/demo-builder/duolog/internal/sink"
)

// rejectNotice is the diagnostic marker for a refused replay. Support
// tooling greps for it; keep the wording stable.
const rejectNotice = "Rejecting replay from untrusted path"

// trustedRootDirName is the per-user directory replay files must live in.
const trustedRootDirName = ".demo-builder"

// ReplayLogsFromFile reads a prior session's log file back into the normal
// logging pipeline, then removes the file (replay is a one-shot handoff
// from a crashed process). Only files under the trusted root are read;
// an untrusted path produces a diagnostic rejection and a nil return,
// never an error. I/O failures after validation do return an error.
//
// The trust decision is computed fresh on every call — the root depends on
// the environment, and a cached trust decision is a hazard of its own.
func (r *Router) ReplayLogsFromFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	resolved, ok := r.validateReplayPath(path)
	if !ok {
		r.write(sink.LevelDebug, fmt.Sprintf("%s: %s", rejectNotice, path))
		return nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return fmt.Errorf("replay: read %s: %w", path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		r.Info(line)
	}

	if err := os.Remove(resolved); err != nil {
		return fmt.Errorf("replay: remove %s: %w", path, err)
	}
	return nil
}

// validateReplayPath canonicalizes the trusted root and the candidate and
// accepts only segment-wise descendants of the root. Fail-closed: any
// canonicalization error (missing file, permission, dangling symlink) is a
// rejection, and the prefix check operates on path segments so a sibling
// like {root}-evil cannot pass.
func (r *Router) validateReplayPath(path string) (string, bool) {
	root, err := r.TrustedRootDir()
	if err != nil {
		return "", false
	}
	root, err = canonicalize(root)
	if err != nil {
		return "", false
	}
	cand, err := canonicalize(path)
	if err != nil {
		return "", false
	}

	rel, err := filepath.Rel(root, cand)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		// The root itself is a directory, not a replayable file.
		return "", false
	}
	return cand, true
}

// TrustedRootDir returns the directory replay files must live in: the
// configured root, or {HOME}/.demo-builder resolved at call time.
func (r *Router) TrustedRootDir() (string, error) {
	if r.trustedRoot != "" {
		return r.trustedRoot, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("replay: resolve home: %w", err)
	}
	return filepath.Join(home, trustedRootDirName), nil
}

// canonicalize resolves p to an absolute path with symlinks and ".."
// segments eliminated.
func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
