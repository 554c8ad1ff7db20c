// Package session handles the on-disk side of session logs: exporting the
// router's buffered content to a file under the trusted root, and watching
// the root for log files handed off by a crashed prior process.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	filePrefix = "session-"
	fileSuffix = ".log"
)

// Export writes content to a fresh session-<uuid>.log under dir, creating
// dir if needed, and returns the file's path. Files are owner-only: the
// content is a log and logs leak context.
func Export(dir, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("session: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, filePrefix+uuid.NewString()+fileSuffix)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("session: write %s: %w", path, err)
	}
	return path, nil
}

// IsSessionFile reports whether path names a session log handoff file.
func IsSessionFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, filePrefix) && strings.HasSuffix(base, fileSuffix)
}
