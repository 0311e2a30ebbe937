// Package workspace manages per-request scratch directories. Every download
// runs inside its own uniquely named directory, which is removed once the
// caller has consumed the result.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
)

// dirPattern names workspace directories so the sweeper can recognize
// leftovers from crashed runs.
const dirPattern = "fetchclip-*"

// Manager creates and releases request workspaces under a base directory.
type Manager struct {
	baseDir string
}

// NewManager creates a Manager rooted at baseDir. The directory is created if
// possible; when it cannot be used, workspaces fall back to the system temp
// location.
func NewManager(baseDir string) *Manager {
	if baseDir != "" {
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			slog.Warn("Cannot create download directory, falling back to system temp",
				"dir", baseDir,
				"error", err,
			)
		}
	}
	return &Manager{baseDir: baseDir}
}

// Workspace is a scratch directory scoped to one request. All files written
// by either download strategy live under it.
type Workspace struct {
	dir string
}

// Acquire creates a fresh workspace. The caller must Release it on every exit
// path, typically via defer.
func (m *Manager) Acquire() (*Workspace, error) {
	root := ""
	if info, err := os.Stat(m.baseDir); err == nil && info.IsDir() {
		root = m.baseDir
	}

	dir, err := os.MkdirTemp(root, dirPattern)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace's directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Release removes the workspace and everything under it. Removal is
// best-effort: failures are logged and never fatal.
func (w *Workspace) Release() {
	if w == nil || w.dir == "" {
		return
	}
	if err := os.RemoveAll(w.dir); err != nil {
		slog.Warn("Failed to remove workspace", "dir", w.dir, "error", err)
	}
	w.dir = ""
}
