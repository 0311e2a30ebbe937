package workspace

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Sweeper periodically removes orphaned workspace directories. A workspace
// only outlives its request when the process died mid-download, so anything
// older than maxAge is garbage.
type Sweeper struct {
	baseDir  string
	maxAge   time.Duration
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweeper creates a Sweeper over the manager's base directory.
func NewSweeper(baseDir string, maxAge, interval time.Duration) *Sweeper {
	return &Sweeper{
		baseDir:  baseDir,
		maxAge:   maxAge,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins periodic sweeping until the context is canceled or Stop is
// called. It runs one sweep immediately.
func (s *Sweeper) Start(ctx context.Context) {
	if s.baseDir == "" || s.interval <= 0 {
		return
	}

	go func() {
		slog.Info("Starting workspace sweeper",
			"dir", s.baseDir,
			"max_age", s.maxAge,
			"interval", s.interval,
		)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop stops the sweeping goroutine.
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

// sweep removes stale workspace directories under the base dir.
func (s *Sweeper) sweep() {
	matches, err := filepath.Glob(filepath.Join(s.baseDir, dirPattern))
	if err != nil {
		return
	}

	threshold := time.Now().Add(-s.maxAge)
	deleted := 0

	for _, dir := range matches {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if info.ModTime().Before(threshold) {
			if err := os.RemoveAll(dir); err != nil {
				slog.Warn("Failed to delete stale workspace", "dir", dir, "error", err)
			} else {
				deleted++
			}
		}
	}

	if deleted > 0 {
		slog.Info("Workspace sweep completed", "deleted", deleted, "max_age", s.maxAge)
	}
}
