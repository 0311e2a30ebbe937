// Package extract binds the bot to media extractor capabilities: tools that
// understand a site's page structure well enough to locate and download the
// underlying streams.
package extract

import (
	"context"
	"log/slog"
	"os/exec"
)

// Extractor resolves a page URL into a downloaded video file inside dir.
// Implementations select a format under their configured size ceiling when
// one exists and return the path of the finished file.
type Extractor interface {
	// Name identifies the extractor in logs and metrics.
	Name() string
	// Available reports whether the extractor can run in this process.
	Available() bool
	// ExtractAndDownload downloads the video behind url into dir.
	ExtractAndDownload(ctx context.Context, url, dir string) (string, error)
}

// LocateFFmpeg resolves the merge tool's location once at startup. An empty
// result is not an error: extraction proceeds with formats that need no
// merging.
func LocateFFmpeg() string {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		slog.Warn("ffmpeg not found, separate audio/video streams cannot be merged")
		return ""
	}
	slog.Info("Found ffmpeg", "path", path)
	return path
}

// Chain tries each extractor in order and returns the first result. Only
// extractors that report themselves available are attempted.
type Chain struct {
	extractors []Extractor
}

// NewChain creates a Chain over the given extractors.
func NewChain(extractors ...Extractor) *Chain {
	return &Chain{extractors: extractors}
}

// Name implements Extractor.
func (c *Chain) Name() string { return "chain" }

// Available reports whether any member extractor is available.
func (c *Chain) Available() bool {
	for _, e := range c.extractors {
		if e.Available() {
			return true
		}
	}
	return false
}

// ExtractAndDownload implements Extractor.
func (c *Chain) ExtractAndDownload(ctx context.Context, url, dir string) (string, error) {
	var lastErr error
	for _, e := range c.extractors {
		if !e.Available() {
			continue
		}
		path, err := e.ExtractAndDownload(ctx, url, dir)
		if err == nil {
			return path, nil
		}
		slog.Debug("Extractor failed", "extractor", e.Name(), "url", url, "error", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrNoExtractor
	}
	return "", lastErr
}
