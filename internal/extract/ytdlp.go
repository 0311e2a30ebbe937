package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoExtractor means no extractor capability is available in this process.
var ErrNoExtractor = errors.New("no extractor available")

// YtDlpConfig holds settings for the yt-dlp binding.
type YtDlpConfig struct {
	Path        string        // yt-dlp binary, default "yt-dlp"
	FFmpegPath  string        // merge tool location, empty when not found
	SizeCeiling int64         // bytes
	Timeout     time.Duration // whole run
}

// YtDlp runs the yt-dlp binary as the extractor capability. Format selection
// prefers a video+audio combination under the size ceiling, then any single
// stream under the ceiling, then the best available regardless of size; the
// final size check stays with the caller.
type YtDlp struct {
	cfg YtDlpConfig
}

// NewYtDlp creates the yt-dlp binding.
func NewYtDlp(cfg YtDlpConfig) *YtDlp {
	if cfg.Path == "" {
		cfg.Path = "yt-dlp"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &YtDlp{cfg: cfg}
}

// Name implements Extractor.
func (y *YtDlp) Name() string { return "yt-dlp" }

// Available reports whether the yt-dlp binary can be executed.
func (y *YtDlp) Available() bool {
	_, err := exec.LookPath(y.cfg.Path)
	return err == nil
}

// ExtractAndDownload implements Extractor.
func (y *YtDlp) ExtractAndDownload(ctx context.Context, url, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, y.cfg.Timeout)
	defer cancel()

	outputTemplate := filepath.Join(dir, "%(title).100s.%(ext)s")

	cmd := exec.CommandContext(ctx, y.cfg.Path, y.buildArgs(url, outputTemplate)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.New("extraction timed out")
		}
		return "", classifyError(string(output))
	}

	path := y.resolveOutputPath(string(output), dir)
	if path == "" {
		return "", errors.New("could not determine downloaded file path")
	}
	return path, nil
}

// buildArgs constructs the yt-dlp invocation.
func (y *YtDlp) buildArgs(url, outputTemplate string) []string {
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"--no-cache-dir",

		// Prefer combined streams under the ceiling, fall back to anything
		// under it, then to the best available at all.
		"-f", formatLadder(y.cfg.SizeCeiling),
		"--merge-output-format", "mp4",

		"-o", outputTemplate,
		"--print", "after_move:filepath",

		"--socket-timeout", "30",
		"--retries", "3",
	}

	// The merge tool is passed through only when it was found; its absence
	// must never fail an extraction on its own.
	if y.cfg.FFmpegPath != "" {
		args = append(args, "--ffmpeg-location", y.cfg.FFmpegPath)
	}

	return append(args, url)
}

// formatLadder builds the size-constrained format preference order.
func formatLadder(ceiling int64) string {
	return fmt.Sprintf(
		"bestvideo[filesize<%d]+bestaudio[filesize<%d]/best[filesize<%d]/bestvideo+bestaudio/best",
		ceiling, ceiling, ceiling,
	)
}

// resolveOutputPath locates the finished file. yt-dlp prints the final path,
// but merging may have changed the extension after the template was prepared,
// so a missing path is re-probed with the canonical merged extension before
// falling back to the newest file in the workspace.
func (y *YtDlp) resolveOutputPath(output, dir string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		if _, err := os.Stat(line); err == nil {
			return line
		}
		merged := strings.TrimSuffix(line, filepath.Ext(line)) + ".mp4"
		if _, err := os.Stat(merged); err == nil {
			return merged
		}
	}

	return newestFile(dir)
}

// newestFile returns the most recently modified regular file in dir.
func newestFile(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(dir, entry.Name())
			newestMod = info.ModTime()
		}
	}
	return newest
}

// classifyError maps raw yt-dlp output to stable error messages.
func classifyError(output string) error {
	switch {
	case strings.Contains(output, "Video unavailable"):
		return errors.New("video is unavailable or private")
	case strings.Contains(output, "Unsupported URL"):
		return errors.New("site is not supported")
	case strings.Contains(output, "is not a valid URL"):
		return errors.New("invalid video URL")
	default:
		return fmt.Errorf("yt-dlp error: %s", truncate(output, 200))
	}
}

// truncate shortens a string for error messages.
func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
