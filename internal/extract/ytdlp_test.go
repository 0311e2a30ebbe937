package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYtDlp_BuildArgs(t *testing.T) {
	y := NewYtDlp(YtDlpConfig{SizeCeiling: 26214400})
	args := y.buildArgs("https://example.com/v", "/tmp/ws/%(title).100s.%(ext)s")

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "--no-playlist")
	assert.Contains(t, joined, "--merge-output-format mp4")
	assert.Contains(t, joined, "--socket-timeout 30")
	assert.Contains(t, joined, "--retries 3")
	assert.Contains(t, joined, "filesize<26214400")
	assert.NotContains(t, joined, "--ffmpeg-location", "no merge tool means no location flag")
	assert.Equal(t, "https://example.com/v", args[len(args)-1], "URL must come last")
}

func TestYtDlp_BuildArgs_FFmpegPassthrough(t *testing.T) {
	y := NewYtDlp(YtDlpConfig{SizeCeiling: 100, FFmpegPath: "/usr/bin/ffmpeg"})
	args := y.buildArgs("https://example.com/v", "out")

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "--ffmpeg-location /usr/bin/ffmpeg")
}

func TestFormatLadder(t *testing.T) {
	ladder := formatLadder(1000)
	want := "bestvideo[filesize<1000]+bestaudio[filesize<1000]/best[filesize<1000]/bestvideo+bestaudio/best"
	assert.Equal(t, want, ladder)

	rungs := strings.Split(ladder, "/")
	require.Len(t, rungs, 4)
	assert.Equal(t, "best", rungs[3], "last rung must ignore the ceiling")
}

func TestYtDlp_ResolveOutputPath_PrintedPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	y := NewYtDlp(YtDlpConfig{})
	output := fmt.Sprintf("[download] Destination: something\n%s\n", path)
	assert.Equal(t, path, y.resolveOutputPath(output, dir))
}

func TestYtDlp_ResolveOutputPath_MergedExtension(t *testing.T) {
	// The capability may report the pre-merge name while the merged file
	// carries the canonical mp4 extension.
	dir := t.TempDir()
	merged := filepath.Join(dir, "My Clip.mp4")
	require.NoError(t, os.WriteFile(merged, []byte("x"), 0o644))

	y := NewYtDlp(YtDlpConfig{})
	reported := filepath.Join(dir, "My Clip.webm")
	assert.Equal(t, merged, y.resolveOutputPath(reported+"\n", dir))
}

func TestYtDlp_ResolveOutputPath_NewestFileFallback(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "older.mp4")
	newer := filepath.Join(dir, "newer.mp4")
	require.NoError(t, os.WriteFile(older, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("x"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	y := NewYtDlp(YtDlpConfig{})
	assert.Equal(t, newer, y.resolveOutputPath("[Merger] noise only\n", dir))
}

func TestYtDlp_ResolveOutputPath_Empty(t *testing.T) {
	y := NewYtDlp(YtDlpConfig{})
	assert.Equal(t, "", y.resolveOutputPath("", t.TempDir()))
}

func TestClassifyError(t *testing.T) {
	assert.EqualError(t, classifyError("ERROR: Video unavailable"), "video is unavailable or private")
	assert.EqualError(t, classifyError("ERROR: Unsupported URL: https://x"), "site is not supported")
	assert.EqualError(t, classifyError("'foo' is not a valid URL"), "invalid video URL")
	assert.Contains(t, classifyError("boom").Error(), "yt-dlp error")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("x", 300)
	got := truncate(long, 200)
	assert.Len(t, got, 203)
	assert.True(t, strings.HasSuffix(got, "..."))
}
