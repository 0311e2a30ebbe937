package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.DiscordToken)
	assert.Equal(t, 25, cfg.MaxFileSizeMB)
	assert.Equal(t, int64(25*1024*1024), cfg.MaxFileSizeBytes)
	assert.Equal(t, "downloads", cfg.DownloadDir)
	assert.Equal(t, "yt-dlp", cfg.YtDlpPath)
	assert.Equal(t, 10*time.Minute, cfg.DownloadTimeout)
	assert.Equal(t, 10*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoad_MissingTokenFails(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
}

func TestLoad_SizeCeilingFromMegabytes(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "x")
	t.Setenv("MAX_FILE_SIZE_MB", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(8*1024*1024), cfg.MaxFileSizeBytes)
}

func TestLoad_InvalidCeilingFails(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "x")
	t.Setenv("MAX_FILE_SIZE_MB", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DurationOverride(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "x")
	t.Setenv("DOWNLOAD_TIMEOUT", "90s")
	t.Setenv("PROBE_TIMEOUT", "garbage") // unparseable falls back to default

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, 10*time.Second, cfg.ProbeTimeout)
}
