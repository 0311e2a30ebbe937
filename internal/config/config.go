// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot. It is built once at
// startup and treated as immutable afterwards.
type Config struct {
	// Discord
	DiscordToken string

	// Size ceiling
	MaxFileSizeMB    int
	MaxFileSizeBytes int64

	// Paths
	DownloadDir string

	// Extractor tooling
	YtDlpPath  string
	FFmpegPath string // empty means "locate at startup"

	// Timeouts
	DownloadTimeout    time.Duration // whole extractor run
	ProbeTimeout       time.Duration // HEAD content-type probe
	FetchHeaderTimeout time.Duration // direct fetch, time to first response header

	// Worker pool
	Workers   int
	QueueSize int

	// Per-user command rate limiting
	RatePerMinute int
	RateBurst     int

	// Ops HTTP server
	HTTPAddr string

	// Workspace sweeping
	SweepInterval time.Duration
	SweepMaxAge   time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, honoring a .env file when
// one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	maxMB := getEnvInt("MAX_FILE_SIZE_MB", 25)

	cfg := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),

		MaxFileSizeMB:    maxMB,
		MaxFileSizeBytes: int64(maxMB) * 1024 * 1024,

		DownloadDir: getEnv("DOWNLOAD_DIR", "downloads"),

		YtDlpPath:  getEnv("YTDLP_PATH", "yt-dlp"),
		FFmpegPath: os.Getenv("FFMPEG_PATH"),

		DownloadTimeout:    getEnvDuration("DOWNLOAD_TIMEOUT", 10*time.Minute),
		ProbeTimeout:       getEnvDuration("PROBE_TIMEOUT", 10*time.Second),
		FetchHeaderTimeout: getEnvDuration("FETCH_HEADER_TIMEOUT", 30*time.Second),

		Workers:   getEnvInt("WORKERS", 2),
		QueueSize: getEnvInt("QUEUE_SIZE", 16),

		RatePerMinute: getEnvInt("RATE_PER_MINUTE", 4),
		RateBurst:     getEnvInt("RATE_BURST", 2),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 10*time.Minute),
		SweepMaxAge:   getEnvDuration("SWEEP_MAX_AGE", time.Hour),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that must hold before the bot starts.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN environment variable is not set")
	}
	if c.MaxFileSizeBytes <= 0 {
		return errors.New("MAX_FILE_SIZE_MB must be greater than zero")
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.QueueSize < 1 {
		c.QueueSize = 1
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
