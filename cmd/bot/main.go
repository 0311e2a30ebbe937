// Package main is the entry point for the fetchclip Discord bot.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fetchclip/fetchclip/internal/bot"
	"github.com/fetchclip/fetchclip/internal/config"
	"github.com/fetchclip/fetchclip/internal/extract"
	"github.com/fetchclip/fetchclip/internal/fetch"
	"github.com/fetchclip/fetchclip/internal/media"
	"github.com/fetchclip/fetchclip/internal/resolve"
	transporthttp "github.com/fetchclip/fetchclip/internal/transport/http"
	"github.com/fetchclip/fetchclip/internal/workspace"
	"github.com/fetchclip/fetchclip/pkg/logger"
	"github.com/fetchclip/fetchclip/pkg/safehttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Merge tool location is resolved once; absence is never fatal.
	ffmpegPath := cfg.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = extract.LocateFFmpeg()
	}

	extractor := extract.NewChain(
		extract.NewYtDlp(extract.YtDlpConfig{
			Path:        cfg.YtDlpPath,
			FFmpegPath:  ffmpegPath,
			SizeCeiling: cfg.MaxFileSizeBytes,
			Timeout:     cfg.DownloadTimeout,
		}),
		extract.NewYouTube(cfg.MaxFileSizeBytes),
	)

	prober := media.NewProber(safehttp.NewClient(cfg.ProbeTimeout), cfg.ProbeTimeout)
	direct := fetch.NewDirect(safehttp.NewStreamClient(cfg.FetchHeaderTimeout), prober, cfg.MaxFileSizeBytes)

	var extractorStrategy resolve.Strategy
	if s := resolve.NewExtractorStrategy(extractor); s != nil {
		extractorStrategy = s
	}
	resolver := resolve.New(extractorStrategy, direct)

	workspaces := workspace.NewManager(cfg.DownloadDir)

	sweeper := workspace.NewSweeper(cfg.DownloadDir, cfg.SweepMaxAge, cfg.SweepInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	b, err := bot.New(cfg, resolver, workspaces)
	if err != nil {
		slog.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	if err := b.Start(ctx); err != nil {
		slog.Error("Failed to connect to Discord", "error", err)
		os.Exit(1)
	}
	defer b.Stop()

	server := transporthttp.NewServer(cfg.HTTPAddr, transporthttp.NewRouter(transporthttp.NewHandlers(b)))
	go func() {
		slog.Info("Ops server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Ops server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}
