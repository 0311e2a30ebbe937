// Package fetch implements the direct download fallback: treating the URL
// itself as a link to a media file and streaming it byte-for-byte.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fetchclip/fetchclip/internal/domain"
	"github.com/fetchclip/fetchclip/internal/media"
)

// chunkSize is the copy granularity; the running byte count is checked
// against the ceiling after every chunk.
const chunkSize = 8 * 1024

// Direct streams an HTTP response to disk with a hard byte ceiling. It only
// runs for URLs that look like videos, either by extension or by a
// content-type probe.
type Direct struct {
	client      *http.Client
	prober      *media.Prober
	sizeCeiling int64
}

// NewDirect creates the direct fetch strategy. The client should be a
// streaming client: no overall timeout, bounded time to first header.
func NewDirect(client *http.Client, prober *media.Prober, sizeCeiling int64) *Direct {
	return &Direct{
		client:      client,
		prober:      prober,
		sizeCeiling: sizeCeiling,
	}
}

// Name identifies the strategy in logs and metrics.
func (d *Direct) Name() string { return "direct" }

// Fetch downloads the URL into dir when it looks like a video. Expected
// failures (non-video content, oversize, network errors) come back as
// domain.ErrNoResult or domain.ErrSizeExceeded; nothing else propagates.
func (d *Direct) Fetch(ctx context.Context, rawURL, dir string) (*domain.Media, error) {
	hasExt := media.HasVideoExtension(rawURL)
	if !hasExt && !d.prober.IsVideo(ctx, rawURL) {
		return nil, domain.ErrNoResult
	}

	m, err := d.download(ctx, rawURL, dir, hasExt)
	if err != nil {
		if err == domain.ErrSizeExceeded {
			slog.Warn("Direct download exceeded size limit", "url", rawURL)
			return nil, err
		}
		slog.Warn("Direct download failed", "url", rawURL, "error", err)
		return nil, domain.ErrNoResult
	}
	return m, nil
}

func (d *Direct) download(ctx context.Context, rawURL, dir string, hasExt bool) (*domain.Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	ext := outputExtension(rawURL, hasExt, resp.Header.Get("Content-Type"))
	name := media.SanitizeFilename("video_"+randomSuffix()) + ext
	path := filepath.Join(dir, name)

	size, err := d.streamToFile(resp.Body, path)
	if err != nil {
		return nil, err
	}
	return &domain.Media{Path: path, Size: size}, nil
}

// streamToFile copies body to path in fixed-size chunks, deleting the partial
// file the instant the running count exceeds the ceiling. A truncated or
// oversized file is never left behind.
func (d *Direct) streamToFile(body io.Reader, path string) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}

	var size int64
	buf := make([]byte, chunkSize)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			size += int64(n)
			if size > d.sizeCeiling {
				out.Close()
				os.Remove(path)
				return 0, domain.ErrSizeExceeded
			}
			if _, err := out.Write(buf[:n]); err != nil {
				out.Close()
				os.Remove(path)
				return 0, fmt.Errorf("write chunk: %w", err)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			os.Remove(path)
			return 0, fmt.Errorf("read body: %w", readErr)
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(path)
		return 0, err
	}
	return size, nil
}

// outputExtension prefers the URL's own extension when it was the video
// signal, then infers from the content type, then defaults to mp4.
func outputExtension(rawURL string, hasExt bool, contentType string) string {
	if hasExt {
		return media.URLExtension(rawURL)
	}
	switch {
	case strings.Contains(contentType, "webm"):
		return ".webm"
	case strings.Contains(contentType, "matroska"), strings.Contains(contentType, "x-matroska"):
		return ".mkv"
	default:
		return ".mp4"
	}
}

// randomSuffix returns an 8-hex-character suffix, keeping output names unique
// per call.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
