package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/fetchclip/fetchclip/internal/media"
)

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// YouTube is a native extractor for YouTube URLs, used when no yt-dlp binary
// is installed. It only handles muxed formats, so it needs no merge tool.
type YouTube struct {
	client      youtube.Client
	sizeCeiling int64
}

// NewYouTube creates the native YouTube binding.
func NewYouTube(sizeCeiling int64) *YouTube {
	return &YouTube{sizeCeiling: sizeCeiling}
}

// Name implements Extractor.
func (yt *YouTube) Name() string { return "youtube-native" }

// Available implements Extractor. The binding is pure Go and always usable.
func (yt *YouTube) Available() bool { return true }

// ExtractAndDownload implements Extractor.
func (yt *YouTube) ExtractAndDownload(ctx context.Context, rawURL, dir string) (string, error) {
	if !isYouTubeURL(rawURL) {
		return "", errors.New("not a YouTube URL")
	}

	video, err := yt.client.GetVideoContext(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("get video info: %w", err)
	}

	format := yt.selectFormat(video)
	if format == nil {
		return "", errors.New("no video+audio format available")
	}

	stream, _, err := yt.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("get video stream: %w", err)
	}
	defer stream.Close()

	path := filepath.Join(dir, media.SanitizeFilename(video.Title)+".mp4")
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}

	if _, err := io.Copy(out, stream); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("download stream: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// selectFormat picks the best muxed format under the size ceiling, falling
// back to the best muxed format regardless of size.
func (yt *YouTube) selectFormat(video *youtube.Video) *youtube.Format {
	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil
	}

	var best, bestUnderCeiling *youtube.Format
	for i := range formats {
		f := &formats[i]
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
		if f.ContentLength > 0 && f.ContentLength < yt.sizeCeiling {
			if bestUnderCeiling == nil || f.Bitrate > bestUnderCeiling.Bitrate {
				bestUnderCeiling = f
			}
		}
	}

	if bestUnderCeiling != nil {
		return bestUnderCeiling
	}
	return best
}

func isYouTubeURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return youtubeHosts[strings.ToLower(u.Host)]
}
