package resolve

import (
	"context"
	"log/slog"
	"os"

	"github.com/fetchclip/fetchclip/internal/domain"
	"github.com/fetchclip/fetchclip/internal/extract"
)

// ExtractorStrategy adapts an extract.Extractor to the Strategy contract.
// Every internal failure of the extraction pipeline (unsupported site,
// private content, tool errors) is caught here, logged, and converted into
// "no result" so the resolver can fall back.
type ExtractorStrategy struct {
	extractor extract.Extractor
}

// NewExtractorStrategy wraps an extractor capability. Returns nil when the
// capability is absent or unusable, which disables the strategy entirely.
func NewExtractorStrategy(extractor extract.Extractor) *ExtractorStrategy {
	if extractor == nil || !extractor.Available() {
		return nil
	}
	return &ExtractorStrategy{extractor: extractor}
}

// Name implements Strategy.
func (s *ExtractorStrategy) Name() string { return "extractor" }

// Fetch implements Strategy.
func (s *ExtractorStrategy) Fetch(ctx context.Context, url, dir string) (*domain.Media, error) {
	path, err := s.extractor.ExtractAndDownload(ctx, url, dir)
	if err != nil {
		slog.Warn("Extractor failed", "url", url, "error", err)
		return nil, domain.ErrNoResult
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Warn("Extractor reported success but output is missing", "url", url, "path", path)
		return nil, domain.ErrNoResult
	}

	return &domain.Media{Path: path, Size: info.Size()}, nil
}
