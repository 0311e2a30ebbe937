// Package resolve orchestrates the download strategies: the extractor runs
// first, and the direct HTTP fetch is a narrow fallback for bare media URLs
// the extractor does not recognize.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fetchclip/fetchclip/internal/domain"
	"github.com/fetchclip/fetchclip/internal/metrics"
)

// Strategy is one way of turning a URL into a local video file. Expected
// failures surface as domain.ErrNoResult (or domain.ErrSizeExceeded); a
// strategy never lets transport or tool errors propagate raw.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, url, dir string) (*domain.Media, error)
}

// Resolver tries the extractor strategy, then the direct fetch strategy. The
// order is fixed: extraction supports a superset of sites and adaptive format
// selection, so it always goes first.
type Resolver struct {
	strategies []Strategy
}

// New creates a Resolver. The extractor strategy may be nil when no extractor
// capability exists in this process; resolution then relies on direct fetch
// alone.
func New(extractor, direct Strategy) *Resolver {
	var strategies []Strategy
	if extractor != nil {
		strategies = append(strategies, extractor)
	}
	if direct != nil {
		strategies = append(strategies, direct)
	}
	return &Resolver{strategies: strategies}
}

// Resolve downloads the video behind url into dir and returns the resulting
// file. When every strategy declines, it returns domain.ErrNoResult.
func (r *Resolver) Resolve(ctx context.Context, url, dir string) (*domain.Media, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure workspace directory: %w", err)
	}

	for _, s := range r.strategies {
		m, err := s.Fetch(ctx, url, dir)
		if err != nil {
			outcome := "no_result"
			if errors.Is(err, domain.ErrSizeExceeded) {
				outcome = "size_exceeded"
			}
			metrics.Resolutions.WithLabelValues(s.Name(), outcome).Inc()
			slog.Debug("Strategy yielded no result", "strategy", s.Name(), "url", url, "error", err)
			continue
		}

		// A zero-byte file counts as a failure even though it nominally
		// downloaded successfully.
		if m == nil || m.Size == 0 {
			if m != nil {
				os.Remove(m.Path)
			}
			metrics.Resolutions.WithLabelValues(s.Name(), "empty").Inc()
			slog.Warn("Strategy produced an empty file", "strategy", s.Name(), "url", url)
			continue
		}

		metrics.Resolutions.WithLabelValues(s.Name(), "success").Inc()
		slog.Info("Download resolved",
			"strategy", s.Name(),
			"url", url,
			"path", m.Path,
			"size", m.Size,
		)
		return m, nil
	}

	return nil, domain.ErrNoResult
}
