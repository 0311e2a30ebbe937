package media

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Prober answers "does this URL serve video content?" using header-only HEAD
// requests. Results are cached briefly to avoid re-probing the same URL while
// both strategies inspect it.
type Prober struct {
	client  *http.Client
	timeout time.Duration
	cache   *gocache.Cache
}

// NewProber creates a Prober that issues HEAD requests through the given
// client with a per-probe timeout.
func NewProber(client *http.Client, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Prober{
		client:  client,
		timeout: timeout,
		cache:   gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// IsVideo reports whether the URL's declared Content-Type begins with
// "video/". Any network error, timeout, or non-2xx response means false;
// the probe never retries and never returns an error.
func (p *Prober) IsVideo(ctx context.Context, rawURL string) bool {
	if cached, found := p.cache.Get(rawURL); found {
		if v, ok := cached.(bool); ok {
			return v
		}
	}

	v := p.probe(ctx, rawURL)
	p.cache.Set(rawURL, v, gocache.DefaultExpiration)
	return v
}

func (p *Prober) probe(ctx context.Context, rawURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		slog.Debug("Content-type probe failed", "url", rawURL, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}
	return strings.HasPrefix(resp.Header.Get("Content-Type"), "video/")
}
