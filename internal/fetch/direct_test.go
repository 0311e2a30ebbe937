package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchclip/fetchclip/internal/domain"
	"github.com/fetchclip/fetchclip/internal/media"
)

func newTestDirect(t *testing.T, server *httptest.Server, ceiling int64) *Direct {
	t.Helper()
	client := http.DefaultClient
	if server != nil {
		client = server.Client()
	}
	prober := media.NewProber(client, 2*time.Second)
	return NewDirect(client, prober, ceiling)
}

func TestDirect_Fetch_VideoExtension(t *testing.T) {
	body := bytes.Repeat([]byte{0xAB}, 1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write(body)
	}))
	defer server.Close()

	dir := t.TempDir()
	d := newTestDirect(t, server, 1024*1024)

	m, err := d.Fetch(context.Background(), server.URL+"/clip.mp4", dir)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), m.Size)
	assert.Equal(t, ".mp4", filepath.Ext(m.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(m.Path), "video_"))

	data, err := os.ReadFile(m.Path)
	require.NoError(t, err)
	assert.Equal(t, body, data)
}

func TestDirect_Fetch_ExtensionFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantExt     string
	}{
		{"video/webm", ".webm"},
		{"video/x-matroska", ".mkv"},
		{"video/mp4", ".mp4"},
		{"video/quicktime", ".mp4"}, // unknown subtype defaults to mp4
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte("data"))
			}))
			defer server.Close()

			d := newTestDirect(t, server, 1024)
			m, err := d.Fetch(context.Background(), server.URL+"/stream", t.TempDir())
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, filepath.Ext(m.Path))
		})
	}
}

func TestDirect_Fetch_NonVideoSkipsGET(t *testing.T) {
	var gets int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets++
		}
		w.Header().Set("Content-Type", "text/html")
	}))
	defer server.Close()

	d := newTestDirect(t, server, 1024)
	_, err := d.Fetch(context.Background(), server.URL+"/page", t.TempDir())

	assert.ErrorIs(t, err, domain.ErrNoResult)
	assert.Zero(t, gets, "no transfer should happen for non-video content")
}

func TestDirect_Fetch_CeilingAbortsAndDeletes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write(bytes.Repeat([]byte{0x01}, 101))
	}))
	defer server.Close()

	dir := t.TempDir()
	d := newTestDirect(t, server, 100)

	_, err := d.Fetch(context.Background(), server.URL+"/big.mp4", dir)
	assert.ErrorIs(t, err, domain.ErrSizeExceeded)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "partial file must be deleted")
}

func TestDirect_Fetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	d := newTestDirect(t, server, 1024)
	_, err := d.Fetch(context.Background(), server.URL+"/gone.mp4", t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNoResult)
}

func TestDirect_Fetch_UniqueNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer server.Close()

	dir := t.TempDir()
	d := newTestDirect(t, server, 1024)

	m1, err := d.Fetch(context.Background(), server.URL+"/clip.mp4", dir)
	require.NoError(t, err)
	m2, err := d.Fetch(context.Background(), server.URL+"/clip.mp4", dir)
	require.NoError(t, err)

	assert.NotEqual(t, m1.Path, m2.Path)
}

func TestOutputExtension(t *testing.T) {
	assert.Equal(t, ".mov", outputExtension("https://example.com/a.MOV", true, ""))
	assert.Equal(t, ".webm", outputExtension("https://example.com/x", false, "video/webm"))
	assert.Equal(t, ".mkv", outputExtension("https://example.com/x", false, "video/x-matroska"))
	assert.Equal(t, ".mp4", outputExtension("https://example.com/x", false, "video/anything"))
}
