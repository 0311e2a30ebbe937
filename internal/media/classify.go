// Package media provides URL classification and filename sanitization helpers
// used to decide whether a bare URL points at video content.
package media

import (
	"net/url"
	"path"
	"strings"
)

// videoExtensions is the fixed set of path extensions treated as video files.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".flv":  true,
	".wmv":  true,
	".m4v":  true,
	".mpg":  true,
	".mpeg": true,
}

// IsValidURL reports whether s parses as an absolute http(s) URL with a host.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// HasVideoExtension reports whether the URL path ends with a known video
// extension, case-insensitively. Unparseable URLs are never videos.
func HasVideoExtension(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return videoExtensions[strings.ToLower(path.Ext(u.Path))]
}

// URLExtension returns the lower-cased extension of the URL path, including
// the leading dot, or "" when the path has none.
func URLExtension(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.ToLower(path.Ext(u.Path))
}
