package media

import "strings"

// maxFilenameLen bounds sanitized name components so templated output paths
// stay well under common filesystem limits.
const maxFilenameLen = 100

// SanitizeFilename turns an arbitrary title into a safe filename component.
// Characters that are unsafe on common filesystems and all control characters
// become underscores, leading/trailing dots and spaces are stripped, and the
// result is capped at 100 characters. An empty result falls back to "video".
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r < 0x20:
			b.WriteByte('_')
		case strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	s := strings.Trim(b.String(), ". ")
	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	if s == "" {
		return "video"
	}
	return s
}
