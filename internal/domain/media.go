// Package domain contains the core entities shared across the download pipeline.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrNoResult means a strategy determined that no suitable media exists or
	// is reachable at the URL. It is an expected outcome, not a fault.
	ErrNoResult = errors.New("no downloadable video found")

	// ErrSizeExceeded means the content would exceed, or while streaming
	// surpassed, the configured size ceiling.
	ErrSizeExceeded = errors.New("video exceeds maximum file size")
)

// Media is a resolved, fully downloaded video file. Ownership transfers to the
// caller, which must consume it before the owning workspace is released.
type Media struct {
	Path string // absolute path inside the request workspace
	Size int64  // bytes
}

// Job is one download request flowing through the worker queue.
type Job struct {
	ID         string
	URL        string
	UserID     string
	EnqueuedAt time.Time
}

// NewJob creates a Job for the given URL.
func NewJob(id, url, userID string) *Job {
	return &Job{
		ID:         id,
		URL:        url,
		UserID:     userID,
		EnqueuedAt: time.Now().UTC(),
	}
}
