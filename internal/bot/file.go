package bot

import (
	"os"
	"path/filepath"
)

// mediaFile is an opened download with its upload name attached.
type mediaFile struct {
	*os.File
	name string
}

func openMedia(path string) (*mediaFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &mediaFile{File: f, name: filepath.Base(path)}, nil
}
