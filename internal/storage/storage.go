package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// Store materializes generated media bytes and returns a handle the UI can
// reference (a local URL path or a public object URL).
type Store interface {
	Put(key, contentType string, data []byte) (string, error)
}

// Local writes media under a directory served by the HTTP layer at /media.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create media dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Put(key, contentType string, data []byte) (string, error) {
	name := filepath.Base(key) // keys never escape the media dir
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", name, err)
	}
	return path.Join("/media", name), nil
}
