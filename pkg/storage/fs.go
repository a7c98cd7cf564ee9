package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// FsBlobWriter writes DDL objects under a local directory.
type FsBlobWriter struct {
	fs  afero.Fs
	dir string
	now Clock
}

// NewFsBlobWriter creates a writer rooted at dir on fs.
func NewFsBlobWriter(fs afero.Fs, dir string) *FsBlobWriter {
	return &FsBlobWriter{fs: fs, dir: dir, now: time.Now}
}

// WithClock replaces the time source used for object names.
func (w *FsBlobWriter) WithClock(now Clock) *FsBlobWriter {
	w.now = now
	return w
}

// WriteBlob writes content to dir/prefix+timestamp and returns the file path.
func (w *FsBlobWriter) WriteBlob(_ context.Context, content, prefix string) (string, error) {
	path := filepath.Join(w.dir, ObjectName(prefix, w.now()))
	if err := w.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := afero.WriteFile(w.fs, path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.WithFields(log.Fields{"path": path, "bytes": len(content)}).Info("Wrote DDL")
	return path, nil
}
