package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileSnapshot persists the store snapshot to a single JSON file, the
// default backend. Saves go through a temp file plus rename so a crash
// mid-write never leaves a torn snapshot behind.
type FileSnapshot struct {
	path   string
	logger *zap.Logger
}

// NewFileSnapshot builds a file-backed snapshotter at path.
func NewFileSnapshot(path string, logger *zap.Logger) *FileSnapshot {
	return &FileSnapshot{path: path, logger: logger}
}

// Load reads the snapshot file. A missing file means no snapshot yet.
func (f *FileSnapshot) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.Info("no snapshot file yet, starting empty", zap.String("path", f.path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}
	return data, nil
}

// Save atomically replaces the snapshot file.
func (f *FileSnapshot) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", f.path, err)
	}
	return nil
}

// Ping verifies the snapshot directory is reachable.
func (f *FileSnapshot) Ping(_ context.Context) error {
	_, err := os.Stat(filepath.Dir(f.path))
	return err
}
