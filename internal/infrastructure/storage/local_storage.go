package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalExporter writes export files into a directory
type LocalExporter struct {
	dir string
}

// NewLocalExporter creates an exporter rooted at dir ("" means the working directory)
func NewLocalExporter(dir string) *LocalExporter {
	if dir == "" {
		dir = "."
	}
	return &LocalExporter{dir: dir}
}

// Export writes data to dir/name and returns the file path
func (l *LocalExporter) Export(ctx context.Context, name string, data []byte, _ string) (string, error) {
	if name == "" {
		return "", ErrNameRequired
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	p := filepath.Join(l.dir, filepath.Base(name))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return p, nil
}
