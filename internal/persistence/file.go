package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage stores the slot as a single file, written via a temp file
// and rename so readers never observe a partial snapshot.
type FileStorage struct {
	path string
}

// NewFileStorage creates a file-backed slot at path, creating parent
// directories as needed.
func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating memory dir: %w", err)
	}
	return &FileStorage{path: path}, nil
}

func (f *FileStorage) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing memory file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing memory file: %w", err)
	}
	return nil
}

func (f *FileStorage) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrEmptySlot
	}
	if err != nil {
		return nil, fmt.Errorf("reading memory file: %w", err)
	}
	return data, nil
}

func (f *FileStorage) Close() error { return nil }
