package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AvatarStorage persists uploaded files. Save must either store the whole file or leave nothing behind.
type AvatarStorage interface {
	Save(ctx context.Context, name string, src io.Reader, size int64) (string, error)
	Remove(ctx context.Context, location string) error
}

// DiskStorage writes files into a local directory.
type DiskStorage struct {
	dir string
}

// NewDiskStorage creates dir if needed and returns storage rooted at it.
func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &DiskStorage{dir: dir}, nil
}

// Save streams src into a temporary file next to the destination and renames it into place.
// On any failure, including cancellation of ctx, the temporary file is removed.
func (s *DiskStorage) Save(ctx context.Context, name string, src io.Reader, _ int64) (path string, err error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, contextReader{ctx: ctx, r: src}); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	path = filepath.Join(s.dir, name)
	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename file: %w", err)
	}
	return path, nil
}

// Remove deletes a file previously returned by Save.
func (s *DiskStorage) Remove(_ context.Context, location string) error {
	if filepath.Dir(location) != filepath.Clean(s.dir) {
		return fmt.Errorf("%s is outside %s", location, s.dir)
	}
	if err := os.Remove(location); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
