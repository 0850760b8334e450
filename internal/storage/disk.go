package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DiskStore is a filesystem-backed BlobStore for local development and
// tests. Writes go through a temp file, fsync and an atomic rename so a
// crashed upload never leaves a half-written object behind.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, errors.Wrapf(err, "create blob dir %s", root)
	}
	return &DiskStore{root: root}, nil
}

// Root returns the store's base directory.
func (s *DiskStore) Root() string { return s.root }

// Put writes data under path, creating intermediate directories.
func (s *DiskStore) Put(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(full); err == nil {
		return errors.Errorf("object already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return errors.Wrap(err, "create object dir")
	}

	tmp := full + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "create temp object")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "write object")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "fsync object")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "close object")
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "rename object")
	}
	return nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *DiskStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete object")
	}
	return nil
}

// resolve rejects paths escaping the store root.
func (s *DiskStore) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if strings.Contains(path, "..") {
		return "", errors.Errorf("invalid object path: %s", path)
	}
	return filepath.Join(s.root, clean), nil
}
