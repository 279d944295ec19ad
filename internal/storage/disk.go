// Package storage persists uploaded audio bytes on the local filesystem.
//
// The store is deliberately dumb: it writes whatever it is given under a
// configured root directory and returns the resulting path. Ownership,
// naming rules and validation live in the service layer.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore is the byte-persistence contract the audio service depends
// on. The disk implementation is the only one today; the interface keeps
// the service testable without touching the filesystem.
type BlobStore interface {
	// Save writes r to a location derived from name and returns the
	// storage path recorded alongside the audio record.
	Save(name string, r io.Reader) (string, error)
}

// DiskStore writes blobs into a single root directory.
//
// Two saves with the same name overwrite each other silently; callers
// that care about collisions must derive unique names themselves.
type DiskStore struct {
	root string
}

var _ BlobStore = (*DiskStore)(nil)

// NewDiskStore creates the root directory (and parents) if needed and
// returns a store writing into it.
func NewDiskStore(root string) (*DiskStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage: root directory must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating root %s: %w", root, err)
	}
	return &DiskStore{root: root}, nil
}

// Save writes the blob to <root>/<base of name>.
//
// Only the base of name is used, so a hostile name like
// "../../etc/passwd" cannot escape the root.
func (s *DiskStore) Save(name string, r io.Reader) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("storage: invalid blob name %q", name)
	}

	path := filepath.Join(s.root, base)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("storage: creating %s: %w", path, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("storage: writing %s: %w", path, err)
	}

	// Close flushes buffered data; a close error means the bytes may not
	// all be on disk, so treat it as a write failure.
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: closing %s: %w", path, err)
	}

	return path, nil
}
