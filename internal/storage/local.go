package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore keeps blobs on the local filesystem. Used for development
// and tests; locators use the file scheme with the root as the bucket.
type LocalStore struct {
	root string
}

// NewLocalStore creates a filesystem-backed blob store rooted at dir
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &LocalStore{root: dir}, nil
}

// Put writes data under the root and returns a file:// locator
func (s *LocalStore) Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object %s: %w", objectName, err)
	}
	// "local" stands in for the bucket part of the locator scheme
	return fmt.Sprintf("file://local/%s", objectName), nil
}

// Delete removes the file behind a file:// locator
func (s *LocalStore) Delete(ctx context.Context, locator string) error {
	_, object, err := splitLocator(locator, "file")
	if err != nil {
		return err
	}

	path := filepath.Join(s.root, filepath.FromSlash(object))
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", object, err)
	}
	return nil
}
