package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore reads snapshot data from the local filesystem
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a local snapshot store rooted at basePath
func NewLocalStore(basePath string) (*LocalStore, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("snapshot path not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("snapshot path is not a directory: %s", basePath)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Get opens the file at the given key
func (s *LocalStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot object not found: %s", key)
		}
		return nil, fmt.Errorf("failed to open snapshot object: %w", err)
	}
	return file, nil
}

// List returns the relative paths of all files under the given prefix
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot objects: %w", err)
	}
	return keys, nil
}
