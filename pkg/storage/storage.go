package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a requested blob does not exist
var ErrNotFound = errors.New("blob not found")

// BlobStore is the object storage used for uploaded assets and generated PDFs.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Put stores the bytes under key and returns the public URL
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
	// Open returns a reader for the blob stored under key
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob stored under key
	Delete(ctx context.Context, key string) error
}

// DiskStore is a BlobStore backed by the local filesystem
type DiskStore struct {
	root          string
	publicBaseURL string
}

// NewDiskStore creates a disk-backed blob store rooted at root
func NewDiskStore(root, publicBaseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &DiskStore{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// cleanKey rejects keys that would escape the storage root
func (s *DiskStore) cleanKey(key string) (string, error) {
	key = strings.TrimLeft(key, "/")
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Put stores the bytes under key and returns the public URL
func (s *DiskStore) Put(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	path, err := s.cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return s.publicBaseURL + "/" + strings.TrimLeft(key, "/"), nil
}

// Open returns a reader for the blob stored under key
func (s *DiskStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.cleanKey(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the blob stored under key
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	path, err := s.cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
