// Package assets provides read access to the static files the renderer
// needs: the background image and the font files. Assets load either from
// a local directory or from a Google Cloud Storage bucket.
package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
)

// Store opens named assets for reading.
type Store interface {
	// Open returns a reader for the named asset.
	// The caller must close the returned reader.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// ReadAll reads a whole asset into memory.
func ReadAll(ctx context.Context, store Store, name string) ([]byte, error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading asset %s: %w", name, err)
	}

	return data, nil
}

// LocalStore serves assets from a directory on disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Open implements Store.
func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Clean(name)))
	if err != nil {
		return nil, fmt.Errorf("opening asset %s: %w", name, err)
	}

	return f, nil
}

// Name returns the health check name for this store.
// Implements ports.HealthChecker.
func (s *LocalStore) Name() string {
	return "assets"
}

// Check verifies the asset directory exists and is readable.
// Implements ports.HealthChecker.
func (s *LocalStore) Check(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("asset directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("asset path %s is not a directory", s.dir)
	}

	return nil
}

// GCSStore serves assets from a Google Cloud Storage bucket.
type GCSStore struct {
	bucket *gcs.BucketHandle
	name   string
}

// NewGCSStore creates a store backed by the named bucket.
func NewGCSStore(client *gcs.Client, bucket string) *GCSStore {
	return &GCSStore{
		bucket: client.Bucket(bucket),
		name:   bucket,
	}
}

// Open implements Store.
func (s *GCSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening gs://%s/%s: %w", s.name, name, err)
	}

	return rc, nil
}

// Name returns the health check name for this store.
// Implements ports.HealthChecker.
func (s *GCSStore) Name() string {
	return "assets"
}

// Check verifies the bucket is reachable.
// Implements ports.HealthChecker.
func (s *GCSStore) Check(ctx context.Context) error {
	if _, err := s.bucket.Attrs(ctx); err != nil {
		return fmt.Errorf("asset bucket %s: %w", s.name, err)
	}

	return nil
}
