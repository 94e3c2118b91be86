package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCSStore stores blobs in a Google Cloud Storage bucket and returns
// gs://bucket/object locators
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore creates a GCS-backed blob store for the given bucket
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("GCS bucket not configured")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{client: client, bucket: bucket}, nil
}

// Put uploads data under objectName and returns its gs:// locator
func (s *GCSStore) Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// Delete removes the object behind a gs:// locator. The bucket name is
// taken from the locator so records uploaded under a previous bucket
// configuration still delete correctly.
func (s *GCSStore) Delete(ctx context.Context, locator string) error {
	bucket, object, err := splitLocator(locator, "gs")
	if err != nil {
		return err
	}

	if err := s.client.Bucket(bucket).Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", object, err)
	}
	return nil
}

// Close releases the underlying client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
