// Package storage stores original detection images and hands back opaque
// locators. Records keep the locator, never the image.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BlobStore is the blob capability the detection pipeline consumes
type BlobStore interface {
	// Put stores data under objectName and returns an opaque locator
	Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	// Delete removes the blob behind a locator previously returned by Put
	Delete(ctx context.Context, locator string) error
}

// uploadsPrefix is the canonical object prefix for original images
const uploadsPrefix = "uploads"

// ImageObjectName builds the date-partitioned object name for an
// uploaded image, e.g. uploads/2026-09-01/<id>.jpg
func ImageObjectName(createdAt time.Time, id, contentType string) string {
	ext := ".png"
	if contentType == "image/jpeg" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s/%s/%s%s", uploadsPrefix, createdAt.UTC().Format("2006-01-02"), id, ext)
}

// splitLocator splits "<scheme>://<bucket>/<object>" into bucket and
// object parts
func splitLocator(locator, scheme string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(locator, scheme+"://")
	if !ok {
		return "", "", fmt.Errorf("locator %q is not a %s locator", locator, scheme)
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed locator %q", locator)
	}
	return parts[0], parts[1], nil
}
