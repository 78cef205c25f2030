// Package storage stores uploaded files on a local directory or an
// S3-compatible bucket (AWS S3, MinIO, R2, Spaces).
//
//	disk, err := storage.Open(ctx, storage.Config{Disk: "s3", S3: s3opts})
//	err = disk.Put(ctx, "products/p1/a.png", body, "image/png")
//	url := disk.URL("products/p1/a.png")
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Disk is implemented by every driver.
type Disk interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes path. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error
	// URL is the public address of path.
	URL(path string) string
}

// ErrInvalidPath is returned for paths that are empty or escape the disk.
var ErrInvalidPath = errors.New("storage: invalid path")

// Config selects and configures a disk.
type Config struct {
	Disk      string // "local" or "s3"
	LocalRoot string
	URL       string
	S3        S3Options
}

// Open builds the disk named by cfg.Disk.
func Open(ctx context.Context, cfg Config) (Disk, error) {
	switch cfg.Disk {
	case "", "local":
		return NewLocal(cfg.LocalRoot, cfg.URL)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", cfg.Disk)
	}
}

// clean normalises p to a slash-separated relative key.
func clean(p string) (string, error) {
	p = strings.TrimLeft(strings.ReplaceAll(p, "\\", "/"), "/")
	if p == "" {
		return "", ErrInvalidPath
	}
	c := path.Clean(p)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrInvalidPath
	}
	return c, nil
}
