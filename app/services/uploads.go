package services

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
)

// MaxImageBytes caps product images and avatars.
const MaxImageBytes = 5 << 20

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// FileStore persists uploaded files. The storage disks satisfy it.
type FileStore interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// Upload is one uploaded file. ContentType is sniffed by the caller.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// storeImage checks up and writes it under dir/owner, returning its public URL.
func storeImage(ctx context.Context, files FileStore, field, dir, owner string, up Upload) (string, error) {
	if files == nil {
		return "", fmt.Errorf("uploads: no storage disk configured")
	}
	ext, ok := imageTypes[up.ContentType]
	if !ok {
		return "", invalid(field, "The "+field+" must be a jpeg, png, gif or webp image.")
	}
	if up.Size > MaxImageBytes {
		return "", invalid(field, "The "+field+" must not be larger than 5 MB.")
	}

	key := path.Join(dir, owner, uuid.NewString()+ext)
	if err := files.Put(ctx, key, io.LimitReader(up.Body, MaxImageBytes+1), up.ContentType); err != nil {
		return "", fmt.Errorf("uploads: put %s: %w", key, err)
	}
	return files.URL(key), nil
}
