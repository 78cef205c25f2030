package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/pkg/storage"
)

func TestLocalDisk(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocal(t.TempDir(), "http://localhost:4001/storage/")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "products/p1/a.png", strings.NewReader("png"), "image/png"))

	ok, err := disk.Exists(ctx, "products/p1/a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := disk.Get(ctx, "products/p1/a.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png", string(data))

	assert.Equal(t, "http://localhost:4001/storage/products/p1/a.png", disk.URL("products/p1/a.png"))

	require.NoError(t, disk.Delete(ctx, "products/p1/a.png"))
	require.NoError(t, disk.Delete(ctx, "products/p1/a.png"))
	ok, err = disk.Exists(ctx, "products/p1/a.png")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalDiskRejectsEscapes(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	for _, p := range []string{"", "../x", "a/../../x", "/"} {
		err := disk.Put(ctx, p, strings.NewReader("x"), "")
		assert.ErrorIs(t, err, storage.ErrInvalidPath, p)
	}
}

func TestLocalHandler(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	require.NoError(t, disk.Put(ctx, "avatars/u1/x.txt", strings.NewReader("hello"), ""))

	srv := http.StripPrefix("/storage/", disk.Handler())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/avatars/u1/x.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/avatars/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpenUnknownDisk(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Config{Disk: "ftp"})
	assert.Error(t, err)

	_, err = storage.Open(context.Background(), storage.Config{Disk: "s3"})
	assert.Error(t, err)
}
