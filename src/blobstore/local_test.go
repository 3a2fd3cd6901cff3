package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectName(t *testing.T) {
	a := NewObjectName("image-feedbacks", "../../etc/my photo.png")
	b := NewObjectName("image-feedbacks", "../../etc/my photo.png")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "image-feedbacks/"))
	assert.True(t, strings.HasSuffix(a, "-my_photo.png"))
	assert.NotContains(t, a, "..")
}

func TestLocalStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8888/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Store(ctx, "image-feedbacks/a b.jpg", "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8888/uploads/image-feedbacks/a%20b.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "image-feedbacks", "a b.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	deleted, err := store.Delete(ctx, url)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, url)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLocalStoreRejectsForeignURL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8888/uploads")
	require.NoError(t, err)

	_, err = store.Delete(context.Background(), "https://elsewhere.example/x.jpg")
	assert.Error(t, err)
}

func TestLocalStoreCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "blobs"), "http://h/u")
	require.NoError(t, err)

	outside := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	deleted, err := store.Delete(context.Background(), "http://h/u/..%2Fsecret.txt")
	require.NoError(t, err)
	assert.False(t, deleted)
	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)
}
