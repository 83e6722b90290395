package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"koperasi-backend/internal/storage"
)

func TestLocalStorage(t *testing.T) {
	s, err := storage.NewLocalStorage("http://localhost:8080", t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	t.Run("SaveAndOpen", func(t *testing.T) {
		key, url, err := s.Save(ctx, "bukti-transfer.jpg", strings.NewReader("image-bytes"))
		assert.NoError(t, err)
		assert.True(t, strings.HasSuffix(key, ".jpg"))
		assert.Contains(t, url, "/api/v1/files/"+key)

		exists, size, err := s.Exists(ctx, key)
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, int64(len("image-bytes")), size)

		rc, err := s.Open(ctx, key)
		assert.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		assert.NoError(t, err)
		assert.Equal(t, "image-bytes", string(data))
	})

	t.Run("PathTraversalNeutralized", func(t *testing.T) {
		key, _, err := s.Save(ctx, "../../etc/passwd", strings.NewReader("x"))
		assert.NoError(t, err)
		assert.NotContains(t, key, "/")

		_, err = s.Open(ctx, "../"+key)
		assert.NoError(t, err)
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		key, _, err := s.Save(ctx, "a.png", strings.NewReader("x"))
		assert.NoError(t, err)
		assert.NoError(t, s.Delete(ctx, key))
		assert.NoError(t, s.Delete(ctx, key))

		exists, _, err := s.Exists(ctx, key)
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}
