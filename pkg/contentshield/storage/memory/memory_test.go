package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentshield/contentshield/pkg/contentshield/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	t.Run("upload and download round trip", func(t *testing.T) {
		require.NoError(t, store.Upload(ctx, "abc123.txt", strings.NewReader("hello")))

		rc, err := store.Download(ctx, "abc123.txt")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("meta reflects the stored bytes", func(t *testing.T) {
		meta, err := store.GetObjectMeta(ctx, "abc123.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(5), meta.Size)
		assert.Equal(t, "abc123.txt", meta.Key)
	})

	t.Run("delete removes the object", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "abc123.txt"))

		_, err := store.Download(ctx, "abc123.txt")
		assert.Error(t, err)

		assert.Error(t, store.Delete(ctx, "abc123.txt"))
	})

	t.Run("download url requires a prefix", func(t *testing.T) {
		_, err := store.GetDownloadURL(ctx, "abc123.txt", "")
		assert.Error(t, err)

		prefixed := memory.New(memory.WithURLPrefix("http://localhost:8080"))
		url, err := prefixed.GetDownloadURL(ctx, "abc123.txt", "photo.jpg")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/download/abc123.txt?filename=photo.jpg", url)
	})
}
