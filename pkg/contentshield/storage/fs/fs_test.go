package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentshield/contentshield/pkg/contentshield/storage/fs"
)

func TestFSBackend(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()

	store, err := fs.New(fs.Config{BaseDir: baseDir})
	require.NoError(t, err)

	t.Run("missing base dir rejected", func(t *testing.T) {
		_, err := fs.New(fs.Config{})
		assert.Error(t, err)
	})

	t.Run("upload writes under the object key", func(t *testing.T) {
		require.NoError(t, store.Upload(ctx, "deadbeef.txt", strings.NewReader("file body")))

		data, err := os.ReadFile(filepath.Join(baseDir, "deadbeef.txt"))
		require.NoError(t, err)
		assert.Equal(t, "file body", string(data))
	})

	t.Run("upload leaves no temp files behind", func(t *testing.T) {
		entries, err := os.ReadDir(baseDir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".upload-")
		}
	})

	t.Run("download round trip", func(t *testing.T) {
		rc, err := store.Download(ctx, "deadbeef.txt")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "file body", string(data))
	})

	t.Run("meta reports the file size", func(t *testing.T) {
		meta, err := store.GetObjectMeta(ctx, "deadbeef.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(len("file body")), meta.Size)
	})

	t.Run("re-upload of same key overwrites in place", func(t *testing.T) {
		require.NoError(t, store.Upload(ctx, "deadbeef.txt", strings.NewReader("replaced")))

		rc, err := store.Download(ctx, "deadbeef.txt")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "replaced", string(data))
	})

	t.Run("delete removes the file", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "deadbeef.txt"))

		_, err := store.Download(ctx, "deadbeef.txt")
		assert.Error(t, err)
	})

	t.Run("download url requires a prefix", func(t *testing.T) {
		_, err := store.GetDownloadURL(ctx, "deadbeef.txt", "")
		assert.Error(t, err)

		prefixed, err := fs.New(fs.Config{BaseDir: baseDir, URLPrefix: "http://localhost:8080"})
		require.NoError(t, err)
		url, err := prefixed.GetDownloadURL(ctx, "deadbeef.txt", "")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/download/deadbeef.txt", url)
	})
}
