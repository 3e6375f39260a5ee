package filestorage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	store, err := NewLocalStorage(base)
	require.NoError(t, err)

	key := NewObjectKey("documents/12", "Convention.PDF")
	assert.True(t, strings.HasPrefix(key, "documents/12/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	require.NoError(t, store.Put(ctx, key, bytes.NewBufferString("hello"), 5, "application/pdf"))

	rc, err := store.Get(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocalStorage_KeysStayInsideBase(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(base, "store"))
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "../../escape.txt", strings.NewReader("x"), 1, "text/plain"))

	_, err = os.Stat(filepath.Join(base, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "store", "escape.txt"))
	assert.NoError(t, err)

	assert.Error(t, store.Put(ctx, "", strings.NewReader("x"), 1, "text/plain"))
}

func TestDetectMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMimeType("a.pdf", ""))
	assert.Equal(t, "image/png", DetectMimeType("a.bin", "image/png"))
	assert.Equal(t, "text/html", DetectMimeType("a.txt", "text/html; charset=utf-8"))
	assert.Equal(t, "application/octet-stream", DetectMimeType("noext", "application/octet-stream"))
}
