package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalPutURLDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root, "/media/", zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "ads/1/a.png", "image/png", strings.NewReader("png-bytes"), 9))

	data, err := os.ReadFile(filepath.Join(root, "ads", "1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "/media/ads/1/a.png", store.URL("ads/1/a.png"))

	require.NoError(t, store.Delete(ctx, "ads/1/a.png"))
	_, err = os.Stat(filepath.Join(root, "ads", "1", "a.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, "ads/1/a.png"))
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media", zap.NewNop())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../outside.png", "image/png", strings.NewReader("x"), 1)
	assert.Error(t, err)
	assert.Error(t, store.Delete(context.Background(), "/etc/passwd"))
}

func TestLocalPutCancelled(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root, "/media", zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = store.Put(ctx, "ads/2/b.png", "image/png", strings.NewReader("data"), 4)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(root, "ads", "2", "b.png"))
	assert.True(t, os.IsNotExist(statErr))
}
