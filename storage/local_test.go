package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "http://localhost:8080/")
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "imports/abc/my song.mp3", strings.NewReader("ID3"), 3, "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/imports/abc/my%20song.mp3", url)

	data, err := os.ReadFile(filepath.Join(dir, "imports", "abc", "my song.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "ID3", string(data))

	require.NoError(t, s.Delete(context.Background(), "imports/abc/my song.mp3"))
	assert.ErrorIs(t, s.Delete(context.Background(), "imports/abc/my song.mp3"), ErrNotFound)
}

func TestLocalStoreRejectsUncleanKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(filepath.Join(dir, "uploads"), "")
	require.NoError(t, err)

	for _, key := range []string{"", "../../escape.mp3", "imports/abc/..", "imports/./a.mp3", "imports//a.mp3"} {
		_, err := s.Put(context.Background(), key, strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		assert.ErrorIs(t, s.Delete(context.Background(), key), ErrInvalidKey, key)
	}
	_, err = os.Stat(filepath.Join(dir, "escape.mp3"))
	assert.True(t, os.IsNotExist(err))

	// Nothing was written where later imports need a directory.
	_, err = os.Stat(filepath.Join(dir, "uploads", "imports"))
	assert.True(t, os.IsNotExist(err))
}
