package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-assistant/internal/apperrors"
)

func TestLocalFileStoreRoundTrip(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save([]byte("resume body"), "cv.txt", "candidate-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("candidate-1", "cv.txt"), rel)
	assert.True(t, store.Exists(rel))

	abs, err := store.AbsPath(rel)
	require.NoError(t, err)
	content, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "resume body", string(content))
}

func TestLocalFileStoreAbsPathMissing(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.AbsPath("nope/missing.pdf")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestLocalFileStoreDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("never/was.txt"))

	rel, err := store.Save([]byte("x"), "a.txt", "")
	require.NoError(t, err)
	require.NoError(t, store.Delete(rel))
	assert.False(t, store.Exists(rel))
}
