package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-assistant/internal/apperrors"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestTextPlainUTF8(t *testing.T) {
	path := writeFile(t, "resume.txt", []byte("Jane Doe\nGo developer, five years"))

	text, err := Text(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo developer, five years", text)
}

func TestTextLatin1Fallback(t *testing.T) {
	// 0xE9 is 'é' in Latin-1 and invalid standalone UTF-8.
	path := writeFile(t, "resume.txt", []byte{'R', 0xE9, 's', 'u', 'm', 0xE9})

	text, err := Text(path)
	require.NoError(t, err)
	assert.Equal(t, "Résumé", text)
}

func TestTextUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "resume.odt", []byte("whatever"))

	_, err := Text(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnsupported))
	assert.Contains(t, err.Error(), ".odt")
}

func TestTextMissingTxtFileIsExtractionFailure(t *testing.T) {
	_, err := Text(filepath.Join(t.TempDir(), "gone.txt"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExtraction))
}

func TestTextCorruptPDFIsExtractionFailure(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("not a pdf at all"))

	_, err := Text(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExtraction))
}
