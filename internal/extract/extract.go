// Package extract converts stored resume documents into plain text.
package extract

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"golang.org/x/text/encoding/charmap"

	"hr-assistant/internal/apperrors"
)

// Text extracts the textual content of the file at path, keyed by its
// extension. Unsupported extensions fail with KindUnsupported; a readable
// format with unreadable content fails with KindExtraction.
func Text(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return convert(path, "PDF")
	case ".docx":
		return convert(path, "DOCX")
	case ".txt":
		return textFile(path)
	default:
		return "", apperrors.Ef(apperrors.KindUnsupported, "unsupported file type: %s", ext)
	}
}

func convert(path, format string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindExtraction, format+" extraction failed", err)
	}
	return strings.TrimSpace(res.Body), nil
}

// textFile reads a plain-text file as UTF-8, falling back to Latin-1 when
// the bytes are not valid UTF-8. The fallback cannot fail: every byte
// sequence is valid Latin-1.
func textFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindExtraction, "TXT extraction failed", err)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return string(decoded), nil
}
