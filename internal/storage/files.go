package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"hr-assistant/internal/apperrors"
)

// FileStore persists uploaded resume binaries. Paths handed back and
// accepted are always relative to the store's root.
type FileStore interface {
	// Save writes content under subdir/filename and returns the relative path.
	Save(content []byte, filename, subdir string) (string, error)
	// AbsPath resolves a relative path to an absolute one, failing when the
	// file does not exist.
	AbsPath(rel string) (string, error)
	Exists(rel string) bool
	// Delete removes a file; a missing file is a no-op.
	Delete(rel string) error
}

// LocalFileStore keeps files on the local filesystem under a base directory.
type LocalFileStore struct {
	baseDir string
}

func NewLocalFileStore(baseDir string) (*LocalFileStore, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalFileStore{baseDir: abs}, nil
}

func (s *LocalFileStore) Save(content []byte, filename, subdir string) (string, error) {
	dir := filepath.Join(s.baseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create subdir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), content, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return filepath.Join(subdir, filename), nil
}

func (s *LocalFileStore) AbsPath(rel string) (string, error) {
	abs := filepath.Join(s.baseDir, rel)
	if _, err := os.Stat(abs); err != nil {
		return "", apperrors.Ef(apperrors.KindNotFound, "file not found: %s", rel)
	}
	return abs, nil
}

func (s *LocalFileStore) Exists(rel string) bool {
	_, err := os.Stat(filepath.Join(s.baseDir, rel))
	return err == nil
}

func (s *LocalFileStore) Delete(rel string) error {
	abs := filepath.Join(s.baseDir, rel)
	if _, err := os.Stat(abs); err != nil {
		return nil
	}
	return os.Remove(abs)
}
