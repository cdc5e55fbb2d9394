package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-memo/internal/config"
)

// BlobStore is the byte-storage collaborator. Paths are relative,
// slash-separated, and produced by ObjectPath.
type BlobStore interface {
	Write(path string, data []byte) error
	Read(path string) ([]byte, error)
	Delete(path string) error
	Stat(path string) (int64, error)
}

// ObjectPath builds the storage path for a stored filename:
// <domain>/<year>/<month>/<filename>
func ObjectPath(domain Domain, at time.Time, filename string) string {
	return fmt.Sprintf("%s/%04d/%02d/%s", domain, at.Year(), int(at.Month()), filename)
}

// LocalBlobStore keeps blobs on the local filesystem under a base
// directory. Directories are created lazily on first write.
type LocalBlobStore struct {
	Base string
}

func NewLocalBlobStore(cfg *config.Config) *LocalBlobStore {
	return &LocalBlobStore{Base: cfg.FSPath}
}

func (s *LocalBlobStore) abs(path string) string {
	return filepath.Join(s.Base, filepath.FromSlash(path))
}

func (s *LocalBlobStore) Write(path string, data []byte) error {
	full := s.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}
	return os.WriteFile(full, data, 0644)
}

func (s *LocalBlobStore) Read(path string) ([]byte, error) {
	return os.ReadFile(s.abs(path))
}

func (s *LocalBlobStore) Delete(path string) error {
	err := os.Remove(s.abs(path))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalBlobStore) Stat(path string) (int64, error) {
	info, err := os.Stat(s.abs(path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
