package infra

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EvidenceStore is the opaque blob collaborator for task evidence images.
// Put returns a retrievable key; the core never interprets keys.
type EvidenceStore interface {
	Put(r io.Reader, ext string) (key string, err error)
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
}

// DiskEvidenceStore keeps evidence files under a single flat directory.
// Keys are "<uuid><ext>" so they double as safe file names.
type DiskEvidenceStore struct {
	dir string
}

func NewDiskEvidenceStore(dir string) (*DiskEvidenceStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("evidence dir: %w", err)
	}
	return &DiskEvidenceStore{dir: dir}, nil
}

func (s *DiskEvidenceStore) Put(r io.Reader, ext string) (string, error) {
	key := uuid.New().String() + ext
	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return key, nil
}

func (s *DiskEvidenceStore) Open(key string) (io.ReadCloser, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.dir, key))
}

func (s *DiskEvidenceStore) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// validKey rejects anything that could escape the storage directory.
func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid evidence key %q", key)
	}
	return nil
}
