// Package uploads stores product images on disk and serves removal as
// a best-effort background step: a failed cleanup is logged and never
// fails the entity mutation that triggered it.
package uploads

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// URLPrefix is the public path the upload directory is mounted under.
const URLPrefix = "/uploads"

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes the uploaded file under a generated name and returns the
// public image reference ("/uploads/<name>").
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(fh.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return URLPrefix + "/" + name, nil
}

// Remove deletes the file behind an image reference without blocking
// the caller. Failures are swallowed and logged.
func (s *Store) Remove(imageRef string) {
	if imageRef == "" {
		return
	}
	// Base strips any path the reference carries, so only files inside
	// the upload dir can ever be removed.
	name := path.Base(imageRef)
	go func() {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: could not remove image file %s: %v", name, err)
		}
	}()
}
