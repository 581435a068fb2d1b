// Package blob is the opaque image store: an upload directory addressed by
// generated reference strings. Nothing here inspects image contents; the
// catalog only counts and orders the references it gets back.
package blob

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes uploaded files into a single directory. The returned refs
// are bare filenames, safe to embed in URLs under the static mount.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir is the directory served statically for image display.
func (s *Store) Dir() string { return s.dir }

// Save stores one uploaded file under a fresh reference. The original
// filename only contributes its extension; the ref itself is a uuid so
// user input never reaches the filesystem path.
func (s *Store) Save(file multipart.File, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 5 {
		ext = ""
	}
	ref := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}
	return ref, nil
}

// Delete removes the file behind ref. Missing files and refs that are not
// plain filenames are ignored.
func (s *Store) Delete(ref string) error {
	if ref == "" || ref != filepath.Base(ref) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, ref))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
