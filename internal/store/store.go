// Package store persists each record collection as one flat document.
// Callers always read the whole snapshot, mutate it in memory and write the
// whole snapshot back; there are no partial updates and no locking, so two
// writers racing on the same collection is last-write-wins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Collection names. One document per collection.
const (
	Listings = "listings" // owner -> title -> listing
	Users    = "users"    // username -> password hash
	Comments = "comments" // "owner::title" -> ordered comments
)

// ErrMalformed means a stored document failed to parse. The request that
// hit it must abort; the document on disk is left untouched.
var ErrMalformed = errors.New("malformed store document")

// Store is the snapshot contract: Load fills out with the full current
// state of a collection (leaving it empty when none exists yet), Save
// atomically replaces the collection with the given value.
type Store interface {
	Load(collection string, out any) error
	Save(collection string, in any) error
}

// FileStore keeps one JSON file per collection in a data directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) Load(collection string, out any) error {
	raw, err := os.ReadFile(s.path(collection))
	if errors.Is(err, os.ErrNotExist) {
		return nil // empty snapshot
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", collection, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, collection, err)
	}
	return nil
}

// Save writes to a temp file in the same directory and renames it over the
// document, so a crash mid-write never leaves a half-written snapshot.
func (s *FileStore) Save(collection string, in any) error {
	tmp, err := os.CreateTemp(s.dir, collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := os.Rename(tmp.Name(), s.path(collection)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}
