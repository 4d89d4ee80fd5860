package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists a document as a JSON file. Commit writes the working
// copy to a sibling temp file and renames it over the original, so readers
// never observe a half-written document.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the JSON document at path. The
// file does not need to exist yet; Begin on a missing file starts from an
// empty document.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Begin loads the file into a working copy.
func (s *FileStore) Begin(ctx context.Context) (Txn, error) {
	doc, err := ReadDocumentFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc = NewDocument()
	} else if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return &fileTxn{Document: doc, path: s.path}, nil
}

// fileTxn is a transaction over a file-backed document.
type fileTxn struct {
	*Document
	path string
	done bool
}

// Commit writes the working copy to a temp file and renames it into place.
func (t *fileTxn) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true

	dir := filepath.Dir(t.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if err := WriteDocument(t.Document, tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("commit: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the working copy. The file is untouched.
func (t *fileTxn) Rollback(ctx context.Context) error {
	t.done = true
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Txn   = (*fileTxn)(nil)
)
