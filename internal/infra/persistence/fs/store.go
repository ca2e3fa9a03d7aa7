// Package fs implements the document backend as plain JSON files in a
// directory. Writes go to a temp file that is synced and renamed into place,
// so readers never observe a partially written document.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"innkeeper/internal/document"
)

var _ document.Backend = (*Store)(nil)

// Store maps document names to files under root.
type Store struct {
	root string
	perm os.FileMode
}

// New returns a filesystem backend rooted at dir, creating it if needed. An
// empty dir means the working directory.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{root: dir, perm: 0o644}, nil
}

// Driver returns the backend driver identifier.
func (s *Store) Driver() document.Driver { return document.DriverFilesystem }

// Root returns the directory documents are stored in.
func (s *Store) Root() string { return s.root }

// sanitizeName keeps document names inside root.
func sanitizeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty document name")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if strings.HasPrefix(name, "/") || !filepath.IsLocal(clean) {
		return "", fmt.Errorf("document name %q escapes the data dir", name)
	}
	return clean, nil
}

func (s *Store) pathFor(name string) (string, error) {
	clean, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, clean), nil
}

// Read returns the file contents or document.ErrNotExist.
func (s *Store) Read(_ context.Context, name string) ([]byte, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, document.ErrNotExist
	}
	return data, err
}

// Write atomically replaces the file.
func (s *Store) Write(_ context.Context, name string, data []byte) error {
	path, err := s.pathFor(name)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, s.perm)
}

// Delete removes the file. A missing file is not an error.
func (s *Store) Delete(_ context.Context, name string) error {
	path, err := s.pathFor(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

// syncDir is best effort: some platforms refuse to fsync a directory.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	_ = d.Sync()
	return nil
}
