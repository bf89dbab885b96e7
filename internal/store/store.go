// Package store manages the document storage root. Every document path
// is resolved relative to the root and must pass a strict containment
// check; this is a security boundary, not a convenience check.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNonLocal is returned for paths that resolve outside the storage
// root, independent of whether they exist.
var ErrNonLocal = errors.New("store: non-local path")

// Store is a document storage root.
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve store root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return &Store{root: abs}, nil
}

// Root returns the resolved storage root.
func (s *Store) Root() string {
	return s.root
}

// LocalPath resolves a user-supplied relative name against the root. The
// relative form of the result must be non-empty, must not start with ".."
// and must not be absolute; symlinks that escape the root are rejected
// the same way.
func (s *Store) LocalPath(name string) (string, error) {
	fpath := filepath.Join(s.root, name)
	rpath, err := filepath.Rel(s.root, fpath)
	if err != nil {
		return "", ErrNonLocal
	}
	if rpath == "" || rpath == "." || filepath.IsAbs(rpath) ||
		rpath == ".." || strings.HasPrefix(rpath, ".."+string(filepath.Separator)) {
		return "", ErrNonLocal
	}
	// a symlink inside the root may still point outside it
	if resolved, err := filepath.EvalSymlinks(fpath); err == nil {
		rel, err := filepath.Rel(s.root, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", ErrNonLocal
		}
	}
	return fpath, nil
}

// DocName maps an absolute path inside the root back to the relative
// document name clients use. Paths outside the root come back unchanged.
func (s *Store) DocName(fpath string) string {
	rel, err := filepath.Rel(s.root, fpath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fpath
	}
	return filepath.ToSlash(rel)
}

// Exists reports whether the named document exists inside the root.
func (s *Store) Exists(name string) bool {
	fpath, err := s.LocalPath(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(fpath)
	return err == nil
}

// Load reads the named document.
func (s *Store) Load(name string) (string, error) {
	fpath, err := s.LocalPath(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(fpath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write replaces the named document's content. The write goes to a
// temporary file in the same directory followed by a rename, so a crash
// mid-write never leaves a half-written document behind.
func (s *Store) Write(name, text string) error {
	fpath, err := s.LocalPath(name)
	if err != nil {
		return err
	}
	return WriteFile(fpath, text)
}

// WriteFile writes text to an already-validated absolute path using the
// temp-then-rename strategy.
func WriteFile(fpath, text string) error {
	tmp, err := os.CreateTemp(filepath.Dir(fpath), "."+filepath.Base(fpath)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), fpath)
}

// Create makes a new document seeded with a generated title line. It
// reports false with no error if the document already exists.
func (s *Store) Create(name string) (bool, error) {
	fpath, err := s.LocalPath(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(fpath); err == nil {
		return false, nil
	}
	text := fmt.Sprintf("#! %s\n", TitleFromFilename(name))
	if err := WriteFile(fpath, text); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the names of documents in the root with one of the given
// extensions (with leading dot, e.g. ".md").
func (s *Store) List(exts ...string) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				names = append(names, e.Name())
				break
			}
		}
	}
	return names, nil
}

// TitleFromFilename derives a display title from a document name:
// extension stripped, underscores to spaces, each word capitalized.
func TitleFromFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	words := strings.Split(base, "_")
	var out []string
	for _, w := range words {
		if w == "" {
			continue
		}
		out = append(out, strings.ToUpper(w[:1])+w[1:])
	}
	return strings.Join(out, " ")
}
