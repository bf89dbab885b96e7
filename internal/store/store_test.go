package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestLocalPath_Containment(t *testing.T) {
	s := newStore(t)

	bad := []string{
		"",
		".",
		"..",
		"../outside.md",
		"a/../../outside.md",
	}
	for _, name := range bad {
		if _, err := s.LocalPath(name); !errors.Is(err, ErrNonLocal) {
			t.Errorf("LocalPath(%q): expected ErrNonLocal, got %v", name, err)
		}
	}

	good := []string{"doc.md", "sub/doc.md", "a/../b.md"}
	for _, name := range good {
		if _, err := s.LocalPath(name); err != nil {
			t.Errorf("LocalPath(%q): unexpected error %v", name, err)
		}
	}
}

func TestLocalPath_SymlinkEscape(t *testing.T) {
	s := newStore(t)
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.md")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(s.Root(), "sneaky.md")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if _, err := s.LocalPath("sneaky.md"); !errors.Is(err, ErrNonLocal) {
		t.Errorf("symlink escaping the root must be rejected, got %v", err)
	}
}

func TestWriteLoadRoundtrip(t *testing.T) {
	s := newStore(t)
	if err := s.Write("doc.md", "hello\nworld"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Load("doc.md")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "hello\nworld" {
		t.Errorf("Load: got %q", got)
	}
	// no temp files left behind
	entries, _ := os.ReadDir(s.Root())
	for _, e := range entries {
		if e.Name() != "doc.md" {
			t.Errorf("stray file after write: %s", e.Name())
		}
	}
}

func TestCreate_SeedsTitle(t *testing.T) {
	s := newStore(t)
	created, err := s.Create("my_new_doc.md")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created {
		t.Fatalf("expected creation")
	}
	got, err := s.Load("my_new_doc.md")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "#! My New Doc\n" {
		t.Errorf("seed content: got %q", got)
	}

	again, err := s.Create("my_new_doc.md")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if again {
		t.Errorf("creating an existing document must report false")
	}
}

func TestList_FiltersByExtension(t *testing.T) {
	s := newStore(t)
	for _, name := range []string{"a.md", "b.md", "refs.toml", "note.txt"} {
		if err := s.Write(name, "x"); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(s.Root(), "sub.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	mds, err := s.List(".md")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mds) != 2 {
		t.Errorf("expected 2 markdown files, got %v", mds)
	}
	toml, err := s.List(".toml")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(toml) != 1 || toml[0] != "refs.toml" {
		t.Errorf("expected refs.toml, got %v", toml)
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"my_doc.md", "My Doc"},
		{"single.md", "Single"},
		{"already_Capital.md", "Already Capital"},
		{"trailing_.md", "Trailing"},
	}
	for _, tt := range tests {
		if got := TitleFromFilename(tt.in); got != tt.want {
			t.Errorf("TitleFromFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestDocName(t *testing.T) {
	s := newStore(t)
	fpath, err := s.LocalPath("sub/doc.md")
	if err != nil {
		t.Fatalf("LocalPath: %v", err)
	}
	if got := s.DocName(fpath); got != "sub/doc.md" {
		t.Errorf("DocName: got %q", got)
	}
}
