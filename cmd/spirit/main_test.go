package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunExport_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "paper.md"), []byte("#! A Paper\n\nHello."), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "paper.tex")

	err := runExport("", "paper", exportOptions{format: "latex", output: out, store: dir})
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `\begin{document}`) {
		t.Errorf("latex output missing document body: %q", data)
	}
	if !strings.Contains(string(data), "A Paper") {
		t.Errorf("latex output missing title: %q", data)
	}
}

func TestRunExport_StoreFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "note.md"), []byte("just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "note.md")

	// the default config points at a "store" directory that does not
	// exist here; the flag must win
	err := runExport("", "note.md", exportOptions{format: "md", output: out, store: dir})
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "just text" {
		t.Errorf("markdown export should pass through: %q", data)
	}
}

func TestRunExport_UnknownFormat(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := runExport("", "x", exportOptions{format: "pdf", store: dir})
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}
