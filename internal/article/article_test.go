package article

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseHeadingAndParagraphs(t *testing.T) {
	src := "# On Reading\n\nFirst  paragraph\nwraps here.\n\n\nSecond paragraph.\n"
	art, err := Parse("/tmp/reading.md", strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if art.Title != "On Reading" {
		t.Fatalf("unexpected title %q", art.Title)
	}
	if len(art.Paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %q", len(art.Paragraphs), art.Paragraphs)
	}
	if art.Paragraphs[0] != "First paragraph wraps here." {
		t.Fatalf("unexpected first paragraph %q", art.Paragraphs[0])
	}
}

func TestParseTitleFromFileName(t *testing.T) {
	art, err := Parse("/tmp/notes.txt", strings.NewReader("just text"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if art.Title != "notes" {
		t.Fatalf("expected title from file name, got %q", art.Title)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse("/tmp/empty.txt", strings.NewReader("\n\n# Title only\n")); err == nil {
		t.Fatalf("expected error for article without paragraphs")
	}
}

func TestSubjectIDStable(t *testing.T) {
	a := SubjectID("/home/u/a.md")
	if a != SubjectID("/home/u/a.md") {
		t.Fatalf("expected stable id")
	}
	if a == SubjectID("/home/u/b.md") {
		t.Fatalf("expected distinct ids for distinct paths")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.md")
	if err := os.WriteFile(path, []byte("# Story\n\nOnce.\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	art, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if art.Path != path || art.ID != SubjectID(path) {
		t.Fatalf("unexpected identity: %+v", art)
	}
}
