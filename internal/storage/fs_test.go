package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempContent(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempContent(t)
	content := []byte("---\ntitle: Hello\n---\n\nWorld\n")
	if err := s.Write("hello.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("hello.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempContent(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.md"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist reading deleted file, got %v", err)
	}
}

func TestMove(t *testing.T) {
	s := tempContent(t)
	_ = s.Write("old.md", []byte("data"))
	if err := s.Move("old.md", "new.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("new.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("old.md"); err == nil {
		t.Error("old name should not exist")
	}
}

func TestMove_RefusesOverwrite(t *testing.T) {
	s := tempContent(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("b.md", []byte("b"))
	err := s.Move("a.md", "b.md")
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("Move onto existing = %v, want ErrExist", err)
	}
	got, _ := s.Read("b.md")
	if string(got) != "b" {
		t.Errorf("target overwritten: %q", got)
	}
}

func TestList(t *testing.T) {
	s := tempContent(t)
	_ = s.Write("b.md", []byte("b"))
	_ = s.Write("a.mdx", []byte("a"))
	_ = s.Write("readme.txt", []byte("not a post"))
	_ = os.MkdirAll(filepath.Join(s.Root(), "sub"), 0o755)
	_ = os.WriteFile(filepath.Join(s.Root(), "sub", "c.md"), []byte("nested"), 0o644)

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(items), items)
	}
	if items[0].Slug != "a" || items[0].Filename != "a.mdx" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Slug != "b" || items[1].Checksum != Checksum([]byte("b")) {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestList_MarkdownWinsOverMDX(t *testing.T) {
	s := tempContent(t)
	_ = s.Write("dup.mdx", []byte("x"))
	_ = s.Write("dup.md", []byte("m"))
	items, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Filename != "dup.md" {
		t.Errorf("items = %+v, want only dup.md", items)
	}
}

func TestResolve(t *testing.T) {
	s := tempContent(t)
	_ = s.Write("x.mdx", []byte("x"))
	name, ok := s.Resolve("x")
	if !ok || name != "x.mdx" {
		t.Errorf("Resolve(x) = %q, %v", name, ok)
	}
	if _, ok := s.Resolve("missing"); ok {
		t.Error("Resolve(missing) should be false")
	}
	if _, ok := s.Resolve("../x"); ok {
		t.Error("Resolve with traversal should be false")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempContent(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
		"sub/inner.md",
		"..",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempContent(t)
	_ = s.Write("atomic.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".algonotes-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "algonotes-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestSlugOf(t *testing.T) {
	if s, ok := SlugOf("two-sum.md"); !ok || s != "two-sum" {
		t.Errorf("SlugOf(two-sum.md) = %q, %v", s, ok)
	}
	if s, ok := SlugOf("graph.mdx"); !ok || s != "graph" {
		t.Errorf("SlugOf(graph.mdx) = %q, %v", s, ok)
	}
	if _, ok := SlugOf("notes.txt"); ok {
		t.Error("SlugOf(notes.txt) should be false")
	}
}
