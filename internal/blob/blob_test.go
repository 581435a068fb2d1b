package blob

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func openFixture(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.png")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestSaveAndDelete(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ref, err := s.Save(openFixture(t, "pngdata"), "photo.PNG")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasSuffix(ref, ".png") {
		t.Errorf("Expected lowercased extension kept, got %q", ref)
	}
	if ref == "photo.png" || strings.ContainsAny(ref, "/\\") {
		t.Errorf("Ref must be a generated bare filename, got %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), ref))
	if err != nil || string(data) != "pngdata" {
		t.Errorf("Stored content mismatch: %q, %v", data, err)
	}

	if err := s.Delete(ref); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), ref)); !os.IsNotExist(err) {
		t.Error("File still present after Delete")
	}

	// Deleting again is fine.
	if err := s.Delete(ref); err != nil {
		t.Errorf("Expected silent no-op, got %v", err)
	}
}

func TestDeleteIgnoresPathTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	outside := filepath.Join(filepath.Dir(dir), "victim.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := s.Delete("../victim.txt"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("Delete must not follow path separators out of the upload dir")
	}
}
