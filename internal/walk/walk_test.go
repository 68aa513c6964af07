package walk

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilesFindsNestedSources(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.blcs"), []byte("##blcs\n"), 0o644); err != nil {
		t.Fatalf("write a.blcs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "b.blcs"), []byte("##blcs\n"), 0o644); err != nil {
		t.Fatalf("write b.blcs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "ignore.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write ignore.txt: %v", err)
	}

	files, err := Files(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), files)
	}
}
