package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}

	// Idempotent on an existing directory
	if err := EnsureDir(path); err != nil {
		t.Errorf("EnsureDir on existing dir failed: %v", err)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if !FileExists(path) {
		t.Error("expected true for an existing file")
	}
	if FileExists(filepath.Join(dir, "absent.txt")) {
		t.Error("expected false for a missing file")
	}
}

func TestCleanupFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.gif")
	b := filepath.Join(dir, "b.gif")
	if err := os.WriteFile(a, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(b, []byte("y"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Missing entries are ignored, existing ones removed
	CleanupFiles(a, filepath.Join(dir, "never-existed.gif"), b)

	if FileExists(a) || FileExists(b) {
		t.Error("expected both files removed")
	}
}
