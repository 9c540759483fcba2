package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/trinio-labs/bake/internal/adapters/fs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestWalker_WalkFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".git", "config"), "git config")
	writeFile(t, filepath.Join(tmpDir, ".bake", "cache", "x.tar.gz"), "blob")
	writeFile(t, filepath.Join(tmpDir, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(tmpDir, "README.md"), "readme")

	var files []string
	for path, err := range fs.NewWalker().WalkFiles(tmpDir, nil) {
		if err != nil {
			t.Fatal(err)
		}
		rel, err := filepath.Rel(tmpDir, path)
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, filepath.ToSlash(rel))
	}

	want := []string{"README.md", "src/main.go"}
	if !slices.Equal(files, want) {
		t.Errorf("unexpected files: got %v, want %v", files, want)
	}
}

func TestWalker_WalkFiles_Ignores(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "target", "out.bin"), "binary")
	writeFile(t, filepath.Join(tmpDir, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(tmpDir, "notes.tmp"), "scratch")

	var files []string
	for path, err := range fs.NewWalker().WalkFiles(tmpDir, []string{"target", "*.tmp"}) {
		if err != nil {
			t.Fatal(err)
		}
		rel, err := filepath.Rel(tmpDir, path)
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, filepath.ToSlash(rel))
	}

	want := []string{"src/main.go"}
	if !slices.Equal(files, want) {
		t.Errorf("unexpected files: got %v, want %v", files, want)
	}
}

func TestWalker_WalkFiles_StopsEarly(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a.txt"), "a")
	writeFile(t, filepath.Join(tmpDir, "b.txt"), "b")

	count := 0
	for range fs.NewWalker().WalkFiles(tmpDir, nil) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("expected iteration to stop after one file, got %d", count)
	}
}

func TestWalker_WalkFiles_UnreadableRoot(t *testing.T) {
	var walkErr error
	for path, err := range fs.NewWalker().WalkFiles(filepath.Join(t.TempDir(), "gone"), nil) {
		if err != nil {
			walkErr = err
			continue
		}
		t.Errorf("unexpected file yielded: %s", path)
	}
	if !errors.Is(walkErr, os.ErrNotExist) {
		t.Errorf("expected walk error for missing root, got %v", walkErr)
	}
}
