package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/trinio-labs/bake/internal/adapters/fs"
	"github.com/trinio-labs/bake/internal/core/domain"
)

func newHasher() *fs.Hasher {
	return fs.NewHasher(fs.NewWalker())
}

func TestHasher_ComputeRecipeHash_Stable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.go"), "package main")

	r := &domain.Recipe{
		Cookbook: "app",
		Name:     "build",
		Run:      "go build ./...",
		Inputs:   []string{"src"},
	}
	vars := map[string]string{"profile": "release", "region": "eu"}

	h1, err := newHasher().ComputeRecipeHash(r, vars, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := newHasher().ComputeRecipeHash(r, vars, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h1 != h2 {
		t.Errorf("hash must be stable for unchanged inputs: %s != %s", h1, h2)
	}
	if len(h1) != 16 {
		t.Errorf("expected 16 hex characters, got %q", h1)
	}
}

func TestHasher_ComputeRecipeHash_ChangesWithFileContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src", "main.go")
	writeFile(t, path, "package main")

	r := &domain.Recipe{Cookbook: "app", Name: "build", Run: "make", Inputs: []string{"src"}}

	before, err := newHasher().ComputeRecipeHash(r, nil, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writeFile(t, path, "package main // changed")
	after, err := newHasher().ComputeRecipeHash(r, nil, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if before == after {
		t.Error("hash must change when an input file changes")
	}
}

func TestHasher_ComputeRecipeHash_ChangesWithCommand(t *testing.T) {
	dir := t.TempDir()

	base := &domain.Recipe{Cookbook: "app", Name: "build", Run: "make"}
	changed := &domain.Recipe{Cookbook: "app", Name: "build", Run: "make release"}

	h1, err := newHasher().ComputeRecipeHash(base, nil, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := newHasher().ComputeRecipeHash(changed, nil, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h1 == h2 {
		t.Error("hash must change when the run command changes")
	}
}

func TestHasher_ComputeRecipeHash_ChangesWithVariables(t *testing.T) {
	dir := t.TempDir()
	r := &domain.Recipe{Cookbook: "app", Name: "build", Run: "make"}

	h1, err := newHasher().ComputeRecipeHash(r, map[string]string{"profile": "debug"}, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := newHasher().ComputeRecipeHash(r, map[string]string{"profile": "release"}, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h1 == h2 {
		t.Error("hash must change when a variable value changes")
	}
}

func TestHasher_ComputeRecipeHash_Glob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.proto"), "message A {}")
	writeFile(t, filepath.Join(dir, "b.proto"), "message B {}")
	writeFile(t, filepath.Join(dir, "ignored.txt"), "not matched")

	r := &domain.Recipe{Cookbook: "app", Name: "codegen", Run: "protoc", Inputs: []string{"*.proto"}}

	h1, err := newHasher().ComputeRecipeHash(r, nil, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A file outside the glob must not affect the hash.
	writeFile(t, filepath.Join(dir, "ignored.txt"), "still not matched")
	h2, err := newHasher().ComputeRecipeHash(r, nil, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 != h2 {
		t.Error("files outside the glob must not affect the hash")
	}

	writeFile(t, filepath.Join(dir, "b.proto"), "message B { int32 id = 1; }")
	h3, err := newHasher().ComputeRecipeHash(r, nil, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 == h3 {
		t.Error("hash must change when a matched file changes")
	}
}

func TestHasher_ComputeRecipeHash_MissingInput(t *testing.T) {
	dir := t.TempDir()
	r := &domain.Recipe{Cookbook: "app", Name: "build", Run: "make", Inputs: []string{"does-not-exist"}}

	if _, err := newHasher().ComputeRecipeHash(r, nil, dir); err == nil {
		t.Error("expected error for missing input, got nil")
	}
}

func TestHasher_ComputeRecipeHash_UnreadableInputDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	dir := t.TempDir()
	sub := filepath.Join(dir, "src", "locked")
	writeFile(t, filepath.Join(dir, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(sub, "hidden.go"), "package hidden")
	if err := os.Chmod(sub, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(sub, 0o750) })

	r := &domain.Recipe{Cookbook: "app", Name: "build", Run: "make", Inputs: []string{"src"}}

	// An input subtree that cannot be read must fail the hash instead of
	// fingerprinting a truncated file set.
	if _, err := newHasher().ComputeRecipeHash(r, nil, dir); err == nil {
		t.Error("expected error for unreadable input directory, got nil")
	}
}

func TestHasher_ComputeFileHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	writeFile(t, path, "content")

	h1, err := newHasher().ComputeFileHash(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := newHasher().ComputeFileHash(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 != h2 {
		t.Errorf("file hash must be stable: %d != %d", h1, h2)
	}

	if _, err := newHasher().ComputeFileHash(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file, got nil")
	}

	_ = os.Remove(path)
}
