package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRun_EndToEnd(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bake.yml"), "name: demo\n")
	writeFile(t, filepath.Join(root, "app", "cookbook.yml"), `
name: app
recipes:
  build:
    run: echo hello > out.txt
    outputs: [out.txt]
`)

	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	os.Args = []string{"bake", "run", "app:build", "--root", root}
	require.Equal(t, 0, run())

	out := filepath.Join(root, "app", "out.txt")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))

	// The artifact must land in the default local cache.
	entries, err := os.ReadDir(filepath.Join(root, ".bake", "cache"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// A second run restores the deleted output from the cache.
	require.NoError(t, os.Remove(out))
	os.Args = []string{"bake", "run", "app:build", "--root", root}
	require.Equal(t, 0, run())

	data, err = os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))
}

func TestRun_FailingRecipe(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bake.yml"), "name: demo\n")
	writeFile(t, filepath.Join(root, "app", "cookbook.yml"), `
name: app
recipes:
  broken:
    run: exit 1
`)

	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	os.Args = []string{"bake", "run", "app:broken", "--root", root}
	require.Equal(t, 1, run())
}

func TestRun_MissingProject(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	os.Args = []string{"bake", "run", "app:build", "--root", t.TempDir()}
	require.Equal(t, 1, run())
}
