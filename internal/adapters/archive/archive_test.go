package archive_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trinio-labs/bake/internal/adapters/archive"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestArchiver_RoundTrip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "bin", "app"), "binary")
	writeFile(t, filepath.Join(src, "bin", "helper"), "helper binary")
	writeFile(t, filepath.Join(src, "report.txt"), "report")

	a := archive.NewArchiver()
	blob, err := a.Pack(src, []string{"bin", "report.txt"})
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	dst := t.TempDir()
	require.NoError(t, a.Unpack(dst, blob))

	for path, content := range map[string]string{
		"bin/app":    "binary",
		"bin/helper": "helper binary",
		"report.txt": "report",
	} {
		data, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(path)))
		require.NoError(t, err)
		require.Equal(t, content, string(data))
	}
}

func TestArchiver_Pack_Deterministic(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "out", "a.txt"), "a")
	writeFile(t, filepath.Join(src, "out", "b.txt"), "b")

	a := archive.NewArchiver()
	blob1, err := a.Pack(src, []string{"out"})
	require.NoError(t, err)

	// Touch the files so only metadata differs.
	writeFile(t, filepath.Join(src, "out", "a.txt"), "a")
	blob2, err := a.Pack(src, []string{"out"})
	require.NoError(t, err)

	require.Equal(t, blob1, blob2, "packing identical content must yield identical bytes")
}

func TestArchiver_Pack_MissingOutput(t *testing.T) {
	a := archive.NewArchiver()
	_, err := a.Pack(t.TempDir(), []string{"never-produced"})
	require.Error(t, err)
}

func TestArchiver_Unpack_RejectsEscape(t *testing.T) {
	// Hand-build a tarball with a path traversal entry.
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	content := []byte("evil")
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "../evil.txt",
		Mode: 0o600,
		Size: int64(len(content)),
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	a := archive.NewArchiver()
	require.Error(t, a.Unpack(t.TempDir(), buf.Bytes()))
}

func TestArchiver_Unpack_RejectsGarbage(t *testing.T) {
	a := archive.NewArchiver()
	require.Error(t, a.Unpack(t.TempDir(), []byte("not a gzip stream")))
}
