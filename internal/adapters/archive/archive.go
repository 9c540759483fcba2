// Package archive implements artifact packing as gzip-compressed tarballs.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/trinio-labs/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Archiver = (*Archiver)(nil)

// Archiver packs recipe outputs into .tar.gz blobs and restores them.
// Headers are normalized (zero timestamps, no owner) so packing the same
// files always yields the same bytes.
type Archiver struct{}

// NewArchiver creates a new Archiver.
func NewArchiver() *Archiver {
	return &Archiver{}
}

// Pack collects the given paths, relative to dir, into a single compressed
// tarball. Directories are included recursively. A missing output path is
// an error: the recipe declared it but did not produce it.
func (a *Archiver) Pack(dir string, paths []string) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, p := range paths {
		abs := filepath.Join(dir, p)
		info, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, zerr.With(zerr.New("declared output missing"), "path", p)
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to stat output"), "path", p)
		}

		if info.IsDir() {
			err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				return a.addFile(tw, dir, path)
			})
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to pack output directory"), "path", p)
			}
			continue
		}
		if err := a.addFile(tw, dir, abs); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, zerr.Wrap(err, "failed to finalize archive")
	}
	if err := gz.Close(); err != nil {
		return nil, zerr.Wrap(err, "failed to finalize archive")
	}
	return buf.Bytes(), nil
}

// addFile writes one file entry with a normalized header.
func (a *Archiver) addFile(tw *tar.Writer, base, path string) error {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to relativize output path"), "path", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat output"), "path", path)
	}

	hdr := &tar.Header{
		Name:    filepath.ToSlash(rel),
		Mode:    int64(info.Mode().Perm()),
		Size:    info.Size(),
		ModTime: time.Unix(0, 0),
		Format:  tar.FormatPAX,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write archive header"), "path", rel)
	}

	f, err := os.Open(path) //nolint:gosec // Path comes from the recipe's output walk
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open output"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	if _, err := io.Copy(tw, f); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write output to archive"), "path", rel)
	}
	return nil
}

// Unpack restores a blob produced by Pack into dir. Entries that would
// escape dir are rejected.
func (a *Archiver) Unpack(dir string, blob []byte) error {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return zerr.Wrap(err, "failed to read artifact archive")
	}
	defer gz.Close() //nolint:errcheck // Best effort close in defer

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, "failed to read archive entry")
		}

		name := filepath.FromSlash(hdr.Name)
		if filepath.IsAbs(name) || strings.Contains(name, "..") {
			return zerr.With(zerr.New("archive entry escapes target directory"), "entry", hdr.Name)
		}
		target := filepath.Join(dir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to create directory"), "entry", hdr.Name)
			}
		case tar.TypeReg:
			if err := a.writeFile(target, hdr, tr); err != nil {
				return err
			}
		default:
			return zerr.With(zerr.New("unsupported archive entry type"), "entry", hdr.Name)
		}
	}
}

// writeFile restores one regular file entry.
func (a *Archiver) writeFile(target string, hdr *tar.Header, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "entry", hdr.Name)
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)) //nolint:gosec // Entry paths are validated against escapes
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "entry", hdr.Name)
	}

	if _, err := io.Copy(f, r); err != nil { //nolint:gosec // Artifact sizes are bounded by what Pack produced
		f.Close()
		return zerr.With(zerr.Wrap(err, "failed to restore file"), "entry", hdr.Name)
	}
	return f.Close()
}
