package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.RecipeHasher = (*Hasher)(nil)

// Hasher computes recipe self hashes from the recipe definition, its
// resolved variables and the content of its input files.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return hasher.Sum64(), nil
}

// ComputeRecipeHash computes a single hash covering the recipe definition,
// the merged variables and every input file's content. Dependency hashes
// are not part of it; the cache layer folds those in separately.
func (h *Hasher) ComputeRecipeHash(recipe *domain.Recipe, vars map[string]string, cookbookDir string) (string, error) {
	hasher := xxhash.New()

	h.hashRecipeDefinition(recipe, hasher)
	h.hashVariables(vars, hasher)

	if err := h.hashInputFiles(recipe, cookbookDir, hasher); err != nil {
		return "", err
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// hashRecipeDefinition hashes the recipe's key, command, inputs, outputs
// and dependency list.
func (h *Hasher) hashRecipeDefinition(recipe *domain.Recipe, hasher *xxhash.Digest) {
	_, _ = hasher.WriteString(recipe.FullName())
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.WriteString(recipe.Run)
	_, _ = hasher.Write([]byte{0})

	for _, input := range recipe.Inputs {
		_, _ = hasher.WriteString(input)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	for _, output := range recipe.Outputs {
		_, _ = hasher.WriteString(output)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	for _, dep := range recipe.Dependencies {
		_, _ = hasher.WriteString(dep)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})
}

// hashVariables hashes the variable map in sorted key order.
func (h *Hasher) hashVariables(vars map[string]string, hasher *xxhash.Digest) {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		_, _ = hasher.WriteString(k)
		_, _ = hasher.Write([]byte{'='})
		_, _ = hasher.WriteString(vars[k])
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})
}

// hashInputFiles hashes the content of every input, resolving globs and
// walking directories.
func (h *Hasher) hashInputFiles(recipe *domain.Recipe, cookbookDir string, hasher *xxhash.Digest) error {
	for _, input := range recipe.Inputs {
		path := filepath.Join(cookbookDir, input)
		if err := h.hashInputPath(path, cookbookDir, hasher); err != nil {
			return err
		}
	}
	return nil
}

// hashInputPath hashes a single input path, falling back to glob resolution
// when the path does not exist as-is.
func (h *Hasher) hashInputPath(path, base string, hasher *xxhash.Digest) error {
	if _, err := os.Stat(path); err != nil {
		return h.hashGlobMatches(path, base, hasher)
	}
	return h.hashPath(path, base, hasher)
}

// hashGlobMatches resolves path as a glob pattern and hashes every match in
// sorted order. A pattern with no matches is a missing input.
func (h *Hasher) hashGlobMatches(pattern, base string, hasher *xxhash.Digest) error {
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return zerr.With(zerr.New("input not found"), "path", pattern)
	}

	sort.Strings(matches)
	for _, match := range matches {
		if err := h.hashPath(match, base, hasher); err != nil {
			return err
		}
	}
	return nil
}

// hashPath hashes a file, or every file under a directory.
func (h *Hasher) hashPath(path, base string, hasher io.Writer) error {
	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
	}

	if !info.IsDir() {
		return h.hashFile(path, base, hasher)
	}
	for filePath, walkErr := range h.walker.WalkFiles(path, nil) {
		if walkErr != nil {
			return zerr.With(zerr.Wrap(walkErr, "failed to walk input directory"), "path", path)
		}
		if err := h.hashFile(filePath, base, hasher); err != nil {
			return err
		}
	}
	return nil
}

// hashFile folds a file's path and content hash into the digest. The path
// is written relative to the cookbook directory so fingerprints are stable
// across checkouts and machines.
func (h *Hasher) hashFile(path, base string, hasher io.Writer) error {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		rel = path
	}
	_, _ = hasher.Write([]byte(filepath.ToSlash(rel)))
	_, _ = hasher.Write([]byte{0})

	hash, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}
	if err := binary.Write(hasher, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}
