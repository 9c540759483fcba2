package cache

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// fingerprinter computes combined recipe fingerprints: the recipe's own
// hash folded together with the combined hashes of its dependencies, sorted
// by key so the result is independent of declaration order. Results are
// memoized per build, so shared dependencies are hashed once.
type fingerprinter struct {
	project *domain.Project
	hasher  ports.RecipeHasher

	combined map[string]string
	visiting map[string]bool
}

func newFingerprinter(project *domain.Project, hasher ports.RecipeHasher) *fingerprinter {
	return &fingerprinter{
		project:  project,
		hasher:   hasher,
		combined: make(map[string]string),
		visiting: make(map[string]bool),
	}
}

// fingerprint returns the combined hash for a recipe key, computing and
// memoizing it and every transitive dependency hash on first use.
func (f *fingerprinter) fingerprint(key string) (string, error) {
	if fp, ok := f.combined[key]; ok {
		return fp, nil
	}
	if f.visiting[key] {
		return "", zerr.With(domain.ErrCycleDetected, "recipe", key)
	}

	r := f.project.Recipe(key)
	if r == nil {
		return "", zerr.With(domain.ErrRecipeNotFound, "recipe", key)
	}

	f.visiting[key] = true
	defer delete(f.visiting, key)

	self, err := f.hasher.ComputeRecipeHash(r, f.project.VariablesFor(r), f.project.CookbookDir(r))
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash recipe"), "recipe", key)
	}

	deps := slices.Clone(r.Dependencies)
	slices.Sort(deps)

	digest := xxhash.New()
	_, _ = digest.WriteString(self)
	for _, dep := range deps {
		depFp, err := f.fingerprint(dep)
		if err != nil {
			return "", err
		}
		_, _ = digest.Write([]byte{0})
		_, _ = digest.WriteString(depFp)
	}

	fp := fmt.Sprintf("%016x", digest.Sum64())
	f.combined[key] = fp
	return fp, nil
}
