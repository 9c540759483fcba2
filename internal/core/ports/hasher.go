package ports

import "github.com/trinio-labs/bake/internal/core/domain"

// RecipeHasher defines the interface for computing recipe self hashes.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type RecipeHasher interface {
	// ComputeRecipeHash computes the hash of a recipe's own definition,
	// resolved variables and input file contents. Dependency hashes are
	// combined separately by the cache layer.
	ComputeRecipeHash(recipe *domain.Recipe, vars map[string]string, cookbookDir string) (string, error)
}
