package ports

import (
	"context"

	"github.com/trinio-labs/bake/internal/core/domain"
)

// Executor defines the interface for running recipe commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the recipe's command in dir with the given variables
	// exported as environment variables.
	//
	// It returns an error if the command fails or the context is canceled.
	Execute(ctx context.Context, recipe *domain.Recipe, vars map[string]string, dir string) error
}
