package ports

import "github.com/trinio-labs/bake/internal/core/domain"

// ProjectLoader defines the interface for loading a project definition.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ProjectLoader interface {
	// Load reads the project and cookbook configuration starting at root
	// and returns the resolved project snapshot.
	Load(root string) (*domain.Project, error)
}
