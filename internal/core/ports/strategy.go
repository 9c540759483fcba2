// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"github.com/trinio-labs/bake/internal/core/domain"
)

// CacheStrategy is a single cache backend (a tier). Implementations store
// opaque artifact blobs under fingerprint keys.
//
//go:generate go run go.uber.org/mock/mockgen -source=strategy.go -destination=mocks/mock_strategy.go -package=mocks
type CacheStrategy interface {
	// Name returns the strategy name as used in the cache order ("local",
	// "s3", "gcs").
	Name() string

	// Fetch retrieves the artifact stored under key.
	// Returns nil, nil if the key is not present (a cache miss).
	Fetch(ctx context.Context, key string) (*domain.Artifact, error)

	// Store writes blob under key. Storing an existing key is a no-op:
	// keys are content-addressed, so equal keys mean equal blobs.
	Store(ctx context.Context, key string, blob []byte) error
}
