// Package gcs implements the Google Cloud Storage cache strategy.
package gcs

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"

	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Strategy stores artifacts as objects in a GCS bucket.
type Strategy struct {
	bucket *storage.BucketHandle
}

var _ ports.CacheStrategy = (*Strategy)(nil)

// NewStrategy creates a GCS strategy over an existing bucket handle.
func NewStrategy(bucket *storage.BucketHandle) *Strategy {
	return &Strategy{bucket: bucket}
}

// FromConfig builds the GCS strategy from the project configuration, using
// application default credentials.
func FromConfig(ctx context.Context, project *domain.Project) (ports.CacheStrategy, error) {
	remotes := project.Config.Cache.Remotes
	if remotes == nil || remotes.GCS == nil {
		return nil, zerr.With(domain.ErrStrategyNotConfigured, "strategy", domain.StrategyGCS)
	}
	cfg := remotes.GCS
	if !cfg.Enabled {
		return nil, zerr.With(domain.ErrStrategyDisabled, "strategy", domain.StrategyGCS)
	}
	if cfg.Bucket == "" {
		return nil, zerr.With(zerr.With(domain.ErrStrategyNotConfigured, "strategy", domain.StrategyGCS), "field", "bucket")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create GCS client")
	}
	return NewStrategy(client.Bucket(cfg.Bucket)), nil
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return domain.StrategyGCS
}

// Fetch downloads the artifact object for key. A missing object is a miss.
func (s *Strategy) Fetch(ctx context.Context, key string) (*domain.Artifact, error) {
	r, err := s.bucket.Object(domain.ArtifactFileName(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to fetch artifact from GCS"), "key", key)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read artifact body"), "key", key)
	}
	return &domain.Artifact{Key: key, Data: data}, nil
}

// Store uploads the blob under key. Uploads are idempotent because keys
// are content-addressed.
func (s *Strategy) Store(ctx context.Context, key string, blob []byte) error {
	w := s.bucket.Object(domain.ArtifactFileName(key)).NewWriter(ctx)
	if _, err := w.Write(blob); err != nil {
		_ = w.Close()
		return zerr.With(zerr.Wrap(err, "failed to store artifact in GCS"), "key", key)
	}
	if err := w.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to store artifact in GCS"), "key", key)
	}
	return nil
}
