// Package local implements the filesystem-backed cache strategy.
package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Strategy stores artifacts as files under a cache root directory. The
// directory is created lazily on the first store, so a fully cached build
// never touches the filesystem for writing.
type Strategy struct {
	root string
}

var _ ports.CacheStrategy = (*Strategy)(nil)

// NewStrategy creates a local strategy rooted at dir.
func NewStrategy(dir string) *Strategy {
	return &Strategy{root: dir}
}

// FromConfig builds the local strategy from the project configuration.
func FromConfig(_ context.Context, project *domain.Project) (ports.CacheStrategy, error) {
	cfg := project.Config.Cache.Local
	if !cfg.Enabled {
		return nil, zerr.With(domain.ErrStrategyDisabled, "strategy", domain.StrategyLocal)
	}
	dir := cfg.Path
	if dir == "" {
		dir = project.DefaultCachePath()
	}
	return NewStrategy(dir), nil
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return domain.StrategyLocal
}

// Path returns the cache root directory.
func (s *Strategy) Path() string {
	return s.root
}

// Fetch reads the artifact file for key. A missing file or missing cache
// directory is a miss.
func (s *Strategy) Fetch(_ context.Context, key string) (*domain.Artifact, error) {
	data, err := os.ReadFile(s.artifactPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read cached artifact"), "key", key)
	}
	return &domain.Artifact{Key: key, Data: data}, nil
}

// Store writes the blob under key. Keys are content-addressed, so an
// existing file is left untouched. The write goes through a temp file in
// the cache directory and a rename, so concurrent stores of the same key
// never expose a partial artifact.
func (s *Strategy) Store(_ context.Context, key string, blob []byte) error {
	target := s.artifactPath(key)
	if _, err := os.Stat(target); err == nil {
		return nil
	}

	if err := os.MkdirAll(s.root, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create cache directory")
	}

	tmp, err := os.CreateTemp(s.root, domain.ArtifactFileName(key)+".tmp*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temp artifact")
	}

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return zerr.With(zerr.Wrap(err, "failed to write artifact"), "key", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return zerr.With(zerr.Wrap(err, "failed to write artifact"), "key", key)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return zerr.With(zerr.Wrap(err, "failed to publish artifact"), "key", key)
	}
	return nil
}

func (s *Strategy) artifactPath(key string) string {
	return filepath.Join(s.root, domain.ArtifactFileName(key))
}
