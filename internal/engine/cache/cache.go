// Package cache implements the tiered build cache: an ordered aggregate of
// cache strategies plus the fingerprint derivation that addresses artifacts.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Cache aggregates the configured strategies in precedence order and maps
// recipe keys to their fingerprints. A Cache is built per run by the
// Builder; strategies and fingerprints do not change afterwards.
type Cache struct {
	strategies   []ports.CacheStrategy
	fingerprints map[domain.InternedString]string
	logger       ports.Logger
}

// New creates a Cache over the given strategies, in fetch precedence order.
func New(strategies []ports.CacheStrategy, fingerprints map[domain.InternedString]string, logger ports.Logger) *Cache {
	return &Cache{
		strategies:   strategies,
		fingerprints: fingerprints,
		logger:       logger,
	}
}

// KeyFor returns the fingerprint computed for a recipe key. The second
// return value is false for recipes outside the build's target closure.
func (c *Cache) KeyFor(recipe domain.InternedString) (string, bool) {
	fp, ok := c.fingerprints[recipe]
	return fp, ok
}

// Strategies returns the names of the active tiers in precedence order.
func (c *Cache) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Fetch looks the recipe's artifact up tier by tier and returns the first
// hit. A tier error is logged and treated as a miss for that tier. On a hit
// in a lower tier the artifact is written back to the tiers before it, best
// effort. Returns nil, nil when every tier misses or the recipe has no
// fingerprint.
func (c *Cache) Fetch(ctx context.Context, recipe domain.InternedString) (*domain.Artifact, error) {
	fp, ok := c.fingerprints[recipe]
	if !ok {
		return nil, nil
	}

	for i, s := range c.strategies {
		artifact, err := s.Fetch(ctx, fp)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			c.logger.Warn(fmt.Sprintf("cache fetch failed in tier %s for %s: %v", s.Name(), recipe, err))
			continue
		}
		if artifact == nil {
			continue
		}
		c.writeBack(ctx, fp, artifact.Data, c.strategies[:i])
		return artifact, nil
	}
	return nil, nil
}

// writeBack promotes a blob into the tiers that missed before the hit.
func (c *Cache) writeBack(ctx context.Context, fp string, blob []byte, tiers []ports.CacheStrategy) {
	for _, s := range tiers {
		if err := s.Store(ctx, fp, blob); err != nil {
			c.logger.Warn(fmt.Sprintf("cache write-back failed in tier %s: %v", s.Name(), err))
		}
	}
}

// Store fans the blob out to every tier concurrently. Individual tier
// failures are logged; Store fails only when no tier accepted the blob.
func (c *Cache) Store(ctx context.Context, recipe domain.InternedString, blob []byte) error {
	fp, ok := c.fingerprints[recipe]
	if !ok {
		return zerr.With(domain.ErrRecipeNotFound, "recipe", recipe.String())
	}
	if len(c.strategies) == 0 {
		return nil
	}

	var mu sync.Mutex
	var failed []string

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range c.strategies {
		g.Go(func() error {
			if err := s.Store(gctx, fp, blob); err != nil {
				mu.Lock()
				failed = append(failed, s.Name())
				mu.Unlock()
				c.logger.Warn(fmt.Sprintf("cache store failed in tier %s for %s: %v", s.Name(), recipe, err))
			}
			// Tier failures must not cancel sibling stores.
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) == len(c.strategies) {
		return zerr.With(zerr.With(domain.ErrCacheStoreFailed, "recipe", recipe.String()),
			"tiers", strings.Join(failed, ","))
	}
	return nil
}
