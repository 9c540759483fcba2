package cache

import (
	"context"

	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Constructor builds one cache strategy from the project configuration.
// Constructors validate their own config section: a disabled or missing
// section is a configuration error, not a silent skip.
type Constructor func(ctx context.Context, project *domain.Project) (ports.CacheStrategy, error)

// Builder assembles a Cache for one build: it instantiates the strategies
// named by the resolved cache order and computes the fingerprints for the
// requested recipes and their transitive dependencies.
type Builder struct {
	hasher       ports.RecipeHasher
	logger       ports.Logger
	constructors map[string]Constructor
}

// NewBuilder creates a Builder with no registered strategies.
func NewBuilder(hasher ports.RecipeHasher, logger ports.Logger) *Builder {
	return &Builder{
		hasher:       hasher,
		logger:       logger,
		constructors: make(map[string]Constructor),
	}
}

// AddStrategy registers a constructor under a strategy name, replacing any
// previous registration for that name.
func (b *Builder) AddStrategy(name string, ctor Constructor) *Builder {
	b.constructors[name] = ctor
	return b
}

// BuildForRecipes builds the cache for the given recipe keys. Every key's
// transitive dependency closure is fingerprinted so dependency artifacts
// can be fetched and stored too. An empty key list yields a cache that
// serves no recipes, which is valid.
func (b *Builder) BuildForRecipes(ctx context.Context, project *domain.Project, keys []domain.InternedString) (*Cache, error) {
	strategies, err := b.buildStrategies(ctx, project)
	if err != nil {
		return nil, err
	}

	fp := newFingerprinter(project, b.hasher)
	fingerprints := make(map[domain.InternedString]string, len(keys))

	var compute func(key domain.InternedString) error
	compute = func(key domain.InternedString) error {
		if _, done := fingerprints[key]; done {
			return nil
		}
		hash, err := fp.fingerprint(key.String())
		if err != nil {
			return err
		}
		fingerprints[key] = hash

		r := project.Recipe(key.String())
		for _, dep := range r.Dependencies {
			if err := compute(domain.NewInternedString(dep)); err != nil {
				return err
			}
		}
		return nil
	}

	for _, key := range keys {
		if err := compute(key); err != nil {
			return nil, err
		}
	}

	return New(strategies, fingerprints, b.logger), nil
}

// buildStrategies resolves the configured order and instantiates each
// strategy. Unknown names fail the build.
func (b *Builder) buildStrategies(ctx context.Context, project *domain.Project) ([]ports.CacheStrategy, error) {
	order := project.Config.Cache.ResolveOrder()
	strategies := make([]ports.CacheStrategy, 0, len(order))

	for _, name := range order {
		ctor, ok := b.constructors[name]
		if !ok {
			return nil, zerr.With(domain.ErrUnknownStrategy, "strategy", name)
		}
		strategy, err := ctor(ctx, project)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, strategy)
	}
	return strategies, nil
}
