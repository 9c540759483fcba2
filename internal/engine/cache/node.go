package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/trinio-labs/bake/internal/adapters/cache/gcs"   //nolint:depguard // Wired in engine wiring
	"github.com/trinio-labs/bake/internal/adapters/cache/local" //nolint:depguard // Wired in engine wiring
	"github.com/trinio-labs/bake/internal/adapters/cache/s3"    //nolint:depguard // Wired in engine wiring
	"github.com/trinio-labs/bake/internal/adapters/fs"          //nolint:depguard // Wired in engine wiring
	"github.com/trinio-labs/bake/internal/adapters/logger"
	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
)

// NodeID is the unique identifier for the cache builder Graft node.
const NodeID graft.ID = "engine.cache.builder"

// DefaultStrategies registers the built-in local, s3 and gcs strategy
// constructors.
func (b *Builder) DefaultStrategies() *Builder {
	return b.
		AddStrategy(domain.StrategyLocal, local.FromConfig).
		AddStrategy(domain.StrategyS3, s3.FromConfig).
		AddStrategy(domain.StrategyGCS, gcs.FromConfig)
}

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.HasherNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Builder, error) {
			hasher, err := graft.Dep[ports.RecipeHasher](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewBuilder(hasher, log).DefaultStrategies(), nil
		},
	})
}
