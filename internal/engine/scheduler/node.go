package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/trinio-labs/bake/internal/adapters/archive" //nolint:depguard // Wired in engine wiring
	"github.com/trinio-labs/bake/internal/adapters/logger"  //nolint:depguard // Wired in engine wiring
	"github.com/trinio-labs/bake/internal/adapters/shell"   //nolint:depguard // Wired in engine wiring
	"github.com/trinio-labs/bake/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			archive.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			archiver, err := graft.Dep[ports.Archiver](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(executor, archiver, log), nil
		},
	})
}
