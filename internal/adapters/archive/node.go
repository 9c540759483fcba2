package archive

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/trinio-labs/bake/internal/core/ports"
)

const NodeID graft.ID = "adapter.archiver"

func init() {
	graft.Register(graft.Node[ports.Archiver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Archiver, error) {
			return NewArchiver(), nil
		},
	})
}
