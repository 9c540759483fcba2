// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/trinio-labs/bake/internal/adapters/archive"
	_ "github.com/trinio-labs/bake/internal/adapters/config"
	_ "github.com/trinio-labs/bake/internal/adapters/fs"
	_ "github.com/trinio-labs/bake/internal/adapters/logger"
	_ "github.com/trinio-labs/bake/internal/adapters/shell"
	// Register app and engine nodes.
	_ "github.com/trinio-labs/bake/internal/app"
	_ "github.com/trinio-labs/bake/internal/engine/cache"
	_ "github.com/trinio-labs/bake/internal/engine/scheduler"
)
