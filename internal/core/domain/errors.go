package domain

import "go.trai.ch/zerr"

var (
	// ErrRecipeAlreadyExists is returned when adding a recipe whose key is already in the graph.
	ErrRecipeAlreadyExists = zerr.New("recipe already exists")

	// ErrMissingDependency is returned when a recipe depends on a key that no cookbook declares.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when the recipe dependency graph contains a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrRecipeNotFound is returned when a requested recipe key is not part of the project.
	ErrRecipeNotFound = zerr.New("recipe not found")

	// ErrUnknownStrategy is returned when the cache order names a strategy with no registered constructor.
	ErrUnknownStrategy = zerr.New("unknown cache strategy")

	// ErrStrategyDisabled is returned when the cache order names a strategy that is disabled in config.
	ErrStrategyDisabled = zerr.New("cache strategy disabled")

	// ErrStrategyNotConfigured is returned when the cache order names a remote with no configuration block.
	ErrStrategyNotConfigured = zerr.New("cache strategy not configured")

	// ErrCacheStoreFailed is returned when an artifact could not be written to any cache tier.
	ErrCacheStoreFailed = zerr.New("store failed in all cache tiers")

	// ErrNoTargetsSpecified is returned when a build is requested without any target recipes.
	ErrNoTargetsSpecified = zerr.New("no targets specified")
)
