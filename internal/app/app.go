// Package app implements the application layer for bake.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"github.com/trinio-labs/bake/internal/engine/cache"
	"github.com/trinio-labs/bake/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App ties the project loader, cache builder and scheduler together into
// the bake build flow.
type App struct {
	loader    ports.ProjectLoader
	builder   *cache.Builder
	scheduler *scheduler.Scheduler
	logger    ports.Logger
}

// New creates a new App instance.
func New(loader ports.ProjectLoader, builder *cache.Builder, sched *scheduler.Scheduler, logger ports.Logger) *App {
	return &App{
		loader:    loader,
		builder:   builder,
		scheduler: sched,
		logger:    logger,
	}
}

// RunOptions control one invocation of the build flow.
type RunOptions struct {
	// Root is the project root directory. Defaults to the current directory.
	Root string

	// Force bypasses cache fetches.
	Force bool

	// Jobs overrides the configured parallelism when positive.
	Jobs int
}

// Run loads the project, validates the recipe graph, builds the cache for
// the requested targets and schedules them.
func (a *App) Run(ctx context.Context, targetPatterns []string, opts RunOptions) error {
	root := opts.Root
	if root == "" {
		root = "."
	}

	project, err := a.loader.Load(root)
	if err != nil {
		return zerr.Wrap(err, "failed to load project")
	}

	graph, err := domain.NewGraphFromProject(project)
	if err != nil {
		return err
	}

	targets, err := resolveTargets(project, targetPatterns)
	if err != nil {
		return err
	}

	buildCache, err := a.builder.BuildForRecipes(ctx, project, targets)
	if err != nil {
		return zerr.Wrap(err, "failed to build cache")
	}
	a.logger.Info(fmt.Sprintf("cache tiers: %s", strings.Join(buildCache.Strategies(), ", ")))

	parallelism := project.Config.MaxParallel
	if opts.Jobs > 0 {
		parallelism = opts.Jobs
	}

	runErr := a.scheduler.Run(ctx, project, graph, buildCache, scheduler.RunOptions{
		Targets:     targets,
		Parallelism: parallelism,
		Force:       opts.Force,
		FastFail:    project.Config.FastFail,
	})
	a.logSummary()
	return runErr
}

// resolveTargets expands target patterns into recipe keys. A pattern is an
// exact key ("cookbook:recipe"), a whole cookbook ("cookbook:") or a bare
// recipe name matched across every cookbook.
func resolveTargets(project *domain.Project, patterns []string) ([]domain.InternedString, error) {
	if len(patterns) == 0 {
		return nil, domain.ErrNoTargetsSpecified
	}

	var targets []domain.InternedString
	seen := make(map[domain.InternedString]bool)
	add := func(key domain.InternedString) {
		if !seen[key] {
			seen[key] = true
			targets = append(targets, key)
		}
	}

	for _, pattern := range patterns {
		switch {
		case strings.HasSuffix(pattern, domain.KeySeparator):
			cookbook := project.Cookbook(strings.TrimSuffix(pattern, domain.KeySeparator))
			if cookbook == nil {
				return nil, zerr.With(domain.ErrRecipeNotFound, "target", pattern)
			}
			for _, r := range cookbook.Recipes {
				add(r.Key())
			}
		case strings.Contains(pattern, domain.KeySeparator):
			if project.Recipe(pattern) == nil {
				return nil, zerr.With(domain.ErrRecipeNotFound, "target", pattern)
			}
			add(domain.NewInternedString(pattern))
		default:
			matched := false
			for _, cb := range project.Cookbooks {
				for _, r := range cb.Recipes {
					if r.Name == pattern {
						add(r.Key())
						matched = true
					}
				}
			}
			if !matched {
				return nil, zerr.With(domain.ErrRecipeNotFound, "target", pattern)
			}
		}
	}
	return targets, nil
}

// logSummary reports how the run ended per status.
func (a *App) logSummary() {
	counts := make(map[scheduler.RecipeStatus]int)
	for _, status := range a.scheduler.Statuses() {
		counts[status]++
	}
	a.logger.Info(fmt.Sprintf("build finished: %d completed, %d cached, %d failed, %d skipped",
		counts[scheduler.StatusCompleted],
		counts[scheduler.StatusCached],
		counts[scheduler.StatusFailed],
		counts[scheduler.StatusPending]))
}
