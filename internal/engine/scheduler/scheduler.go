// Package scheduler implements the recipe execution scheduler.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"github.com/trinio-labs/bake/internal/engine/cache"
	"go.trai.ch/zerr"
)

// RecipeStatus represents the status of a recipe within one run.
type RecipeStatus string

const (
	// StatusPending indicates the recipe is waiting to be executed.
	StatusPending RecipeStatus = "Pending"
	// StatusRunning indicates the recipe is currently executing.
	StatusRunning RecipeStatus = "Running"
	// StatusCompleted indicates the recipe ran and finished successfully.
	StatusCompleted RecipeStatus = "Completed"
	// StatusFailed indicates the recipe execution failed.
	StatusFailed RecipeStatus = "Failed"
	// StatusCached indicates the recipe was restored from the cache.
	StatusCached RecipeStatus = "Cached"
)

// Scheduler runs the target recipes and their dependencies in parallel,
// consulting the cache before executing and storing artifacts after.
type Scheduler struct {
	executor ports.Executor
	archiver ports.Archiver
	logger   ports.Logger

	mu       sync.RWMutex
	statuses map[domain.InternedString]RecipeStatus
}

// NewScheduler creates a new Scheduler.
func NewScheduler(executor ports.Executor, archiver ports.Archiver, logger ports.Logger) *Scheduler {
	return &Scheduler{
		executor: executor,
		archiver: archiver,
		logger:   logger,
		statuses: make(map[domain.InternedString]RecipeStatus),
	}
}

// Status returns the current status of a recipe.
func (s *Scheduler) Status(key domain.InternedString) RecipeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statuses[key]
}

// Statuses returns a snapshot of every recipe status from the last run.
func (s *Scheduler) Statuses() map[domain.InternedString]RecipeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[domain.InternedString]RecipeStatus, len(s.statuses))
	for k, v := range s.statuses {
		snapshot[k] = v
	}
	return snapshot
}

func (s *Scheduler) updateStatus(key domain.InternedString, status RecipeStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[key] = status
}

// RunOptions control one scheduler run.
type RunOptions struct {
	// Targets are the requested recipe keys. Their transitive dependencies
	// are scheduled too.
	Targets []domain.InternedString

	// Parallelism caps concurrently running recipes. Values below one are
	// lifted to one.
	Parallelism int

	// Force skips cache fetches so every recipe in scope runs.
	Force bool

	// FastFail stops scheduling new recipes after the first failure.
	FastFail bool
}

// Run executes the targets and their dependency closure in dependency
// order. Dependents of a failed recipe are never started; with FastFail
// the whole run stops scheduling after the first failure.
func (s *Scheduler) Run(ctx context.Context, project *domain.Project, graph *domain.Graph, c *cache.Cache, opts RunOptions) error {
	if len(opts.Targets) == 0 {
		return domain.ErrNoTargetsSpecified
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}

	state, err := s.newRunState(ctx, project, graph, c, opts)
	if err != nil {
		return err
	}

	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			return errors.Join(state.errs, state.ctx.Err())
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.done:
			// One-shot: after cancellation the loop only drains results,
			// a nil channel never fires again.
			state.done = nil
		}
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}
	return state.errs
}

type result struct {
	recipe domain.InternedString
	err    error
}

type runState struct {
	scope     map[domain.InternedString]bool
	inDegree  map[domain.InternedString]int
	ready     []domain.InternedString
	active    int
	resultsCh chan result
	done      <-chan struct{}
	errs      error

	ctx     context.Context
	project *domain.Project
	graph   *domain.Graph
	cache   *cache.Cache
	opts    RunOptions
	s       *Scheduler
}

// newRunState resolves the target closure and seeds the ready queue. The
// ready queue inherits the graph's deterministic topological order.
func (s *Scheduler) newRunState(ctx context.Context, project *domain.Project, graph *domain.Graph, c *cache.Cache, opts RunOptions) (*runState, error) {
	scope := make(map[domain.InternedString]bool)
	for _, target := range opts.Targets {
		if _, ok := graph.Recipe(target); !ok {
			return nil, zerr.With(domain.ErrRecipeNotFound, "recipe", target.String())
		}
		scope[target] = true
		ancestors, err := graph.Ancestors(target)
		if err != nil {
			return nil, err
		}
		for _, a := range ancestors {
			scope[a] = true
		}
	}

	inDegree := make(map[domain.InternedString]int, len(scope))
	s.mu.Lock()
	s.statuses = make(map[domain.InternedString]RecipeStatus, len(scope))
	for key := range scope {
		r, _ := graph.Recipe(key)
		inDegree[key] = len(r.Dependencies)
		s.statuses[key] = StatusPending
	}
	s.mu.Unlock()

	var ready []domain.InternedString
	for _, key := range graph.TopologicalOrder() {
		if scope[key] && inDegree[key] == 0 {
			ready = append(ready, key)
		}
	}

	return &runState{
		scope:     scope,
		inDegree:  inDegree,
		ready:     ready,
		resultsCh: make(chan result, opts.Parallelism),
		done:      ctx.Done(),
		ctx:       ctx,
		project:   project,
		graph:     graph,
		cache:     c,
		opts:      opts,
		s:         s,
	}, nil
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule() {
	if state.opts.FastFail && state.errs != nil {
		state.ready = nil
		return
	}

	for len(state.ready) > 0 && state.active < state.opts.Parallelism && state.ctx.Err() == nil {
		key := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(key, StatusRunning)

		recipe, _ := state.graph.Recipe(key)
		go func(r *domain.Recipe) {
			state.resultsCh <- result{recipe: r.Key(), err: state.executeWithCache(state.ctx, r)}
		}(recipe)
	}
}

// executeWithCache implements the hit/miss contract: fetch, restore on hit,
// otherwise run the recipe, pack its outputs and store the artifact.
func (state *runState) executeWithCache(ctx context.Context, recipe *domain.Recipe) error {
	key := recipe.Key()
	dir := state.project.CookbookDir(recipe)

	if !state.opts.Force {
		hit, err := state.restoreFromCache(ctx, recipe, dir)
		if err != nil {
			return err
		}
		if hit {
			return nil
		}
	}

	vars := state.project.VariablesFor(recipe)
	if err := state.s.executor.Execute(ctx, recipe, vars, dir); err != nil {
		return err
	}

	return state.storeArtifact(ctx, recipe, key, dir)
}

// restoreFromCache fetches and unpacks the recipe's artifact. A corrupt
// artifact downgrades to a miss so the recipe is rebuilt.
func (state *runState) restoreFromCache(ctx context.Context, recipe *domain.Recipe, dir string) (bool, error) {
	artifact, err := state.cache.Fetch(ctx, recipe.Key())
	if err != nil {
		return false, err
	}
	if artifact == nil {
		return false, nil
	}

	if err := state.s.archiver.Unpack(dir, artifact.Data); err != nil {
		state.s.logger.Warn(fmt.Sprintf("failed to restore cached artifact for %s, rebuilding: %v", recipe.FullName(), err))
		return false, nil
	}

	state.s.updateStatus(recipe.Key(), StatusCached)
	return true, nil
}

// storeArtifact packs the declared outputs and stores them. A store
// failure does not fail the build; the work is already done.
func (state *runState) storeArtifact(ctx context.Context, recipe *domain.Recipe, key domain.InternedString, dir string) error {
	if len(recipe.Outputs) == 0 {
		return nil
	}

	blob, err := state.s.archiver.Pack(dir, recipe.Outputs)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to pack recipe outputs"), "recipe", recipe.FullName())
	}

	if err := state.cache.Store(ctx, key, blob); err != nil {
		state.s.logger.Warn(fmt.Sprintf("failed to store artifact for %s: %v", recipe.FullName(), err))
	}
	return nil
}

func (state *runState) handleResult(res result) {
	state.active--
	if res.err != nil {
		wrapped := zerr.With(zerr.Wrap(res.err, "recipe execution failed"), "recipe", res.recipe.String())
		state.errs = errors.Join(state.errs, wrapped)
		state.s.updateStatus(res.recipe, StatusFailed)
		return
	}

	if state.s.Status(res.recipe) != StatusCached {
		state.s.updateStatus(res.recipe, StatusCompleted)
	}
	for _, dependent := range state.graph.Dependents(res.recipe) {
		if !state.scope[dependent] {
			continue
		}
		state.inDegree[dependent]--
		if state.inDegree[dependent] == 0 {
			state.ready = append(state.ready, dependent)
		}
	}
}
