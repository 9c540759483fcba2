package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the dependency graph of a project's recipes. Nodes are recipe
// keys, edges are declared depends-on relations. The graph is pure data:
// it answers ordering and reachability queries and performs no I/O.
type Graph struct {
	recipes map[InternedString]*Recipe

	// rank records declaration order (cookbook order, then recipe order
	// within the cookbook) and breaks ties so that two runs over an
	// unchanged project always schedule identically.
	rank map[InternedString]int

	dependents map[InternedString][]InternedString
	order      []InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		recipes:    make(map[InternedString]*Recipe),
		rank:       make(map[InternedString]int),
		dependents: make(map[InternedString][]InternedString),
	}
}

// NewGraphFromProject builds and validates a graph from every recipe the
// project declares.
func NewGraphFromProject(p *Project) (*Graph, error) {
	g := NewGraph()
	for _, cb := range p.Cookbooks {
		for _, r := range cb.Recipes {
			if err := g.AddRecipe(r); err != nil {
				return nil, err
			}
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// AddRecipe adds a recipe to the graph. It returns an error if a recipe
// with the same key already exists.
func (g *Graph) AddRecipe(r *Recipe) error {
	key := r.Key()
	if _, exists := g.recipes[key]; exists {
		return zerr.With(ErrRecipeAlreadyExists, "recipe", key.String())
	}
	g.rank[key] = len(g.recipes)
	g.recipes[key] = r
	return nil
}

// Len returns the number of recipes in the graph.
func (g *Graph) Len() int {
	return len(g.recipes)
}

// Recipe returns the recipe for a key.
func (g *Graph) Recipe(key InternedString) (*Recipe, bool) {
	r, ok := g.recipes[key]
	return r, ok
}

// Validate checks that every declared dependency exists and that the graph
// is acyclic, then computes the deterministic topological order. It must be
// called before TopologicalOrder, Walk or the reachability queries.
func (g *Graph) Validate() error {
	if err := g.checkDependencies(); err != nil {
		return err
	}
	if err := g.checkCycles(); err != nil {
		return err
	}
	g.buildOrder()
	return nil
}

// checkDependencies verifies that every dependency key resolves to a recipe
// and records the reverse edges used by Dependents.
func (g *Graph) checkDependencies() error {
	g.dependents = make(map[InternedString][]InternedString, len(g.recipes))
	for _, key := range g.keysByRank() {
		for _, dep := range g.recipes[key].Dependencies {
			depKey := NewInternedString(dep)
			if _, ok := g.recipes[depKey]; !ok {
				return zerr.With(zerr.With(ErrMissingDependency, "recipe", key.String()), "dependency", dep)
			}
			g.dependents[depKey] = append(g.dependents[depKey], key)
		}
	}
	return nil
}

const (
	colorUnvisited = iota
	colorInProgress
	colorDone
)

// checkCycles runs a three-color depth-first traversal and reports the
// first cycle found with its full recipe path.
func (g *Graph) checkCycles() error {
	color := make(map[InternedString]int, len(g.recipes))
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		color[u] = colorInProgress
		path = append(path, u)

		for _, dep := range g.recipes[u].Dependencies {
			depKey := NewInternedString(dep)
			switch color[depKey] {
			case colorInProgress:
				return g.cycleError(path, depKey)
			case colorUnvisited:
				if err := visit(depKey); err != nil {
					return err
				}
			}
		}

		color[u] = colorDone
		path = path[:len(path)-1]
		return nil
	}

	for _, key := range g.keysByRank() {
		if color[key] == colorUnvisited {
			if err := visit(key); err != nil {
				return err
			}
		}
	}
	return nil
}

// cycleError formats the offending cycle as "a -> b -> a".
func (g *Graph) cycleError(path []InternedString, dep InternedString) error {
	start := slices.Index(path, dep)
	var b strings.Builder
	for _, node := range path[start:] {
		b.WriteString(node.String())
		b.WriteString(" -> ")
	}
	b.WriteString(dep.String())
	return zerr.With(ErrCycleDetected, "cycle", b.String())
}

// buildOrder computes the topological order with Kahn's algorithm. The
// ready set is kept sorted by declaration rank so the order is stable.
func (g *Graph) buildOrder() {
	inDegree := make(map[InternedString]int, len(g.recipes))
	for key, r := range g.recipes {
		inDegree[key] = len(r.Dependencies)
	}

	var ready []InternedString
	for _, key := range g.keysByRank() {
		if inDegree[key] == 0 {
			ready = append(ready, key)
		}
	}

	g.order = make([]InternedString, 0, len(g.recipes))
	for len(ready) > 0 {
		key := ready[0]
		ready = ready[1:]
		g.order = append(g.order, key)

		for _, dependent := range g.dependents[key] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = g.insertByRank(ready, dependent)
			}
		}
	}
}

// insertByRank inserts key into ready keeping declaration-rank order.
func (g *Graph) insertByRank(ready []InternedString, key InternedString) []InternedString {
	idx, _ := slices.BinarySearchFunc(ready, key, func(a, b InternedString) int {
		return g.rank[a] - g.rank[b]
	})
	return slices.Insert(ready, idx, key)
}

// keysByRank returns every recipe key in declaration order.
func (g *Graph) keysByRank() []InternedString {
	keys := make([]InternedString, 0, len(g.recipes))
	for key := range g.recipes {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b InternedString) int {
		return g.rank[a] - g.rank[b]
	})
	return keys
}

// TopologicalOrder returns the recipe keys in dependency order. It assumes
// Validate() has been called and returned nil.
func (g *Graph) TopologicalOrder() []InternedString {
	return slices.Clone(g.order)
}

// Walk returns an iterator that yields recipes in dependency order.
func (g *Graph) Walk() iter.Seq[*Recipe] {
	return func(yield func(*Recipe) bool) {
		for _, key := range g.order {
			if !yield(g.recipes[key]) {
				return
			}
		}
	}
}

// Dependents returns the recipes that directly depend on the given key.
func (g *Graph) Dependents(key InternedString) []InternedString {
	return g.dependents[key]
}

// Ancestors returns every recipe the given key transitively depends on, in
// declaration order, excluding the key itself.
func (g *Graph) Ancestors(key InternedString) ([]InternedString, error) {
	return g.reach(key, func(u InternedString) []InternedString {
		deps := g.recipes[u].Dependencies
		out := make([]InternedString, len(deps))
		for i, d := range deps {
			out[i] = NewInternedString(d)
		}
		return out
	})
}

// Descendants returns every recipe that transitively depends on the given
// key, in declaration order, excluding the key itself.
func (g *Graph) Descendants(key InternedString) ([]InternedString, error) {
	return g.reach(key, func(u InternedString) []InternedString {
		return g.dependents[u]
	})
}

// reach performs a breadth-first traversal from key over next edges.
func (g *Graph) reach(key InternedString, next func(InternedString) []InternedString) ([]InternedString, error) {
	if _, ok := g.recipes[key]; !ok {
		return nil, zerr.With(ErrRecipeNotFound, "recipe", key.String())
	}

	seen := map[InternedString]bool{key: true}
	queue := []InternedString{key}
	var result []InternedString

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range next(u) {
			if !seen[v] {
				seen[v] = true
				result = append(result, v)
				queue = append(queue, v)
			}
		}
	}

	slices.SortFunc(result, func(a, b InternedString) int {
		return g.rank[a] - g.rank[b]
	})
	return result, nil
}
