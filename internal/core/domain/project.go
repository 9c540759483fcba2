// Package domain contains the core domain models for the bake build system:
// the project snapshot, cookbooks, recipes and the recipe dependency graph.
package domain

import "path/filepath"

// KeySeparator joins a cookbook name and a recipe name into a recipe key.
const KeySeparator = ":"

// Project is an immutable snapshot of a loaded bake project. It is shared
// read-only by every downstream component for the duration of one build.
type Project struct {
	Name     string
	RootPath string
	Config   ToolConfig

	// Cookbooks in declaration order. Ordering matters: it is the
	// tie-breaker for deterministic scheduling.
	Cookbooks []*Cookbook

	// Variables holds project-level resolved variables.
	Variables map[string]string

	// Overrides maps a cookbook name to variable overrides applied on top
	// of the project variables for recipes of that cookbook.
	Overrides map[string]map[string]string

	// Templates is the registry of named recipe templates declared by the
	// project. Template expansion happens in the config layer; the core
	// only carries the registry.
	Templates map[string]RecipeTemplate
}

// Cookbook is a named grouping of recipes within a project.
type Cookbook struct {
	Name string

	// Path of the cookbook directory, relative to the project root.
	Path string

	// Recipes in declaration order.
	Recipes []*Recipe
}

// Recipe is one unit of buildable work with declared dependencies and inputs.
type Recipe struct {
	Cookbook string
	Name     string

	// Run is the shell command executed on a cache miss. Opaque to the
	// cache; it participates in the fingerprint only as a string.
	Run string

	// Dependencies are recipe keys this recipe depends on.
	Dependencies []string

	// Inputs are file paths or glob patterns, relative to the cookbook
	// directory, whose contents feed the fingerprint.
	Inputs []string

	// Outputs are paths, relative to the cookbook directory, packed into
	// the cached artifact after a successful run.
	Outputs []string

	// Variables are recipe-level variable overrides.
	Variables map[string]string
}

// RecipeTemplate is a reusable recipe body registered under a name.
type RecipeTemplate struct {
	Run       string
	Variables map[string]string
}

// Key returns the interned recipe key ("cookbook:name").
func (r *Recipe) Key() InternedString {
	return NewInternedString(r.FullName())
}

// FullName returns the recipe key as a plain string.
func (r *Recipe) FullName() string {
	return r.Cookbook + KeySeparator + r.Name
}

// Cookbook returns the cookbook with the given name, or nil.
func (p *Project) Cookbook(name string) *Cookbook {
	for _, cb := range p.Cookbooks {
		if cb.Name == name {
			return cb
		}
	}
	return nil
}

// Recipe returns the recipe with the given key, or nil.
func (p *Project) Recipe(key string) *Recipe {
	for _, cb := range p.Cookbooks {
		for _, r := range cb.Recipes {
			if r.FullName() == key {
				return r
			}
		}
	}
	return nil
}

// RecipeKeys returns every recipe key in declaration order (cookbook order,
// then recipe order within each cookbook).
func (p *Project) RecipeKeys() []string {
	var keys []string
	for _, cb := range p.Cookbooks {
		for _, r := range cb.Recipes {
			keys = append(keys, r.FullName())
		}
	}
	return keys
}

// VariablesFor returns the merged variable set for a recipe: project
// variables, then cookbook overrides, then recipe variables.
func (p *Project) VariablesFor(r *Recipe) map[string]string {
	merged := make(map[string]string, len(p.Variables))
	for k, v := range p.Variables {
		merged[k] = v
	}
	for k, v := range p.Overrides[r.Cookbook] {
		merged[k] = v
	}
	for k, v := range r.Variables {
		merged[k] = v
	}
	return merged
}

// BakeDir returns the project's internal state directory.
func (p *Project) BakeDir() string {
	return filepath.Join(p.RootPath, ".bake")
}

// DefaultCachePath returns the local cache root used when no explicit path
// is configured.
func (p *Project) DefaultCachePath() string {
	return filepath.Join(p.BakeDir(), "cache")
}

// CookbookDir returns the absolute directory of the recipe's cookbook.
func (p *Project) CookbookDir(r *Recipe) string {
	if cb := p.Cookbook(r.Cookbook); cb != nil {
		return filepath.Join(p.RootPath, cb.Path)
	}
	return p.RootPath
}
