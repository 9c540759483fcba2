// Package config provides the YAML configuration loader for bake projects.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ProjectFileName is the project definition file at the repository root.
const ProjectFileName = "bake.yml"

// CookbookFileName is the per-cookbook definition file.
const CookbookFileName = "cookbook.yml"

var _ ports.ProjectLoader = (*Loader)(nil)

// Loader implements ports.ProjectLoader from bake.yml and cookbook.yml files.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the project file at root and every cookbook file below it,
// expands recipe templates and returns the resolved project snapshot.
// Cookbooks are ordered by path and recipes by name, so the declaration
// order downstream components rely on is stable across runs.
func (l *Loader) Load(root string) (*domain.Project, error) {
	bakefile, err := l.readProjectFile(root)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:      bakefile.Name,
		RootPath:  root,
		Config:    resolveToolConfig(bakefile.Config),
		Variables: bakefile.Variables,
		Overrides: bakefile.Overrides,
		Templates: make(map[string]domain.RecipeTemplate, len(bakefile.Templates)),
	}
	for name, dto := range bakefile.Templates {
		project.Templates[name] = domain.RecipeTemplate{Run: dto.Run, Variables: dto.Variables}
	}

	paths, err := l.discoverCookbooks(root)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		cookbook, err := l.loadCookbook(root, path, project)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[cookbook.Name]; dup {
			return nil, zerr.With(zerr.With(zerr.New("duplicate cookbook name"), "cookbook", cookbook.Name), "paths", prev+", "+cookbook.Path)
		}
		seen[cookbook.Name] = cookbook.Path
		project.Cookbooks = append(project.Cookbooks, cookbook)
	}

	l.logger.Info(fmt.Sprintf("loaded project %s: %d cookbooks, %d recipes", project.Name, len(project.Cookbooks), len(project.RecipeKeys())))
	return project, nil
}

// readProjectFile parses bake.yml at root.
func (l *Loader) readProjectFile(root string) (*Bakefile, error) {
	path := filepath.Join(root, ProjectFileName)
	data, err := os.ReadFile(path) //nolint:gosec // Path is the user's project root
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read project file"), "path", path)
	}

	var bakefile Bakefile
	if err := yaml.Unmarshal(data, &bakefile); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse project file"), "path", path)
	}
	if bakefile.Name == "" {
		bakefile.Name = filepath.Base(root)
	}
	return &bakefile, nil
}

// discoverCookbooks walks the project tree for cookbook files and returns
// their paths in lexical order.
func (l *Loader) discoverCookbooks(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if name == ".git" || name == ".jj" || name == ".bake" || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == CookbookFileName {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to discover cookbooks")
	}
	sort.Strings(paths)
	return paths, nil
}

// loadCookbook parses one cookbook file and maps its recipes to the domain.
func (l *Loader) loadCookbook(root, path string, project *domain.Project) (*domain.Cookbook, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Paths come from the cookbook walk
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read cookbook file"), "path", path)
	}

	var file Cookbookfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse cookbook file"), "path", path)
	}

	dir := filepath.Dir(path)
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to relativize cookbook path"), "path", path)
	}

	name := file.Name
	if name == "" {
		name = filepath.Base(dir)
	}

	cookbook := &domain.Cookbook{Name: name, Path: rel}

	// Cookbook-level variables act as overrides for all its recipes.
	if len(file.Variables) > 0 {
		if project.Overrides == nil {
			project.Overrides = make(map[string]map[string]string)
		}
		merged := make(map[string]string, len(file.Variables))
		for k, v := range project.Overrides[name] {
			merged[k] = v
		}
		for k, v := range file.Variables {
			merged[k] = v
		}
		project.Overrides[name] = merged
	}

	recipeNames := make([]string, 0, len(file.Recipes))
	for recipeName := range file.Recipes {
		recipeNames = append(recipeNames, recipeName)
	}
	sort.Strings(recipeNames)

	for _, recipeName := range recipeNames {
		recipe, err := l.buildRecipe(name, recipeName, file.Recipes[recipeName], project)
		if err != nil {
			return nil, err
		}
		cookbook.Recipes = append(cookbook.Recipes, recipe)
	}
	return cookbook, nil
}

// buildRecipe maps a recipe DTO to the domain, expanding its template and
// qualifying bare dependency names with the cookbook name.
func (l *Loader) buildRecipe(cookbook, name string, dto RecipeDTO, project *domain.Project) (*domain.Recipe, error) {
	recipe := &domain.Recipe{
		Cookbook:  cookbook,
		Name:      name,
		Run:       dto.Run,
		Inputs:    dto.Inputs,
		Outputs:   dto.Outputs,
		Variables: dto.Variables,
	}

	if dto.Template != "" {
		template, ok := project.Templates[dto.Template]
		if !ok {
			return nil, zerr.With(zerr.With(zerr.New("unknown recipe template"), "template", dto.Template), "recipe", cookbook+domain.KeySeparator+name)
		}
		if recipe.Run == "" {
			recipe.Run = template.Run
		}
		recipe.Variables = mergeVariables(template.Variables, dto.Variables)
	}

	recipe.Dependencies = make([]string, len(dto.Dependencies))
	for i, dep := range dto.Dependencies {
		if strings.Contains(dep, domain.KeySeparator) {
			recipe.Dependencies[i] = dep
		} else {
			recipe.Dependencies[i] = cookbook + domain.KeySeparator + dep
		}
	}
	return recipe, nil
}

// mergeVariables layers overrides on top of base.
func mergeVariables(base, overrides map[string]string) map[string]string {
	if len(base) == 0 {
		return overrides
	}
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// resolveToolConfig applies the config DTO over the defaults.
func resolveToolConfig(dto ToolConfigDTO) domain.ToolConfig {
	cfg := domain.DefaultToolConfig()
	if dto.MaxParallel != nil && *dto.MaxParallel > 0 {
		cfg.MaxParallel = *dto.MaxParallel
	}
	if dto.FastFail != nil {
		cfg.FastFail = *dto.FastFail
	}
	if dto.Cache != nil {
		cfg.Cache = resolveCacheConfig(dto.Cache)
	}
	return cfg
}

// resolveCacheConfig maps the cache DTO. A present backend block counts as
// enabled unless it says otherwise.
func resolveCacheConfig(dto *CacheDTO) domain.CacheConfig {
	cfg := domain.CacheConfig{
		Local: domain.LocalCacheConfig{Enabled: true},
		Order: dto.Order,
	}
	if dto.Local != nil {
		cfg.Local.Enabled = enabled(dto.Local.Enabled)
		cfg.Local.Path = dto.Local.Path
	}
	if dto.Remotes != nil {
		cfg.Remotes = &domain.RemoteCacheConfig{}
		if dto.Remotes.S3 != nil {
			cfg.Remotes.S3 = &domain.S3CacheConfig{
				Enabled:  enabled(dto.Remotes.S3.Enabled),
				Bucket:   dto.Remotes.S3.Bucket,
				Region:   dto.Remotes.S3.Region,
				Endpoint: dto.Remotes.S3.Endpoint,
			}
		}
		if dto.Remotes.GCS != nil {
			cfg.Remotes.GCS = &domain.GcsCacheConfig{
				Enabled: enabled(dto.Remotes.GCS.Enabled),
				Bucket:  dto.Remotes.GCS.Bucket,
			}
		}
	}
	return cfg
}

func enabled(b *bool) bool {
	return b == nil || *b
}
