package config

// Bakefile represents the structure of the project-level bake.yml file.
type Bakefile struct {
	Name      string                       `yaml:"name"`
	Variables map[string]string            `yaml:"variables"`
	Overrides map[string]map[string]string `yaml:"overrides"`
	Config    ToolConfigDTO                `yaml:"config"`
	Templates map[string]TemplateDTO       `yaml:"templates"`
}

// ToolConfigDTO represents the tool configuration section.
type ToolConfigDTO struct {
	MaxParallel *int      `yaml:"maxParallel"`
	FastFail    *bool     `yaml:"fastFail"`
	Cache       *CacheDTO `yaml:"cache"`
}

// CacheDTO represents the cache configuration section.
type CacheDTO struct {
	Local   *LocalCacheDTO  `yaml:"local"`
	Remotes *RemoteCacheDTO `yaml:"remotes"`
	Order   []string        `yaml:"order"`
}

// LocalCacheDTO represents the local cache configuration.
type LocalCacheDTO struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RemoteCacheDTO groups the remote cache backends.
type RemoteCacheDTO struct {
	S3  *S3CacheDTO  `yaml:"s3"`
	GCS *GcsCacheDTO `yaml:"gcs"`
}

// S3CacheDTO represents the S3 cache configuration.
type S3CacheDTO struct {
	Enabled  *bool  `yaml:"enabled"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// GcsCacheDTO represents the GCS cache configuration.
type GcsCacheDTO struct {
	Enabled *bool  `yaml:"enabled"`
	Bucket  string `yaml:"bucket"`
}

// TemplateDTO represents a reusable recipe template.
type TemplateDTO struct {
	Run       string            `yaml:"run"`
	Variables map[string]string `yaml:"variables"`
}

// Cookbookfile represents the structure of a cookbook.yml file.
type Cookbookfile struct {
	Name      string               `yaml:"name"`
	Variables map[string]string    `yaml:"variables"`
	Recipes   map[string]RecipeDTO `yaml:"recipes"`
}

// RecipeDTO represents a recipe definition.
type RecipeDTO struct {
	Run          string            `yaml:"run"`
	Template     string            `yaml:"template"`
	Dependencies []string          `yaml:"dependencies"`
	Inputs       []string          `yaml:"inputs"`
	Outputs      []string          `yaml:"outputs"`
	Variables    map[string]string `yaml:"variables"`
}
