package domain

import "runtime"

// Strategy names accepted in the cache order.
const (
	StrategyLocal = "local"
	StrategyS3    = "s3"
	StrategyGCS   = "gcs"
)

// ToolConfig is the tool section of a project's configuration.
type ToolConfig struct {
	MaxParallel int
	FastFail    bool
	Cache       CacheConfig
}

// CacheConfig configures the cache subsystem.
type CacheConfig struct {
	Local   LocalCacheConfig
	Remotes *RemoteCacheConfig

	// Order lists strategy names in fetch/store precedence. Every name
	// must resolve to an enabled, configured strategy; an empty list
	// derives a default order from what is configured.
	Order []string
}

// LocalCacheConfig configures the filesystem-backed strategy.
type LocalCacheConfig struct {
	Enabled bool

	// Path overrides the default cache root derived from the project root.
	Path string
}

// RemoteCacheConfig groups the optional remote backends.
type RemoteCacheConfig struct {
	S3  *S3CacheConfig
	GCS *GcsCacheConfig
}

// S3CacheConfig configures the S3-backed strategy.
type S3CacheConfig struct {
	Enabled bool
	Bucket  string
	Region  string

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string
}

// GcsCacheConfig configures the Google Cloud Storage strategy.
type GcsCacheConfig struct {
	Enabled bool
	Bucket  string
}

// DefaultToolConfig returns the tool configuration used when a project does
// not declare one.
func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		MaxParallel: max(runtime.NumCPU()-1, 1),
		FastFail:    true,
		Cache: CacheConfig{
			Local: LocalCacheConfig{Enabled: true},
		},
	}
}

// ResolveOrder returns the effective strategy order. An explicit order is
// authoritative and returned as-is; otherwise the order is derived as
// local, s3, gcs, keeping only strategies that are configured and enabled.
func (c *CacheConfig) ResolveOrder() []string {
	if len(c.Order) > 0 {
		return c.Order
	}

	var order []string
	if c.Local.Enabled {
		order = append(order, StrategyLocal)
	}
	if c.Remotes != nil {
		if c.Remotes.S3 != nil && c.Remotes.S3.Enabled {
			order = append(order, StrategyS3)
		}
		if c.Remotes.GCS != nil && c.Remotes.GCS.Enabled {
			order = append(order, StrategyGCS)
		}
	}
	return order
}
