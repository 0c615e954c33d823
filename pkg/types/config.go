package types

import "errors"

// Config holds backend, cache and key-prefix settings for an engine.
type Config struct {
	Backend        string      `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir        string      `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	DSN            string      `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`
	CacheKeyPrefix string      `json:"cache_key_prefix" yaml:"cache_key_prefix" mapstructure:"cache_key_prefix"`
	Cache          CacheConfig `json:"cache" yaml:"cache" mapstructure:"cache"`
}

// CacheConfig selects and parameterizes the read-through cache driver.
type CacheConfig struct {
	Driver   string `json:"driver" yaml:"driver" mapstructure:"driver"`
	Size     int    `json:"size,omitempty" yaml:"size,omitempty" mapstructure:"size"`
	Address  string `json:"address,omitempty" yaml:"address,omitempty" mapstructure:"address"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty" mapstructure:"db"`
}

// Supported backend names.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Supported cache drivers.
const (
	CacheMemory = "memory"
	CacheLRU    = "lru"
	CacheRedis  = "redis"
)

// DefaultCacheKeyPrefix is used when Config.CacheKeyPrefix is empty.
const DefaultCacheKeyPrefix = "properties"

// DefaultLRUSize bounds the lru cache driver when CacheConfig.Size is zero.
const DefaultLRUSize = 1024

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrDSNRequired        = errors.New("dsn is required for the postgres backend")
	ErrCacheDriverUnknown = errors.New("unknown cache driver")
	ErrCacheSizeInvalid   = errors.New("cache size must not be negative")
	ErrCacheAddrRequired  = errors.New("cache address is required for the redis driver")
)

var knownBackends = map[string]bool{
	BackendSQLite:   true,
	BackendPostgres: true,
}

var knownCacheDrivers = map[string]bool{
	"":          true,
	CacheMemory: true,
	CacheLRU:    true,
	CacheRedis:  true,
}

// Validate checks that the Config is well-formed and returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendPostgres && c.DSN == "" {
		return ErrDSNRequired
	}
	return c.Cache.Validate()
}

// Validate checks the cache section on its own.
func (c CacheConfig) Validate() error {
	if !knownCacheDrivers[c.Driver] {
		return ErrCacheDriverUnknown
	}
	if c.Size < 0 {
		return ErrCacheSizeInvalid
	}
	if c.Driver == CacheRedis && c.Address == "" {
		return ErrCacheAddrRequired
	}
	return nil
}

// KeyPrefix returns the cache key prefix, falling back to
// DefaultCacheKeyPrefix.
func (c Config) KeyPrefix() string {
	if c.CacheKeyPrefix == "" {
		return DefaultCacheKeyPrefix
	}
	return c.CacheKeyPrefix
}
