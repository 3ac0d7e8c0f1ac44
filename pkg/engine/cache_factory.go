package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dockhand-io/dockhand/internal/constants"
)

// CacheType selects the backend that holds cached daemon responses.
type CacheType string

const (
	// CacheTypeMemory keeps entries in the client process. The right
	// choice for a single long-lived client or one CLI invocation.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS keeps entries in a NATS JetStream KV bucket so
	// several processes can share the same daemon reads.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone disables caching; every read goes to the daemon.
	CacheTypeNone CacheType = "none"
)

var (
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
)

// CacheConfig selects and configures a cache backend. The zero value
// is not useful; start from DefaultCacheConfig.
type CacheConfig struct {
	// Type is the cache backend type
	Type CacheType

	// Memory cache configuration
	Memory *MemoryCacheConfig

	// NATS KV cache configuration
	NATS *NATSKVConfig

	// Common options applied to any backend. If nil,
	// DefaultCacheOptions() is used.
	Options *CacheOptions
}

// MemoryCacheConfig bounds the in-process cache.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of entries held at once. Network
	// responses are small, so the default is generous.
	MaxSize int

	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration
}

// DefaultCacheConfig returns the memory-backed configuration the
// client uses when caching is requested without further tuning.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:    CacheTypeMemory,
		Memory:  defaultMemoryCacheConfig(),
		Options: DefaultCacheOptions(),
	}
}

func defaultMemoryCacheConfig() *MemoryCacheConfig {
	return &MemoryCacheConfig{
		MaxSize:         constants.DefaultCacheSize,
		CleanupInterval: constants.DefaultCacheCleanupInterval,
	}
}

// NewCacheFromConfig builds the cache backend named by the
// configuration. A nil configuration gets the memory default.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory:
		return NewMemoryCacheFromConfig(config.Memory)

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(config.NATS)

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NewMemoryCacheFromConfig builds an in-process cache, applying the
// defaults for any missing settings.
func NewMemoryCacheFromConfig(config *MemoryCacheConfig) (Cache, error) {
	if config == nil {
		config = defaultMemoryCacheConfig()
	}

	return NewMemoryCache(config.MaxSize), nil
}

// NoOpCache satisfies Cache while storing nothing. CacheTypeNone maps
// to it so callers can leave their interceptor wiring in place with
// caching switched off.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always misses.
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set discards the entry.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}

// CacheBuilder assembles a CacheConfig fluently and builds the
// backend. Starts from the memory default.
type CacheBuilder struct {
	config *CacheConfig
}

// NewCacheBuilder creates a new cache builder.
func NewCacheBuilder() *CacheBuilder {
	return &CacheBuilder{
		config: &CacheConfig{
			Type:    CacheTypeMemory,
			Options: DefaultCacheOptions(),
		},
	}
}

// WithType selects the backend.
func (b *CacheBuilder) WithType(cacheType CacheType) *CacheBuilder {
	b.config.Type = cacheType

	return b
}

// WithMemoryConfig bounds the in-process cache.
func (b *CacheBuilder) WithMemoryConfig(maxSize int, cleanupInterval time.Duration) *CacheBuilder {
	b.config.Memory = &MemoryCacheConfig{
		MaxSize:         maxSize,
		CleanupInterval: cleanupInterval,
	}

	return b
}

// WithNATSConfig points the cache at a NATS JetStream KV bucket.
func (b *CacheBuilder) WithNATSConfig(config *NATSKVConfig) *CacheBuilder {
	b.config.NATS = config

	return b
}

// WithOptions sets the common backend options.
func (b *CacheBuilder) WithOptions(options *CacheOptions) *CacheBuilder {
	b.config.Options = options

	return b
}

// Build creates the cache from the assembled configuration.
func (b *CacheBuilder) Build() (Cache, error) {
	return NewCacheFromConfig(b.config)
}

// CacheChain layers cache backends, fastest first. The usual pairing
// is a memory L1 in front of a NATS KV L2 shared between processes.
type CacheChain struct {
	caches []Cache
}

// NewCacheChain creates a chain over the given backends in lookup
// order.
func NewCacheChain(caches ...Cache) *CacheChain {
	return &CacheChain{
		caches: caches,
	}
}

// Get returns the first hit, copying it into the levels in front of
// the one that answered.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, cache := range c.caches {
		entry, err := cache.Get(ctx, key)
		if err != nil {
			continue
		}

		for j := 0; j < i; j++ {
			_ = c.caches[j].Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set writes through to every level. The last write error wins;
// earlier levels keep their copies either way.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	var lastErr error

	for _, cache := range c.caches {
		if err := cache.Set(ctx, key, entry); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Delete removes the key from every level.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	var lastErr error

	for _, cache := range c.caches {
		if err := cache.Delete(ctx, key); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Clear empties every level.
func (c *CacheChain) Clear(ctx context.Context) error {
	var lastErr error

	for _, cache := range c.caches {
		if err := cache.Clear(ctx); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Has reports whether any level holds the key.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, cache := range c.caches {
		if cache.Has(ctx, key) {
			return true
		}
	}

	return false
}
