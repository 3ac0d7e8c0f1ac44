package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Cache is a pluggable response cache. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is a single cached response body.
type CacheEntry struct {
	Data      []byte    `json:"data"       yaml:"data"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
	ETag      string    `json:"etag"       yaml:"etag"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Expired reports whether the entry is past its expiry.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// CacheOptions are common options applied to any cache backend.
type CacheOptions struct {
	// DefaultTTL is the lifetime applied to entries stored without an
	// explicit TTL.
	DefaultTTL time.Duration

	// KeyPrefix is prepended to every cache key, separating multiple
	// clients sharing one backend.
	KeyPrefix string
}

// DefaultCacheOptions returns default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		DefaultTTL: 5 * time.Minute,
	}
}

// MemoryCache is a bounded in-memory cache. When full, the oldest
// entry is evicted to make room.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
}

// NewMemoryCache creates a new memory cache holding at most maxSize
// entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1000
	}

	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get retrieves an entry. Expired entries are removed and reported as
// missing.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	if entry.Expired() {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return entry, nil
}

// Set stores an entry, evicting the oldest entry if the cache is full.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry

	return nil
}

// evictOldest removes the entry with the earliest creation time.
// Callers must hold the write lock.
func (c *MemoryCache) evictOldest() {
	var (
		oldestKey  string
		oldestTime time.Time
	)

	for key, entry := range c.entries {
		if oldestKey == "" || entry.CreatedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.CreatedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)

	return nil
}

// Has reports whether a live entry exists for the key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]

	return ok && !entry.Expired()
}

// Cleanup removes all expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.Expired() {
			delete(c.entries, key)
		}
	}
}

// StartCleanup runs Cleanup on the given interval until the context
// is canceled.
func (c *MemoryCache) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// NATSKVConfig configures the NATS JetStream key-value cache backend.
type NATSKVConfig struct {
	// URL is the NATS server URL, e.g. "nats://127.0.0.1:4222".
	URL string

	// Bucket is the KV bucket name. It is created if it does not
	// exist.
	Bucket string

	// TTL is the bucket-level entry lifetime applied when the bucket
	// is created. Zero keeps entries until they expire logically.
	TTL time.Duration

	// CredentialsFile is an optional NATS credentials file path.
	CredentialsFile string

	// Username and Password are optional connection credentials.
	Username string
	Password string
}

// NATSKVCache stores cache entries in a NATS JetStream key-value
// bucket, letting multiple processes share one cache.
type NATSKVCache struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSKVCache connects to NATS and opens (or creates) the
// configured KV bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil || config.URL == "" {
		return nil, ErrNATSConfigRequired
	}

	opts := []nats.Option{nats.Name("dockhand-cache")}
	if config.CredentialsFile != "" {
		opts = append(opts, nats.UserCredentials(config.CredentialsFile))
	}

	if config.Username != "" {
		opts = append(opts, nats.UserInfo(config.Username, config.Password))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("getting JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: config.Bucket,
			TTL:    config.TTL,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening KV bucket %q: %w", config.Bucket, err)
	}

	return &NATSKVCache{conn: conn, kv: kv}, nil
}

// kvKey maps a cache key onto the restricted NATS KV key alphabet.
func kvKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}

// Get retrieves an entry from the bucket.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(kvKey(key))
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
		}

		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(kvEntry.Value(), &entry); err != nil {
		return nil, fmt.Errorf("parsing cache entry: %w", err)
	}

	if entry.Expired() {
		_ = c.kv.Delete(kvKey(key))

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return &entry, nil
}

// Set stores an entry in the bucket.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("serializing cache entry: %w", err)
	}

	if _, err := c.kv.Put(kvKey(key), data); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	return nil
}

// Delete removes an entry from the bucket.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(kvKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting cache entry: %w", err)
	}

	return nil
}

// Clear removes every entry from the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("listing cache keys: %w", err)
	}

	for _, key := range keys {
		if err := c.kv.Purge(key); err != nil {
			return fmt.Errorf("purging cache entry: %w", err)
		}
	}

	return nil
}

// Has reports whether a live entry exists for the key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	entry, err := c.Get(ctx, key)

	return err == nil && entry != nil
}

// Close drains the NATS connection.
func (c *NATSKVCache) Close() {
	c.conn.Close()
}
