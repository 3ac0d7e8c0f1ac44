package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dockhand-io/dockhand/internal/constants"
)

// MetadataCachedResponse is the request metadata key under which a
// cache hit is stored. The HTTP layer checks it after running request
// interceptors and short-circuits the exchange when it is set.
const MetadataCachedResponse = "cached_response"

// CacheManager coordinates a Cache backend with hit/miss accounting
// and key construction.
type CacheManager struct {
	cache  Cache
	logger Logger
	mu     sync.Mutex
	stats  CacheStats
	keys   map[string]struct{}
}

// CacheStats tracks cache effectiveness.
type CacheStats struct {
	Hits          int64 `json:"hits"          yaml:"hits"`
	Misses        int64 `json:"misses"        yaml:"misses"`
	Sets          int64 `json:"sets"          yaml:"sets"`
	Deletes       int64 `json:"deletes"       yaml:"deletes"`
	Invalidations int64 `json:"invalidations" yaml:"invalidations"`
}

// GetHitRate returns the fraction of lookups served from cache.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// NewCacheManager creates a new cache manager. A nil cache behaves
// like a disabled cache.
func NewCacheManager(cache Cache, logger Logger) *CacheManager {
	if cache == nil {
		cache = NewNoOpCache()
	}

	return &CacheManager{
		cache:  cache,
		logger: logger,
		keys:   make(map[string]struct{}),
	}
}

// GetCacheKey builds a cache key from a request shape. Params are
// sorted so that equivalent requests map onto the same key.
func (m *CacheManager) GetCacheKey(method, path string, params map[string]string) string {
	if len(params) == 0 {
		return fmt.Sprintf("%s:%s", method, path)
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}

	return fmt.Sprintf("%s:%s:%s", method, path, strings.Join(pairs, "&"))
}

// Get retrieves cached data for a key.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := m.cache.Get(ctx, key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.stats.Misses++

		return nil, err
	}

	m.stats.Hits++

	return entry.Data, nil
}

// GetEntry retrieves the full cache entry for a key, including its
// ETag, without touching the hit/miss counters.
func (m *CacheManager) GetEntry(ctx context.Context, key string) (*CacheEntry, error) {
	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Set stores data under a key with the given TTL.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.SetWithETag(ctx, key, data, "", ttl)
}

// SetWithETag stores data under a key together with its ETag.
func (m *CacheManager) SetWithETag(ctx context.Context, key string, data []byte, etag string, ttl time.Duration) error {
	entry := &CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
		ETag:      etag,
	}

	err := m.cache.Set(ctx, key, entry)
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}

	m.mu.Lock()
	m.stats.Sets++
	m.keys[key] = struct{}{}
	m.mu.Unlock()

	return nil
}

// Delete removes a key.
func (m *CacheManager) Delete(ctx context.Context, key string) error {
	err := m.cache.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}

	m.mu.Lock()
	m.stats.Deletes++
	delete(m.keys, key)
	m.mu.Unlock()

	return nil
}

// InvalidatePath drops every cached response whose request path
// shares a resource root with the given path. Mutating
// /networks/{id}/connect invalidates cached /networks lists and
// inspects alike.
func (m *CacheManager) InvalidatePath(ctx context.Context, path string) {
	root := resourceRoot(path)
	if root == "" {
		return
	}

	m.mu.Lock()
	stale := make([]string, 0)

	for key := range m.keys {
		parts := strings.SplitN(key, ":", 3)
		if len(parts) >= 2 && strings.HasPrefix(parts[1], root) {
			stale = append(stale, key)
		}
	}

	for _, key := range stale {
		delete(m.keys, key)
	}

	m.stats.Invalidations += int64(len(stale))
	m.mu.Unlock()

	for _, key := range stale {
		_ = m.cache.Delete(ctx, key)
	}

	if m.logger != nil && len(stale) > 0 {
		m.logger.Debug("cache invalidated", map[string]interface{}{
			"path":    path,
			"entries": len(stale),
		})
	}
}

// resourceRoot returns the leading path segment, "/networks" for
// "/networks/abc/connect".
func resourceRoot(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return ""
	}

	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}

	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}

	return "/" + trimmed
}

// GetStats returns a snapshot of the cache statistics.
func (m *CacheManager) GetStats() *CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.stats

	return &stats
}

// CachingPolicy decides which exchanges are cacheable.
type CachingPolicy struct {
	// CacheGET enables caching of GET responses.
	CacheGET bool
	// CachePOST enables caching of POST responses. Off by default;
	// every POST in the network family is a mutation.
	CachePOST bool
	// CacheErrors enables caching of non-success responses.
	CacheErrors bool
	// IncludePaths, when non-empty, restricts caching to paths with
	// one of these prefixes.
	IncludePaths []string
	// ExcludePaths lists path prefixes that are never cached.
	ExcludePaths []string
	// TTL is the entry lifetime for responses cached by this policy.
	TTL time.Duration
	// TTLForPath, when set, picks the entry lifetime per request path
	// and takes precedence over TTL.
	TTLForPath func(path string) time.Duration
}

// DefaultCachingPolicy returns the default caching policy: GET
// responses only, with the liveness endpoints excluded.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{
		CacheGET:     true,
		ExcludePaths: []string{"/_ping", "/info"},
		TTL:          constants.DefaultCacheTTL,
	}
}

// ShouldCache reports whether a response for the given request shape
// should be stored.
func (p *CachingPolicy) ShouldCache(method, path string, statusCode int) bool {
	switch method {
	case http.MethodGet:
		if !p.CacheGET {
			return false
		}
	case http.MethodPost:
		if !p.CachePOST {
			return false
		}
	default:
		return false
	}

	if statusCode >= http.StatusBadRequest && !p.CacheErrors {
		return false
	}

	if len(p.IncludePaths) > 0 {
		for _, include := range p.IncludePaths {
			if strings.HasPrefix(path, include) {
				return true
			}
		}

		return false
	}

	for _, exclude := range p.ExcludePaths {
		if strings.HasPrefix(path, exclude) {
			return false
		}
	}

	return true
}

// CacheInterceptor returns the request/response interceptor pair that
// serves GET responses from cache and stores fresh ones. On a hit the
// cached body is placed in the request metadata under
// MetadataCachedResponse; the HTTP layer short-circuits on it.
func CacheInterceptor(manager *CacheManager, policy *CachingPolicy) (RequestInterceptor, ResponseInterceptor) {
	if policy == nil {
		policy = DefaultCachingPolicy()
	}

	requestInterceptor := func(ctx context.Context, req *Request) error {
		if req.Method != http.MethodGet {
			return nil
		}

		key := manager.GetCacheKey(req.Method, req.Path, nil)

		data, err := manager.Get(ctx, key)
		if err != nil {
			return nil
		}

		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[MetadataCachedResponse] = data

		return nil
	}

	responseInterceptor := func(ctx context.Context, req *Request, resp *Response) error {
		if resp.Error != nil {
			return nil
		}

		if req.Metadata != nil && req.Metadata[MetadataCachedResponse] != nil {
			return nil
		}

		if !policy.ShouldCache(req.Method, req.Path, resp.StatusCode) {
			return nil
		}

		ttl := policy.TTL
		if policy.TTLForPath != nil {
			if resolved := policy.TTLForPath(req.Path); resolved > 0 {
				ttl = resolved
			}
		}

		if ttl <= 0 {
			ttl = constants.DefaultCacheTTL
		}

		key := manager.GetCacheKey(req.Method, req.Path, nil)

		etag := ""
		if resp.Headers != nil {
			etag = resp.Headers.Get("ETag")
		}

		return manager.SetWithETag(ctx, key, resp.Body, etag, ttl)
	}

	return requestInterceptor, responseInterceptor
}

// ConditionalRequestInterceptor sets If-None-Match from a cached ETag
// so the daemon (or a proxy in front of it) can answer 304.
func ConditionalRequestInterceptor(manager *CacheManager) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Method != http.MethodGet {
			return nil
		}

		key := manager.GetCacheKey(req.Method, req.Path, nil)

		entry, err := manager.GetEntry(ctx, key)
		if err != nil || entry.ETag == "" {
			return nil
		}

		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Headers.Set("If-None-Match", entry.ETag)

		return nil
	}
}

// CacheInvalidationInterceptor drops cached reads for a resource after
// a successful mutation of it.
func CacheInvalidationInterceptor(manager *CacheManager) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		switch req.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return nil
		}

		if resp.Error != nil || resp.StatusCode >= http.StatusBadRequest {
			return nil
		}

		manager.InvalidatePath(ctx, req.Path)

		return nil
	}
}

// SmartCacheConfig bundles the cache-related interceptors with
// per-resource TTLs.
type SmartCacheConfig struct {
	EnableSmartInvalidation   bool
	EnableConditionalRequests bool
	EnableMetrics             bool
	// ResourceTTLs maps path prefixes to entry lifetimes.
	ResourceTTLs map[string]time.Duration
}

// DefaultSmartCacheConfig returns the default smart cache
// configuration. Network listings move often and get a short TTL;
// the daemon version effectively never changes within a process
// lifetime.
func DefaultSmartCacheConfig() *SmartCacheConfig {
	return &SmartCacheConfig{
		EnableSmartInvalidation:   true,
		EnableConditionalRequests: true,
		EnableMetrics:             true,
		ResourceTTLs: map[string]time.Duration{
			"/networks": constants.NetworksCacheTTL,
			"/version":  constants.VersionCacheTTL,
		},
	}
}

// TTLForPath returns the configured TTL for a path, or the default
// cache TTL when no prefix matches.
func (c *SmartCacheConfig) TTLForPath(path string) time.Duration {
	best := ""

	for prefix := range c.ResourceTTLs {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}

	if best == "" {
		return constants.DefaultCacheTTL
	}

	return c.ResourceTTLs[best]
}

// ConfigureSmartCache wires the cache interceptors into a chain
// according to the configuration.
func ConfigureSmartCache(chain *InterceptorChain, manager *CacheManager, config *SmartCacheConfig) {
	if config == nil {
		config = DefaultSmartCacheConfig()
	}

	policy := DefaultCachingPolicy()
	policy.TTLForPath = config.TTLForPath

	reqInterceptor, respInterceptor := CacheInterceptor(manager, policy)
	chain.AddRequestInterceptor(reqInterceptor)
	chain.AddResponseInterceptor(respInterceptor)

	if config.EnableConditionalRequests {
		chain.AddRequestInterceptor(ConditionalRequestInterceptor(manager))
	}

	if config.EnableSmartInvalidation {
		chain.AddResponseInterceptor(CacheInvalidationInterceptor(manager))
	}

	if config.EnableMetrics {
		collector := NewMetricsCollector()
		chain.AddRequestInterceptor(MetricsRequestInterceptor(collector))
		chain.AddResponseInterceptor(MetricsResponseInterceptor(collector))
	}
}

// CacheWarmer primes the cache with the reads a session is likely to
// repeat.
type CacheWarmer struct {
	client  Client
	manager *CacheManager
}

// NewCacheWarmer creates a new cache warmer.
func NewCacheWarmer(client Client, manager *CacheManager) *CacheWarmer {
	return &CacheWarmer{
		client:  client,
		manager: manager,
	}
}

// WarmNetworks fetches the network list and stores it under the key
// the cache interceptor will look up.
func (w *CacheWarmer) WarmNetworks(ctx context.Context) error {
	if w.client == nil {
		return ErrClientRequired
	}

	networks, err := w.client.Networks().List(ctx, nil)
	if err != nil {
		return fmt.Errorf("warming networks cache: %w", err)
	}

	data, err := json.Marshal(networks)
	if err != nil {
		return fmt.Errorf("serializing networks for cache: %w", err)
	}

	key := w.manager.GetCacheKey(http.MethodGet, "/networks", nil)

	return w.manager.Set(ctx, key, data, constants.NetworksCacheTTL)
}

// WarmVersion fetches the daemon version and stores it.
func (w *CacheWarmer) WarmVersion(ctx context.Context) error {
	if w.client == nil {
		return ErrClientRequired
	}

	version, err := w.client.System().Version(ctx)
	if err != nil {
		return fmt.Errorf("warming version cache: %w", err)
	}

	data, err := json.Marshal(version)
	if err != nil {
		return fmt.Errorf("serializing version for cache: %w", err)
	}

	key := w.manager.GetCacheKey(http.MethodGet, "/version", nil)

	return w.manager.Set(ctx, key, data, constants.VersionCacheTTL)
}
