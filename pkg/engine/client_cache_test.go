package engine_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dockhand-io/dockhand/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheManager_GetCacheKey(t *testing.T) {
	t.Parallel()

	manager := engine.NewCacheManager(engine.NewMemoryCache(10), nil)

	assert.Equal(t, "GET:/networks", manager.GetCacheKey("GET", "/networks", nil))

	// Params are sorted into the key so equivalent requests share one
	// entry regardless of argument order.
	withParams := manager.GetCacheKey("GET", "/networks/abc", map[string]string{
		"verbose": "true",
		"scope":   "local",
	})
	assert.Equal(t, "GET:/networks/abc:scope=local&verbose=true", withParams)
}

func TestCacheManager_Stats(t *testing.T) {
	t.Parallel()

	manager := engine.NewCacheManager(engine.NewMemoryCache(10), nil)
	ctx := context.Background()

	_, err := manager.Get(ctx, "key")
	require.Error(t, err)

	require.NoError(t, manager.Set(ctx, "key", []byte("data"), time.Minute))

	data, err := manager.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)

	stats := manager.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.InDelta(t, 0.5, stats.GetHitRate(), 0.001)
}

func TestCacheStats_GetHitRate_NoLookups(t *testing.T) {
	t.Parallel()

	stats := &engine.CacheStats{}
	assert.Zero(t, stats.GetHitRate())
}

func TestCacheManager_NilCacheBehavesDisabled(t *testing.T) {
	t.Parallel()

	manager := engine.NewCacheManager(nil, nil)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, "key", []byte("data"), time.Minute))

	_, err := manager.Get(ctx, "key")
	assert.Error(t, err)
}

func TestCacheManager_InvalidatePath(t *testing.T) {
	t.Parallel()

	manager := engine.NewCacheManager(engine.NewMemoryCache(10), nil)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, manager.GetCacheKey("GET", "/networks", nil), []byte("list"), time.Minute))
	require.NoError(t, manager.Set(ctx, manager.GetCacheKey("GET", "/networks/abc", nil), []byte("inspect"), time.Minute))
	require.NoError(t, manager.Set(ctx, manager.GetCacheKey("GET", "/version", nil), []byte("version"), time.Minute))

	// A mutation under /networks drops every cached /networks read but
	// leaves other resources alone.
	manager.InvalidatePath(ctx, "/networks/abc/connect")

	_, err := manager.Get(ctx, "GET:/networks")
	assert.Error(t, err)
	_, err = manager.Get(ctx, "GET:/networks/abc")
	assert.Error(t, err)

	version, err := manager.Get(ctx, "GET:/version")
	require.NoError(t, err)
	assert.Equal(t, []byte("version"), version)

	stats := manager.GetStats()
	assert.Equal(t, int64(2), stats.Invalidations)
}

func TestCachingPolicy_ShouldCache(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		policy   *engine.CachingPolicy
		method   string
		path     string
		status   int
		expected bool
	}{
		{
			name:     "GET allowed by default policy",
			policy:   engine.DefaultCachingPolicy(),
			method:   http.MethodGet,
			path:     "/networks",
			status:   http.StatusOK,
			expected: true,
		},
		{
			name:     "POST rejected by default policy",
			policy:   engine.DefaultCachingPolicy(),
			method:   http.MethodPost,
			path:     "/networks/create",
			status:   http.StatusCreated,
			expected: false,
		},
		{
			name:     "ping excluded by default policy",
			policy:   engine.DefaultCachingPolicy(),
			method:   http.MethodGet,
			path:     "/_ping",
			status:   http.StatusOK,
			expected: false,
		},
		{
			name:     "error response rejected",
			policy:   engine.DefaultCachingPolicy(),
			method:   http.MethodGet,
			path:     "/networks",
			status:   http.StatusNotFound,
			expected: false,
		},
		{
			name: "include list restricts paths",
			policy: &engine.CachingPolicy{
				CacheGET:     true,
				IncludePaths: []string{"/networks"},
			},
			method:   http.MethodGet,
			path:     "/version",
			status:   http.StatusOK,
			expected: false,
		},
		{
			name: "include list admits matching path",
			policy: &engine.CachingPolicy{
				CacheGET:     true,
				IncludePaths: []string{"/networks"},
			},
			method:   http.MethodGet,
			path:     "/networks/abc",
			status:   http.StatusOK,
			expected: true,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			actual := testCase.policy.ShouldCache(testCase.method, testCase.path, testCase.status)
			assert.Equal(t, testCase.expected, actual)
		})
	}
}

func TestSmartCacheConfig_TTLForPath(t *testing.T) {
	t.Parallel()

	config := engine.DefaultSmartCacheConfig()

	assert.Equal(t, 30*time.Second, config.TTLForPath("/networks"))
	assert.Equal(t, 30*time.Second, config.TTLForPath("/networks/abc"))
	assert.Equal(t, time.Hour, config.TTLForPath("/version"))
	assert.Equal(t, 5*time.Minute, config.TTLForPath("/info"))
}

func TestCacheInterceptor_PolicyTTLForPath(t *testing.T) {
	t.Parallel()

	manager := engine.NewCacheManager(engine.NewMemoryCache(10), nil)
	ctx := context.Background()

	policy := engine.DefaultCachingPolicy()
	policy.TTL = time.Minute
	policy.TTLForPath = func(path string) time.Duration {
		if path == "/networks" {
			return time.Second
		}

		return 0
	}

	_, respInterceptor := engine.CacheInterceptor(manager, policy)

	store := func(path string) {
		req := &engine.Request{Method: http.MethodGet, Path: path}
		resp := &engine.Response{StatusCode: http.StatusOK, Body: []byte("[]")}
		require.NoError(t, respInterceptor(ctx, req, resp))
	}

	store("/networks")
	store("/containers")

	networks, err := manager.GetEntry(ctx, "GET:/networks")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Second), networks.ExpiresAt, 500*time.Millisecond)

	// A zero resolution falls back to the policy TTL.
	other, err := manager.GetEntry(ctx, "GET:/containers")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), other.ExpiresAt, 5*time.Second)
}

func TestCacheInterceptor_HitShortCircuits(t *testing.T) {
	t.Parallel()

	manager := engine.NewCacheManager(engine.NewMemoryCache(10), nil)
	ctx := context.Background()

	reqInterceptor, respInterceptor := engine.CacheInterceptor(manager, nil)

	// First exchange: miss, then the response is stored.
	req := &engine.Request{
		Method:   http.MethodGet,
		Path:     "/networks",
		Metadata: map[string]interface{}{},
	}

	require.NoError(t, reqInterceptor(ctx, req))
	assert.Nil(t, req.Metadata[engine.MetadataCachedResponse])

	resp := &engine.Response{
		StatusCode: http.StatusOK,
		Body:       []byte(`[{"Name":"bridge"}]`),
	}
	require.NoError(t, respInterceptor(ctx, req, resp))

	// Second exchange: the cached body appears in the metadata and the
	// HTTP layer will short-circuit on it.
	second := &engine.Request{
		Method:   http.MethodGet,
		Path:     "/networks",
		Metadata: map[string]interface{}{},
	}

	require.NoError(t, reqInterceptor(ctx, second))
	assert.Equal(t, []byte(`[{"Name":"bridge"}]`), second.Metadata[engine.MetadataCachedResponse])
}

func TestCacheInterceptor_ErrorResponsesNotStored(t *testing.T) {
	t.Parallel()

	manager := engine.NewCacheManager(engine.NewMemoryCache(10), nil)
	ctx := context.Background()

	_, respInterceptor := engine.CacheInterceptor(manager, nil)

	req := &engine.Request{Method: http.MethodGet, Path: "/networks"}
	resp := &engine.Response{
		StatusCode: http.StatusInternalServerError,
		Body:       []byte(`{"message":"boom"}`),
		Error:      &engine.DaemonError{StatusCode: http.StatusInternalServerError, Message: "boom"},
	}

	require.NoError(t, respInterceptor(ctx, req, resp))

	_, err := manager.Get(ctx, manager.GetCacheKey(http.MethodGet, "/networks", nil))
	assert.Error(t, err)
}

func TestCacheInvalidationInterceptor(t *testing.T) {
	t.Parallel()

	manager := engine.NewCacheManager(engine.NewMemoryCache(10), nil)
	ctx := context.Background()

	key := manager.GetCacheKey(http.MethodGet, "/networks", nil)
	require.NoError(t, manager.Set(ctx, key, []byte("list"), time.Minute))

	interceptor := engine.CacheInvalidationInterceptor(manager)

	t.Run("failed mutation leaves cache alone", func(t *testing.T) {
		req := &engine.Request{Method: http.MethodPost, Path: "/networks/create"}
		resp := &engine.Response{
			StatusCode: http.StatusConflict,
			Error:      &engine.DaemonError{StatusCode: http.StatusConflict, Message: "exists"},
		}

		require.NoError(t, interceptor(ctx, req, resp))

		_, err := manager.Get(ctx, key)
		assert.NoError(t, err)
	})

	t.Run("successful mutation drops cached reads", func(t *testing.T) {
		req := &engine.Request{Method: http.MethodPost, Path: "/networks/create"}
		resp := &engine.Response{StatusCode: http.StatusCreated}

		require.NoError(t, interceptor(ctx, req, resp))

		_, err := manager.Get(ctx, key)
		assert.Error(t, err)
	})
}

func TestConfigureSmartCache(t *testing.T) {
	t.Parallel()

	manager := engine.NewCacheManager(engine.NewMemoryCache(10), nil)
	chain := engine.NewInterceptorChain()

	engine.ConfigureSmartCache(chain, manager, nil)

	ctx := context.Background()

	// Drive a GET exchange through the chain and confirm the second
	// pass is answered from cache.
	req := &engine.Request{
		Method:   http.MethodGet,
		Path:     "/networks",
		Metadata: map[string]interface{}{},
	}

	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))

	resp := &engine.Response{StatusCode: http.StatusOK, Body: []byte("[]")}
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, resp))

	second := &engine.Request{
		Method:   http.MethodGet,
		Path:     "/networks",
		Metadata: map[string]interface{}{},
	}

	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, second))
	assert.Equal(t, []byte("[]"), second.Metadata[engine.MetadataCachedResponse])
}

func TestConfigureSmartCache_PerResourceTTL(t *testing.T) {
	t.Parallel()

	manager := engine.NewCacheManager(engine.NewMemoryCache(10), nil)
	chain := engine.NewInterceptorChain()
	engine.ConfigureSmartCache(chain, manager, nil)

	ctx := context.Background()

	store := func(path string) {
		req := &engine.Request{
			Method:   http.MethodGet,
			Path:     path,
			Metadata: map[string]interface{}{},
		}

		require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))

		resp := &engine.Response{StatusCode: http.StatusOK, Body: []byte("{}")}
		require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, resp))
	}

	store("/networks")
	store("/version")

	// Network listings go stale quickly; the daemon version holds for
	// the rest of the session.
	networks, err := manager.GetEntry(ctx, "GET:/networks")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Second), networks.ExpiresAt, 5*time.Second)

	version, err := manager.GetEntry(ctx, "GET:/version")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), version.ExpiresAt, 5*time.Second)
}
