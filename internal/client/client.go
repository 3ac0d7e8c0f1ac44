package client

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/docker/go-connections/tlsconfig"

	"github.com/dockhand-io/dockhand/internal/http"
	"github.com/dockhand-io/dockhand/pkg/engine"
)

// Client implements the engine.Client interface.
type Client struct {
	httpClient   *http.Client
	logger       engine.Logger
	cacheManager *engine.CacheManager

	// Resource clients
	networks engine.NetworksClient[string]
	system   engine.SystemClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *engine.Config) ([]http.Option, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.APIVersion != "" {
		httpOpts = append(httpOpts, http.WithAPIVersion(config.APIVersion))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	tlsConfig, err := buildTLSConfig(config)
	if err != nil {
		return nil, err
	}

	if tlsConfig != nil {
		httpOpts = append(httpOpts, http.WithTLSConfig(tlsConfig))
	}

	return httpOpts, nil
}

// buildTLSConfig assembles a TLS configuration from the certificate
// files in the config, or returns nil when none are set.
func buildTLSConfig(config *engine.Config) (*tls.Config, error) {
	if config.TLSCACertFile == "" && config.TLSCertFile == "" && config.TLSKeyFile == "" && !config.TLSInsecureSkipVerify {
		return nil, nil
	}

	options := tlsconfig.Options{
		CAFile:             config.TLSCACertFile,
		CertFile:           config.TLSCertFile,
		KeyFile:            config.TLSKeyFile,
		InsecureSkipVerify: config.TLSInsecureSkipVerify,
	}

	tlsConfig, err := tlsconfig.Client(options)
	if err != nil {
		return nil, fmt.Errorf("building TLS config: %w", err)
	}

	return tlsConfig, nil
}

// New creates a new Engine API client. The context is reserved for
// connection setup and is not retained.
func New(ctx context.Context, config *engine.Config) (*Client, error) {
	_ = ctx

	if config == nil {
		return nil, engine.ErrConfigRequired
	}

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	var cacheManager *engine.CacheManager

	if config.Cache != nil && config.Cache.Type != engine.CacheTypeNone {
		cache, err := engine.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("configuring cache: %w", err)
		}

		cacheManager = engine.NewCacheManager(cache, config.Logger)

		chain := engine.NewInterceptorChain()
		engine.ConfigureSmartCache(chain, cacheManager, nil)
		httpOpts = append(httpOpts, http.WithInterceptors(chain))
	}

	httpClient, err := http.NewClient(config.Host, httpOpts...)
	if err != nil {
		return nil, err
	}

	client := &Client{
		httpClient:   httpClient,
		logger:       config.Logger,
		cacheManager: cacheManager,
	}

	client.initializeResourceClients()

	return client, nil
}

// Networks implements engine.Client.Networks.
func (c *Client) Networks() engine.NetworksClient[string] {
	return c.networks
}

// System implements engine.Client.System.
func (c *Client) System() engine.SystemClient {
	return c.system
}

// CacheManager returns the cache manager wired into the client, or
// nil when caching is not configured.
func (c *Client) CacheManager() *engine.CacheManager {
	return c.cacheManager
}

// NetworksFor re-instantiates the networks client for a different
// text type over the same transport.
func NetworksFor[T engine.Text](c *Client) engine.NetworksClient[T] {
	return NewNetworksClient[T](c.httpClient)
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.networks = NewNetworksClient[string](c.httpClient)
	c.system = NewSystemClient(c.httpClient)
}
