// Package engineclient provides the main entry point for creating Docker Engine API clients
package engineclient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dockhand-io/dockhand/internal/client"
	"github.com/dockhand-io/dockhand/pkg/engine"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedClient = errors.New("client was not created by this package")
)

// New creates a new Engine API client from the configuration. The
// host may use the unix://, tcp://, npipe://, or http(s):// schemes;
// a bare host:port is treated as tcp. An empty host selects the
// platform default daemon socket.
func New(ctx context.Context, config *engine.Config) (engine.Client, error) {
	if config == nil {
		return nil, engine.ErrConfigRequired
	}

	config.Host = normalizeHost(config.Host)

	engineClient, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return engineClient, nil
}

// FromEnv creates a client configured from the standard Docker
// environment variables: DOCKER_HOST, DOCKER_API_VERSION,
// DOCKER_CERT_PATH, and DOCKER_TLS_VERIFY.
func FromEnv(ctx context.Context) (engine.Client, error) {
	config := &engine.Config{
		Host:       os.Getenv("DOCKER_HOST"),
		APIVersion: os.Getenv("DOCKER_API_VERSION"),
	}

	if certPath := os.Getenv("DOCKER_CERT_PATH"); certPath != "" {
		config.TLSCACertFile = filepath.Join(certPath, "ca.pem")
		config.TLSCertFile = filepath.Join(certPath, "cert.pem")
		config.TLSKeyFile = filepath.Join(certPath, "key.pem")
		config.TLSInsecureSkipVerify = os.Getenv("DOCKER_TLS_VERIFY") == ""
	}

	return New(ctx, config)
}

// NewWithHost creates a client for the given daemon host with default
// configuration.
func NewWithHost(ctx context.Context, host string) (engine.Client, error) {
	return New(ctx, &engine.Config{
		Host: host,
	})
}

// Networks re-instantiates the networks client for a custom text
// type, sharing the transport of a client built by this package.
func Networks[T engine.Text](engineClient engine.Client) (engine.NetworksClient[T], error) {
	concrete, ok := engineClient.(*client.Client)
	if !ok {
		return nil, ErrUnsupportedClient
	}

	return client.NetworksFor[T](concrete), nil
}

// WarmCache primes the response cache of a client built by this
// package with the reads a session repeats: the network list and the
// daemon version. It is a no-op when the client was created without
// caching.
func WarmCache(ctx context.Context, engineClient engine.Client) error {
	concrete, ok := engineClient.(*client.Client)
	if !ok {
		return ErrUnsupportedClient
	}

	manager := concrete.CacheManager()
	if manager == nil {
		return nil
	}

	warmer := engine.NewCacheWarmer(concrete, manager)

	if err := warmer.WarmNetworks(ctx); err != nil {
		return err
	}

	return warmer.WarmVersion(ctx)
}

// normalizeHost fills in the scheme for bare host:port values.
// Empty stays empty so the transport can apply its default socket.
func normalizeHost(host string) string {
	if host == "" || strings.Contains(host, "://") {
		return host
	}

	return "tcp://" + host
}
