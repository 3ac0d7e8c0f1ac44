package engine

import (
	"context"
	"time"
)

// NetworksClient provides access to the daemon's network endpoints.
//
// The type parameter selects the text kind used in option structs.
// Client.Networks returns the plain-string instantiation, which is
// what most callers want; engineclient.Networks re-instantiates the
// same underlying client for any other text kind.
//
// Every operation is a single request/response exchange: nothing is
// retained between calls, and a failed exchange is never re-issued by
// this layer.
type NetworksClient[T Text] interface {
	// Create creates a new network and returns its ID together with
	// any daemon warning.
	Create(ctx context.Context, options CreateNetworkOptions[T]) (*CreateNetworkResults, error)

	// Remove deletes the network with the given ID or name.
	Remove(ctx context.Context, name string) error

	// Inspect returns detailed information about a network. A nil
	// options pointer sends no query parameters; a non-nil one always
	// sends both the verbose and scope parameters.
	Inspect(ctx context.Context, name string, options *InspectNetworkOptions[T]) (*InspectNetworkResults, error)

	// List returns the networks known to the daemon, optionally
	// narrowed by filters. A nil options pointer sends no query
	// parameters.
	List(ctx context.Context, options *ListNetworksOptions[T]) ([]ListNetworksResults, error)

	// Connect attaches a container to the network.
	Connect(ctx context.Context, name string, options ConnectNetworkOptions[T]) error

	// Disconnect detaches a container from the network.
	Disconnect(ctx context.Context, name string, options DisconnectNetworkOptions[T]) error

	// Prune deletes unused networks and reports which were removed. A
	// nil options pointer sends no query parameters; a non-nil one
	// always sends the filters parameter, "{}" when no filters are
	// set.
	Prune(ctx context.Context, options *PruneNetworksOptions[T]) (*PruneNetworksResults, error)
}

// SystemClient provides access to daemon-level endpoints.
type SystemClient interface {
	// Ping checks daemon reachability.
	Ping(ctx context.Context) (*PingResults, error)

	// Version returns daemon version information.
	Version(ctx context.Context) (*VersionResults, error)

	// Info returns a summary of daemon state.
	Info(ctx context.Context) (*InfoResults, error)
}

// Client is the composed daemon client surface.
type Client interface {
	Networks() NetworksClient[string]
	System() SystemClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an
// engine.Client.
//
// # Daemon addresses
//
// Host accepts the daemon address forms the engine itself accepts:
// "unix:///var/run/docker.sock" for local sockets, "tcp://host:2375"
// (or "tcp://host:2376" with TLS material) for remote daemons, and
// plain "http://" or "https://" URLs. engineclient.New fills in the
// platform default when Host is empty, and engineclient.FromEnv reads
// DOCKER_HOST and friends instead.
//
// # Timeouts, retries, and TLS
//
// Per-request timeouts should generally be controlled via context
// passed to client methods; HTTPTimeout is a backstop on the whole
// exchange. RetryMax defaults to zero: a failed exchange surfaces
// immediately and is never re-issued. Setting RetryMax above zero
// opts the transport into retrying connection errors and 5xx/429
// replies with backoff between RetryWaitMin and RetryWaitMax.
type Config struct {
	// Host: daemon address. Empty means the platform default socket.
	Host string

	// APIVersion: engine API version used as the request path prefix
	// (e.g. "1.41" produces "/v1.41/networks"). Empty sends
	// unversioned paths and lets the daemon assume its newest version.
	APIVersion string

	// Optional configurations
	// HTTPTimeout: backstop timeout for a whole request/response
	// exchange. Zero means no client-side limit beyond the context.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of transport-level retries. Zero, the
	// default, disables retrying entirely.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when
	// RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when
	// RetryMax > 0.
	RetryWaitMax time.Duration
	// TLSCACertFile: PEM file with the CA certificate to verify the
	// daemon against. Used for tcp:// and https:// hosts.
	TLSCACertFile string
	// TLSCertFile: PEM file with the client certificate.
	TLSCertFile string
	// TLSKeyFile: PEM file with the client certificate's key.
	TLSKeyFile string
	// TLSInsecureSkipVerify: skip daemon certificate verification.
	// Intended for local development only.
	TLSInsecureSkipVerify bool
	// Debug: enables verbose HTTP request/response logging when a
	// Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the
	// client.
	UserAgent string
	// Cache: optional response cache configuration. Nil disables
	// caching; see DefaultCacheConfig for a sensible starting point.
	Cache *CacheConfig
}

// NewClient creates a new daemon client.
// Deprecated: Use github.com/dockhand-io/dockhand/pkg/engineclient.New instead.
func NewClient(config *Config) (Client, error) {
	return nil, ErrDeprecatedConstructor
}
