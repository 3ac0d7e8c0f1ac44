package constants

import "time"

// Daemon connection defaults.
const (
	// DefaultDockerHost is the daemon endpoint used when none is configured.
	DefaultDockerHost = "unix:///var/run/docker.sock"

	// DefaultAPIVersion is the Engine API version requested when none is
	// configured and negotiation is not used.
	DefaultAPIVersion = "1.47"

	// ClientVersion is the dockhand release version, reported in the
	// User-Agent header and by the version command.
	ClientVersion = "0.1.0"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as ping.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Operations are a single exchange unless retries are
// configured explicitly.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Concurrency and batching limits.
const (
	// DefaultBatchConcurrency limits concurrent batch operations.
	DefaultBatchConcurrency = 3
)

// Cache defaults.
const (
	// DefaultCacheSize is the default cache entry limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheCleanupInterval is how often expired entries are swept.
	DefaultCacheCleanupInterval = 1 * time.Minute

	// NetworksCacheTTL is the TTL for cached network listings.
	NetworksCacheTTL = 30 * time.Second

	// VersionCacheTTL is the TTL for the cached daemon version. The
	// daemon version does not change without a restart.
	VersionCacheTTL = 1 * time.Hour
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Output format constants.
const (
	// FormatTable for tabular output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// UI and display constants.
const (
	// IDDisplayLength is the number of identifier characters shown in
	// tabular output.
	IDDisplayLength = 12

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// JSONIndent is the indentation used for JSON output.
	JSONIndent = "  "
)

// Confirmation constants.
const (
	// ConfirmationYes for positive confirmations.
	ConfirmationYes = "y"

	// ConfirmationYesLong for spelled-out positive confirmations.
	ConfirmationYesLong = "yes"
)
