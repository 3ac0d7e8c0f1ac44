package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// EncodeError reports that request options could not be serialized.
// It is returned before any network activity takes place.
type EncodeError struct {
	What string
	Err  error
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s: %v", e.What, e.Err)
}

// Unwrap returns the underlying serialization error.
func (e *EncodeError) Unwrap() error { return e.Err }

// DaemonError represents an error response from the daemon. The
// daemon reports failures as a JSON body of the form
// {"message": "..."} alongside a non-success status code.
type DaemonError struct {
	StatusCode int    `json:"-"       yaml:"status_code"`
	Message    string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *DaemonError) Error() string {
	return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
}

// DecodeError reports that a success response body did not match the
// expected shape. It is distinct from DaemonError: the exchange
// completed and the daemon accepted the request, but the reply could
// not be interpreted.
type DecodeError struct {
	What string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.What, e.Err)
}

// Unwrap returns the underlying deserialization error.
func (e *DecodeError) Unwrap() error { return e.Err }

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired        = errors.New("config is required")
	ErrClientRequired        = errors.New("client is required")
	ErrNoHostConfigured      = errors.New("no daemon host configured")
	ErrInvalidHostURL        = errors.New("invalid daemon host URL")
	ErrUnsupportedProtocol   = errors.New("unsupported daemon protocol")
	ErrCacheKeyNotFound      = errors.New("key not found in cache")
	ErrCacheEntryExpired     = errors.New("cache entry expired")
	ErrManifestNoNetworks    = errors.New("manifest defines no networks")
	ErrManifestNameRequired  = errors.New("manifest network name is required")
	ErrManifestDuplicateName = errors.New("manifest network name is duplicated")
	ErrNetworkNameRequired   = errors.New("network name is required")
	ErrContainerRequired     = errors.New("container ID or name is required")
	ErrUnknownOperationType  = errors.New("unknown batch operation type")
	ErrInvalidOperationData  = errors.New("invalid data type for batch operation")
	ErrTransactionFailed     = errors.New("transaction failed")
	ErrPruneDeclined         = errors.New("prune declined")
	ErrUnknownOutputFormat   = errors.New("unknown output format")
	ErrDeprecatedConstructor = errors.New("use github.com/dockhand-io/dockhand/pkg/engineclient.New to create a client")
)

// IsNotFound checks if the error is a daemon not-found error.
func IsNotFound(err error) bool {
	daemonErr := &DaemonError{}
	if errors.As(err, &daemonErr) {
		return daemonErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsConflict checks if the error is a daemon conflict error, such as
// removing a network that still has active endpoints.
func IsConflict(err error) bool {
	daemonErr := &DaemonError{}
	if errors.As(err, &daemonErr) {
		return daemonErr.StatusCode == http.StatusConflict
	}

	return false
}

// IsForbidden checks if the error is a daemon forbidden error, such as
// a network operation rejected for a pre-defined network.
func IsForbidden(err error) bool {
	daemonErr := &DaemonError{}
	if errors.As(err, &daemonErr) {
		return daemonErr.StatusCode == http.StatusForbidden
	}

	return false
}

// IsServerError checks if the error is a daemon-side server error.
func IsServerError(err error) bool {
	daemonErr := &DaemonError{}
	if errors.As(err, &daemonErr) {
		return daemonErr.StatusCode >= http.StatusInternalServerError
	}

	return false
}

// IsEncodeError checks if the error came from serializing options
// before the request was sent.
func IsEncodeError(err error) bool {
	encodeErr := &EncodeError{}

	return errors.As(err, &encodeErr)
}

// IsDecodeError checks if the error came from deserializing a success
// response body.
func IsDecodeError(err error) bool {
	decodeErr := &DecodeError{}

	return errors.As(err, &decodeErr)
}

// ParseDaemonError builds a DaemonError from a non-success response.
// Bodies that are not the standard {"message": ...} shape are carried
// verbatim; an empty body falls back to the HTTP status text.
func ParseDaemonError(statusCode int, body []byte) *DaemonError {
	daemonErr := &DaemonError{StatusCode: statusCode}

	if err := json.Unmarshal(body, daemonErr); err != nil || daemonErr.Message == "" {
		daemonErr.Message = strings.TrimSpace(string(body))
	}

	if daemonErr.Message == "" {
		daemonErr.Message = http.StatusText(statusCode)
	}

	return daemonErr
}
