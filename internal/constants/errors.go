package constants

import "errors"

// Validation errors.
var (
	ErrInvalidFilterFormat   = errors.New("filters must be in key=value format")
	ErrInvalidKeyValueFormat = errors.New("expected key=value format")
	ErrInvalidSubnetIndex    = errors.New("more gateways or IP ranges than subnets")
)

// Required field errors.
var (
	ErrManifestFileRequired = errors.New("manifest file is required (--file)")
)

// File system errors.
var (
	ErrDirectoryTraversalDetected = errors.New("directory traversal detected in file path")
)
