package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, an unknown log level).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidLibraryConfigs indicates an unusable library location.
	ErrInvalidLibraryConfigs = errors.New("invalid library configuration")
	// ErrInvalidAdapterConfigs indicates invalid catalog API settings
	// (for example, missing token or a malformed base URL).
	ErrInvalidAdapterConfigs = errors.New("invalid catalog api configuration")
	// ErrInvalidStorageConfigs indicates invalid state store settings
	// (for example, an empty database path).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidWorkerConfigs indicates invalid download worker settings
	// (for example, zero threads or negative retries).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
