package models

// DefaultConcurrency is the number of parallel transfers used when the
// caller does not configure one.
const DefaultConcurrency = 5

// SyncOptions is the explicit configuration passed to the sync engine.
type SyncOptions struct {
	// LibraryPath is the root directory of the local library.
	LibraryPath string

	// Concurrency is the number of parallel transfers (minimum 1).
	Concurrency int

	// ValidateChecksums enables checksum verification of downloaded files
	// and revalidation of unchanged ones.
	ValidateChecksums bool

	// DryRun plans and reports without touching the network, the
	// filesystem or the state store.
	DryRun bool

	// CompatibilityMode selects the vendor client's legacy naming scheme.
	CompatibilityMode bool

	// OmitPublisher drops the publisher directory level.
	OmitPublisher bool
}
