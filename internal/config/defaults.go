package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultAPIURL          = "https://api.drivethrurpg.com/api/vBeta/"
	DefaultThreads         = 5
	DefaultRetries         = 3
	DefaultRetryBaseDelay  = 500 * time.Millisecond
	DefaultRequestTimeout  = 30 * time.Second
	DefaultDownloadTimeout = 30 * time.Minute
	DefaultRateLimit       = 5.0
	DefaultRateBurst       = 5
	DefaultPageSize        = 50
	DefaultPrepareAttempts = 30
	DefaultPollInterval    = 2 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogMaxSizeMB    = 10
	DefaultLogMaxBackups   = 3
)

// defaultConfig returns the lowest priority source. Home-relative paths fall
// back to the working directory when the home directory is unknown.
func defaultConfig() *StructuredConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &StructuredConfig{
		Library: Library{
			Path: filepath.Join(home, "DRPG"),
		},
		Catalog: Catalog{
			URL:             DefaultAPIURL,
			RequestTimeout:  DefaultRequestTimeout,
			DownloadTimeout: DefaultDownloadTimeout,
			RateLimit:       DefaultRateLimit,
			RateBurst:       DefaultRateBurst,
			PageSize:        DefaultPageSize,
			PrepareAttempts: DefaultPrepareAttempts,
			PollInterval:    DefaultPollInterval,
		},
		Storage: Storage{
			DBPath: filepath.Join(home, ".drpg", "drpg.db"),
		},
		Workers: Workers{
			Threads:        DefaultThreads,
			Retries:        DefaultRetries,
			RetryBaseDelay: DefaultRetryBaseDelay,
		},
		Logging: Logging{
			Level:      DefaultLogLevel,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
	}
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
