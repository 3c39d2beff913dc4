// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"

	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DRPG_"

// StructuredConfig is the top-level configuration container for drpg-sync.
// It is populated by merging values from flags, environment variables, an
// optional JSON file and defaults.
//
// Struct tags:
//   - env: environment variable name without the DRPG_ prefix (caarlos0/env).
type StructuredConfig struct {
	// Library controls where and how files are laid out on disk.
	Library Library

	// Catalog holds the remote catalog API settings.
	Catalog Catalog

	// Storage holds the local state database settings.
	Storage Storage

	// Workers holds download concurrency and retry settings.
	Workers Workers

	// Logging holds log level and log file settings.
	Logging Logging

	// JSONFilePath is the optional path to a JSON configuration file.
	// Env: DRPG_CONFIG, flag: --config
	JSONFilePath string `env:"CONFIG"`

	// DotEnvPath is the optional path to a .env file loaded before the
	// environment is parsed. Env: DRPG_ENV_FILE, flag: --env-file
	DotEnvPath string `env:"ENV_FILE"`
}

// Library groups the settings that decide the on-disk layout.
type Library struct {
	// Path is the root directory of the synchronized library.
	// Env: DRPG_LIBRARY_PATH
	Path string `env:"LIBRARY_PATH"`

	// CompatibilityMode names directories the way the vendor's own client
	// does. Env: DRPG_COMPATIBILITY_MODE
	CompatibilityMode bool `env:"COMPATIBILITY_MODE"`

	// OmitPublisher drops the publisher directory level.
	// Env: DRPG_OMIT_PUBLISHER
	OmitPublisher bool `env:"OMIT_PUBLISHER"`

	// ValidateChecksums verifies MD5 digests of downloaded and existing
	// files. Env: DRPG_VALIDATE
	ValidateChecksums bool `env:"VALIDATE"`

	// DryRun reports what would be transferred without touching anything.
	// Env: DRPG_DRY_RUN
	DryRun bool `env:"DRY_RUN"`
}

// Catalog holds connection settings for the remote catalog API.
type Catalog struct {
	// URL is the API base URL. Env: DRPG_API_URL
	URL string `env:"API_URL"`

	// Token is the customer's application key exchanged for a bearer
	// token. Env: DRPG_TOKEN
	Token string `env:"TOKEN"`

	// RequestTimeout bounds a single API request. Env: DRPG_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// DownloadTimeout bounds a single file transfer.
	// Env: DRPG_DOWNLOAD_TIMEOUT
	DownloadTimeout time.Duration `env:"DOWNLOAD_TIMEOUT"`

	// RateLimit is the sustained number of API requests per second.
	// Env: DRPG_RATE_LIMIT
	RateLimit float64 `env:"RATE_LIMIT"`

	// RateBurst is the number of API requests allowed in a burst.
	// Env: DRPG_RATE_BURST
	RateBurst int `env:"RATE_BURST"`

	// PageSize is the number of products requested per catalog page.
	// Env: DRPG_PAGE_SIZE
	PageSize int `env:"PAGE_SIZE"`

	// PrepareAttempts caps how many times a pending download link is
	// polled. Env: DRPG_PREPARE_ATTEMPTS
	PrepareAttempts int `env:"PREPARE_ATTEMPTS"`

	// PollInterval is the pause between polls of a pending download link.
	// Env: DRPG_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`
}

// Storage holds the local state database settings.
type Storage struct {
	// DBPath is the SQLite file holding one record per synchronized item.
	// Env: DRPG_DB_PATH
	DBPath string `env:"DB_PATH"`
}

// Workers holds download concurrency and retry settings.
type Workers struct {
	// Threads is the number of concurrent downloads. Env: DRPG_THREADS
	Threads int `env:"THREADS"`

	// Retries is the number of extra attempts after a transient failure.
	// Env: DRPG_RETRIES
	Retries int `env:"RETRIES"`

	// RetryBaseDelay is the first backoff delay; later ones double.
	// Env: DRPG_RETRY_BASE_DELAY
	RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY"`
}

// Logging holds log output settings.
type Logging struct {
	// Level is a zerolog level name. Env: DRPG_LOG_LEVEL
	Level string `env:"LOG_LEVEL"`

	// File, when set, receives JSON logs rotated by size.
	// Env: DRPG_LOG_FILE
	File string `env:"LOG_FILE"`

	// MaxSizeMB is the rotation size of File. Env: DRPG_LOG_MAX_SIZE_MB
	MaxSizeMB int `env:"LOG_MAX_SIZE_MB"`

	// MaxBackups is the number of rotated log files kept.
	// Env: DRPG_LOG_MAX_BACKUPS
	MaxBackups int `env:"LOG_MAX_BACKUPS"`
}

// Load assembles, merges and validates the configuration. fs holds the
// already parsed command-line flags registered with [RegisterFlags]; a nil
// fs skips the flag source.
func Load(fs *pflag.FlagSet) (*StructuredConfig, error) {
	return newConfigBuilder().
		withFlags(fs).
		withDotEnv().
		withEnv().
		withJSON().
		withDefaults().
		build()
}
