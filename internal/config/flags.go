package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flag names shared by RegisterFlags and parseFlags.
const (
	flagLibraryPath       = "library-path"
	flagThreads           = "threads"
	flagValidate          = "validate"
	flagDryRun            = "dry-run"
	flagCompatibilityMode = "compatibility-mode"
	flagOmitPublisher     = "omit-publisher"
	flagDBPath            = "db-path"
	flagToken             = "token"
	flagAPIURL            = "api-url"
	flagRequestTimeout    = "request-timeout"
	flagDownloadTimeout   = "download-timeout"
	flagRetries           = "retries"
	flagLogLevel          = "log-level"
	flagLogFile           = "log-file"
	flagConfig            = "config"
	flagEnvFile           = "env-file"
)

// RegisterFlags defines the sync flags on fs.
//
// Flags:
//
//	-l/--library-path        library root directory
//	-x/--threads             concurrent downloads
//	-c/--validate            verify MD5 checksums
//	-n/--dry-run             report planned work without doing it
//	--compatibility-mode     vendor client directory naming
//	--omit-publisher         drop the publisher directory level
//	--db-path                local state database file
//	-t/--token               API key
//	--api-url                API base URL
//	--request-timeout        single API request timeout (e.g. "30s")
//	--download-timeout       single file transfer timeout (e.g. "30m")
//	--retries                extra attempts after transient failures
//	--log-level              debug, info, warn, error
//	--log-file               JSON log file, rotated by size
//	--config                 JSON config file path
//	--env-file               .env file path
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(flagLibraryPath, "l", "", "Library root directory (default ~/DRPG)")
	fs.IntP(flagThreads, "x", 0, "Number of concurrent downloads (default 5)")
	fs.BoolP(flagValidate, "c", false, "Validate MD5 checksums of downloaded and existing files")
	fs.BoolP(flagDryRun, "n", false, "Only report what would be downloaded")
	fs.Bool(flagCompatibilityMode, false, "Name directories like the vendor's client")
	fs.Bool(flagOmitPublisher, false, "Do not create a directory per publisher")
	fs.String(flagDBPath, "", "Local state database file (default ~/.drpg/drpg.db)")
	fs.StringP(flagToken, "t", "", "API key from your account settings")
	fs.String(flagAPIURL, "", "Catalog API base URL")
	fs.Duration(flagRequestTimeout, 0, "Timeout of a single API request (e.g. 30s)")
	fs.Duration(flagDownloadTimeout, 0, "Timeout of a single file transfer (e.g. 30m)")
	fs.Int(flagRetries, 0, "Extra attempts after a transient failure")
	fs.String(flagLogLevel, "", "Log level: debug, info, warn, error")
	fs.String(flagLogFile, "", "Also write JSON logs to this file")
	fs.String(flagConfig, "", "JSON config file path")
	fs.String(flagEnvFile, "", ".env file path")
}

// parseFlags maps the flags the user actually set onto a config. Untouched
// flags stay zero so lower priority sources can fill them.
func parseFlags(fs *pflag.FlagSet) (*StructuredConfig, error) {
	cfg := &StructuredConfig{}
	var err error

	str := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetBool(name)
		}
	}
	integer := func(name string, dst *int) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetInt(name)
		}
	}

	str(flagLibraryPath, &cfg.Library.Path)
	integer(flagThreads, &cfg.Workers.Threads)
	boolean(flagValidate, &cfg.Library.ValidateChecksums)
	boolean(flagDryRun, &cfg.Library.DryRun)
	boolean(flagCompatibilityMode, &cfg.Library.CompatibilityMode)
	boolean(flagOmitPublisher, &cfg.Library.OmitPublisher)
	str(flagDBPath, &cfg.Storage.DBPath)
	str(flagToken, &cfg.Catalog.Token)
	str(flagAPIURL, &cfg.Catalog.URL)
	integer(flagRetries, &cfg.Workers.Retries)
	str(flagLogLevel, &cfg.Logging.Level)
	str(flagLogFile, &cfg.Logging.File)
	str(flagConfig, &cfg.JSONFilePath)
	str(flagEnvFile, &cfg.DotEnvPath)

	if err == nil && fs.Changed(flagRequestTimeout) {
		cfg.Catalog.RequestTimeout, err = fs.GetDuration(flagRequestTimeout)
	}
	if err == nil && fs.Changed(flagDownloadTimeout) {
		cfg.Catalog.DownloadTimeout, err = fs.GetDuration(flagDownloadTimeout)
	}

	if err != nil {
		return nil, fmt.Errorf("error reading flags: %w", err)
	}

	return cfg, nil
}
