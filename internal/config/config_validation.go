// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// validate checks that the final merged [StructuredConfig] is usable before
// a sync starts. Errors wrap one of the ErrInvalid* sentinels.
func (cfg *StructuredConfig) validate() error {
	if strings.TrimSpace(cfg.Library.Path) == "" {
		return fmt.Errorf("%w: library path is empty", ErrInvalidLibraryConfigs)
	}

	if strings.TrimSpace(cfg.Catalog.Token) == "" {
		return fmt.Errorf("%w: token is required (--token or DRPG_TOKEN)", ErrInvalidAdapterConfigs)
	}
	u, err := url.Parse(cfg.Catalog.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api url %q must include scheme and host", ErrInvalidAdapterConfigs, cfg.Catalog.URL)
	}
	if cfg.Catalog.RequestTimeout < 0 || cfg.Catalog.DownloadTimeout < 0 || cfg.Catalog.PollInterval < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidAdapterConfigs)
	}
	if cfg.Catalog.RateLimit < 0 || cfg.Catalog.RateBurst < 0 || cfg.Catalog.PageSize < 0 || cfg.Catalog.PrepareAttempts < 0 {
		return fmt.Errorf("%w: rate and paging settings must not be negative", ErrInvalidAdapterConfigs)
	}

	if strings.TrimSpace(cfg.Storage.DBPath) == "" {
		return fmt.Errorf("%w: db path is empty", ErrInvalidStorageConfigs)
	}

	if cfg.Workers.Threads < 1 {
		return fmt.Errorf("%w: threads must be at least 1, got %d", ErrInvalidWorkerConfigs, cfg.Workers.Threads)
	}
	if cfg.Workers.Retries < 0 || cfg.Workers.RetryBaseDelay < 0 {
		return fmt.Errorf("%w: retries and retry delay must not be negative", ErrInvalidWorkerConfigs)
	}

	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("%w: log level %q: %w", ErrInvalidAppConfigs, cfg.Logging.Level, err)
	}

	return nil
}
