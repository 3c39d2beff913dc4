package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with snake_case keys and
// human readable durations ("30s", "2m").
type StructuredJSONConfig struct {
	Library struct {
		Path              string `json:"path"`
		CompatibilityMode bool   `json:"compatibility_mode"`
		OmitPublisher     bool   `json:"omit_publisher"`
		ValidateChecksums bool   `json:"validate"`
		DryRun            bool   `json:"dry_run"`
	} `json:"library,omitempty"`

	Catalog struct {
		URL             string   `json:"url"`
		Token           string   `json:"token"`
		RequestTimeout  Duration `json:"request_timeout"`
		DownloadTimeout Duration `json:"download_timeout"`
		RateLimit       float64  `json:"rate_limit"`
		RateBurst       int      `json:"rate_burst"`
		PageSize        int      `json:"page_size"`
		PrepareAttempts int      `json:"prepare_attempts"`
		PollInterval    Duration `json:"poll_interval"`
	} `json:"catalog,omitempty"`

	Storage struct {
		DBPath string `json:"db_path"`
	} `json:"storage,omitempty"`

	Workers struct {
		Threads        int      `json:"threads"`
		Retries        int      `json:"retries"`
		RetryBaseDelay Duration `json:"retry_base_delay"`
	} `json:"workers,omitempty"`

	Logging struct {
		Level      string `json:"level"`
		File       string `json:"file"`
		MaxSizeMB  int    `json:"max_size_mb"`
		MaxBackups int    `json:"max_backups"`
	} `json:"logging,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	decoder := json.NewDecoder(jsonFile)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Library: Library{
			Path:              jsonCfg.Library.Path,
			CompatibilityMode: jsonCfg.Library.CompatibilityMode,
			OmitPublisher:     jsonCfg.Library.OmitPublisher,
			ValidateChecksums: jsonCfg.Library.ValidateChecksums,
			DryRun:            jsonCfg.Library.DryRun,
		},
		Catalog: Catalog{
			URL:             jsonCfg.Catalog.URL,
			Token:           jsonCfg.Catalog.Token,
			RequestTimeout:  time.Duration(jsonCfg.Catalog.RequestTimeout),
			DownloadTimeout: time.Duration(jsonCfg.Catalog.DownloadTimeout),
			RateLimit:       jsonCfg.Catalog.RateLimit,
			RateBurst:       jsonCfg.Catalog.RateBurst,
			PageSize:        jsonCfg.Catalog.PageSize,
			PrepareAttempts: jsonCfg.Catalog.PrepareAttempts,
			PollInterval:    time.Duration(jsonCfg.Catalog.PollInterval),
		},
		Storage: Storage{
			DBPath: jsonCfg.Storage.DBPath,
		},
		Workers: Workers{
			Threads:        jsonCfg.Workers.Threads,
			Retries:        jsonCfg.Workers.Retries,
			RetryBaseDelay: time.Duration(jsonCfg.Workers.RetryBaseDelay),
		},
		Logging: Logging{
			Level:      jsonCfg.Logging.Level,
			File:       jsonCfg.Logging.File,
			MaxSizeMB:  jsonCfg.Logging.MaxSizeMB,
			MaxBackups: jsonCfg.Logging.MaxBackups,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
