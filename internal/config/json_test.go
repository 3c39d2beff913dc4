package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_AllFields(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"library": map[string]any{
			"path": "/lib", "compatibility_mode": true, "omit_publisher": true,
			"validate": true, "dry_run": true,
		},
		"catalog": map[string]any{
			"url": "http://api/", "token": "t", "request_timeout": "3s",
			"download_timeout": "4m", "rate_limit": 1.5, "rate_burst": 2,
			"page_size": 10, "prepare_attempts": 5, "poll_interval": "250ms",
		},
		"storage": map[string]any{"db_path": "/db"},
		"workers": map[string]any{"threads": 2, "retries": 1, "retry_base_delay": "1s"},
		"logging": map[string]any{"level": "error", "file": "/log", "max_size_mb": 1, "max_backups": 2},
	})

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, Library{Path: "/lib", CompatibilityMode: true, OmitPublisher: true, ValidateChecksums: true, DryRun: true}, cfg.Library)
	assert.Equal(t, Catalog{
		URL: "http://api/", Token: "t", RequestTimeout: 3 * time.Second,
		DownloadTimeout: 4 * time.Minute, RateLimit: 1.5, RateBurst: 2,
		PageSize: 10, PrepareAttempts: 5, PollInterval: 250 * time.Millisecond,
	}, cfg.Catalog)
	assert.Equal(t, Storage{DBPath: "/db"}, cfg.Storage)
	assert.Equal(t, Workers{Threads: 2, Retries: 1, RetryBaseDelay: time.Second}, cfg.Workers)
	assert.Equal(t, Logging{Level: "error", File: "/log", MaxSizeMB: 1, MaxBackups: 2}, cfg.Logging)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_UnknownField(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{"librray": map[string]any{"path": "/typo"}})

	_, err := parseJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestParseJSON_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := parseJSON(path)
	assert.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"string", `"90s"`, 90 * time.Second, false},
		{"nanoseconds", `1000000000`, time.Second, false},
		{"bad string", `"soon"`, 0, true},
		{"bool", `true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Duration(2 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"2m0s"`, string(data))
}
