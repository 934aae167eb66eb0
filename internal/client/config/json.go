package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/authflow/internal/flagx"
	"github.com/dmitrijs2005/authflow/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell an absent key from a zero value; durations accept "500ms" or
// integer nanoseconds. The store passphrase is deliberately not accepted
// from files.
type JSONConfig struct {
	ServerBaseURL     *string         `json:"server_base_url"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	MaxRetries        *int            `json:"max_retries"`
	InitialBackoff    *timex.Duration `json:"initial_backoff"`
	Jitter            *timex.Duration `json:"jitter"`
	RequestsPerSecond *float64        `json:"requests_per_second"`
	PingInterval      *timex.Duration `json:"ping_interval"`
	StorePath         *string         `json:"store_path"`
	StoreKeyFile      *string         `json:"store_key_file"`
	LogFormat         *string         `json:"log_format"`
	LogLevel          *string         `json:"log_level"`
}

// parseJSON overlays cfg with the JSON file named by -c or -config. Without
// the flag nothing is loaded.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIf(&cfg.ServerBaseURL, jc.ServerBaseURL)
	setIf(&cfg.MaxRetries, jc.MaxRetries)
	setIf(&cfg.RequestsPerSecond, jc.RequestsPerSecond)
	setIf(&cfg.StorePath, jc.StorePath)
	setIf(&cfg.StoreKeyFile, jc.StoreKeyFile)
	setIf(&cfg.LogFormat, jc.LogFormat)
	setIf(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.InitialBackoff != nil {
		cfg.InitialBackoff = jc.InitialBackoff.Duration
	}
	if jc.Jitter != nil {
		cfg.Jitter = jc.Jitter.Duration
	}
	if jc.PingInterval != nil {
		cfg.PingInterval = jc.PingInterval.Duration
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
