package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds runtime settings for the authflow CLI.
//
// Fields:
//   - ServerBaseURL: root of the auth API, e.g. http://localhost:8080/api.
//   - RequestTimeout: per-attempt HTTP timeout.
//   - MaxRetries, InitialBackoff, Jitter: retry policy for transport failures.
//   - RequestsPerSecond: client-side pacing; 0 disables it.
//   - PingInterval: period of the connectivity probe; 0 disables it.
//   - StorePath, StoreKeyFile, StorePassphrase: the local credential store.
//   - LogFormat, LogLevel: see logging.New.
type Config struct {
	ServerBaseURL     string        `env:"SERVER_BASE_URL"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT"`
	MaxRetries        int           `env:"MAX_RETRIES"`
	InitialBackoff    time.Duration `env:"INITIAL_BACKOFF"`
	Jitter            time.Duration `env:"JITTER"`
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND"`
	PingInterval      time.Duration `env:"PING_INTERVAL"`
	StorePath         string        `env:"STORE_PATH"`
	StoreKeyFile      string        `env:"STORE_KEY_FILE"`
	StorePassphrase   string        `env:"STORE_PASSPHRASE"`
	LogFormat         string        `env:"LOG_FORMAT"`
	LogLevel          string        `env:"LOG_LEVEL"`
}

// MaxRetriesLimit is the largest accepted MaxRetries.
const MaxRetriesLimit = 10

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8080/api"
	c.RequestTimeout = 30 * time.Second
	c.MaxRetries = 3
	c.InitialBackoff = 500 * time.Millisecond
	c.Jitter = 250 * time.Millisecond
	c.RequestsPerSecond = 0
	c.PingInterval = time.Minute
	c.StorePath = "authflow.db"
	c.StoreKeyFile = "authflow.key"
	c.StorePassphrase = ""
	c.LogFormat = "text"
	c.LogLevel = "info"
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server base url %q", c.ServerBaseURL)
	}
	switch {
	case c.RequestTimeout <= 0:
		return errors.New("request timeout must be positive")
	case c.MaxRetries < 0 || c.MaxRetries > MaxRetriesLimit:
		return fmt.Errorf("max retries must be between 0 and %d", MaxRetriesLimit)
	case c.InitialBackoff < 0 || c.Jitter < 0:
		return errors.New("backoff and jitter must not be negative")
	case c.RequestsPerSecond < 0:
		return errors.New("requests per second must not be negative")
	case c.PingInterval < 0:
		return errors.New("ping interval must not be negative")
	case c.StorePath == "":
		return errors.New("store path is required")
	case c.StoreKeyFile == "":
		return errors.New("store key file is required")
	}
	return nil
}

// LoadConfig constructs a Config from os.Args and the environment. See Load.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load applies defaults, then overlays the JSON file, the dotenv file and
// environment, and finally the command-line flags found in args. Later
// sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
