// Package config loads server settings from the environment and an optional
// .env file. Command-line flags in cmd/lostfound override these values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds all server settings.
type Config struct {
	DBPath  string `env:"LOSTFOUND_DB,default=lostfound.sqlite3"`
	Addr    string `env:"LOSTFOUND_ADDR,default=:5000"`
	BaseURL string `env:"LOSTFOUND_BASE_URL,default=http://localhost:3000"`

	LogLevel  string `env:"LOSTFOUND_LOG_LEVEL,default=info"`
	LogFormat string `env:"LOSTFOUND_LOG_FORMAT,default=text"`
	LogFile   string `env:"LOSTFOUND_LOG_FILE"`

	Storage     string `env:"LOSTFOUND_STORAGE,default=local"`
	DataDir     string `env:"LOSTFOUND_DATA_DIR,default=data"`
	S3Bucket    string `env:"LOSTFOUND_S3_BUCKET"`
	S3Region    string `env:"LOSTFOUND_S3_REGION,default=us-east-1"`
	S3Endpoint  string `env:"LOSTFOUND_S3_ENDPOINT"`
	S3AccessKey string `env:"LOSTFOUND_S3_ACCESS_KEY"`
	S3SecretKey string `env:"LOSTFOUND_S3_SECRET_KEY"`

	// Comma-separated browser origins allowed to call the API.
	AllowedOrigins string `env:"LOSTFOUND_ALLOWED_ORIGINS,default=http://localhost:3000"`

	CacheSize       int           `env:"LOSTFOUND_CACHE_SIZE,default=1024"`
	CacheTTL        time.Duration `env:"LOSTFOUND_CACHE_TTL,default=5m"`
	ShutdownTimeout time.Duration `env:"LOSTFOUND_SHUTDOWN_TIMEOUT,default=5s"`
}

// Load reads envFile (if it exists) into the environment without overriding
// variables that are already set, then decodes and validates the config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values and combinations.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q (want text or json)", c.LogFormat)
	}

	switch c.Storage {
	case StorageLocal:
		if c.DataDir == "" {
			return errors.New("data directory is required for local storage")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return errors.New("LOSTFOUND_S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("invalid storage backend %q (want local or s3)", c.Storage)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}

	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache size %d", c.CacheSize)
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// Origins returns the browser origins allowed to call the API and open the
// live update socket.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
