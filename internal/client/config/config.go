package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// DefaultAPIBaseURL is the API origin used when nothing else is configured.
// Release builds set it with
//
//	-ldflags "-X github.com/nailstudio/agenda/internal/client/config.DefaultAPIBaseURL=https://api.example.com/api"
var DefaultAPIBaseURL = "http://localhost:5000/api"

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds runtime settings for the agenda terminal client.
type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL, overwrite"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, overwrite"`

	DBPath         string `env:"DB_PATH, overwrite"`
	SessionBackend string `env:"SESSION_BACKEND, overwrite"`
	RedisAddr      string `env:"REDIS_ADDR, overwrite"`
	RedisDB        int    `env:"REDIS_DB, overwrite"`
	RedisPrefix    string `env:"REDIS_PREFIX, overwrite"`

	LogLevel  string `env:"LOG_LEVEL, overwrite"`
	LogFormat string `env:"LOG_FORMAT, overwrite"`
	LogFile   string `env:"LOG_FILE, overwrite"`
}

// LoadDefaults populates c with sensible defaults. Local files live in the
// user's config directory.
func (c *Config) LoadDefaults() {
	dir := "."
	if base, err := os.UserConfigDir(); err == nil {
		dir = filepath.Join(base, "agenda")
	}

	c.APIBaseURL = DefaultAPIBaseURL
	c.RequestTimeout = 10 * time.Second
	c.DBPath = filepath.Join(dir, "agenda.db")
	c.SessionBackend = BackendSQLite
	c.RedisAddr = "localhost:6379"
	c.RedisDB = 0
	c.RedisPrefix = "agenda:"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LogFile = filepath.Join(dir, "agenda.log")
}

// Validate reports settings the client cannot start with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api base url %q must be an absolute http(s) URL", c.APIBaseURL)
	}
	switch c.SessionBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("db path is required for the %s backend", BackendSQLite)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the %s backend", BackendRedis)
		}
		if c.RedisPrefix == "" {
			return fmt.Errorf("redis prefix is required for the %s backend", BackendRedis)
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones. It panics on unreadable sources.
func LoadConfig() *Config {
	return load(os.Args[1:], os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg, lookup)
	parseFlags(cfg, args)
	return cfg
}
