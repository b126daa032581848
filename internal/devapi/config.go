package devapi

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Addr      string        `env:"DEVAPI_ADDR,       default=:5000"`
	JWTSecret string        `env:"DEVAPI_JWT_SECRET, default=dev-secret"`
	TokenTTL  time.Duration `env:"DEVAPI_TOKEN_TTL,  default=24h"`
	LogLevel  string        `env:"DEVAPI_LOG_LEVEL,  default=info"`
	LogPretty bool          `env:"DEVAPI_LOG_PRETTY, default=true"`

	// DBPath is the SQLite file; empty keeps the data in memory.
	DBPath string `env:"DEVAPI_DB_PATH, default=devapi.db"`

	// BcryptCost is lowered in tests to keep them fast.
	BcryptCost int `env:"DEVAPI_BCRYPT_COST, default=10"`

	Admin AdminConfig
}

// AdminConfig is the account seeded at startup; operators are registered
// through it.
type AdminConfig struct {
	Username string `env:"DEVAPI_ADMIN_USERNAME, default=admin"`
	Password string `env:"DEVAPI_ADMIN_PASSWORD, default=admin123"`
	Name     string `env:"DEVAPI_ADMIN_NAME,     default=Studio"`
	Surname  string `env:"DEVAPI_ADMIN_SURNAME,  default=Admin"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("DEVAPI_JWT_SECRET must not be empty")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("DEVAPI_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &cfg, nil
}
