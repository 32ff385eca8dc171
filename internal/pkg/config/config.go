package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development" validate:"oneof=development staging production test"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// PreserveDestination appends ?next=<path> to login redirects.
	PreserveDestination bool `env:"PRESERVE_DESTINATION, default=false"`

	API     APIConfig
	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	DevAPI  DevAPIConfig
}

type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:3000/api" validate:"required,url"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=10s" validate:"gt=0"`
}

type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND, default=file" validate:"oneof=file memory redis mongo"`
	Path    string `env:"STORAGE_PATH,    default=.portal/session.json"`
	// Secret enables sealed slot values when set.
	Secret string `env:"STORAGE_SECRET"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=rental_portal"`
}

type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR,       default=localhost:6379"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB,         default=0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX, default=portal:session:"`
}

type DevAPIConfig struct {
	Port      string        `env:"DEVAPI_PORT,       default=3000"`
	JWTSecret string        `env:"DEVAPI_JWT_SECRET, default=dev-only-secret"`
	TokenTTL  time.Duration `env:"DEVAPI_TOKEN_TTL,  default=24h"`
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Storage.Backend == "file" && cfg.Storage.Path == "" {
		return nil, fmt.Errorf("invalid configuration: STORAGE_PATH is required for the file backend")
	}
	return &cfg, nil
}
