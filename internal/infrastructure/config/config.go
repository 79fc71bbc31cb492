package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Authority AuthorityConfig
	Host      HostConfig
	Redis     RedisConfig
}

type AuthorityConfig struct {
	BaseURL string        `env:"AUTHORITY_BASE_URL, default=http://localhost:9000"`
	Timeout time.Duration `env:"AUTHORITY_TIMEOUT,  default=10s"`
}

// HostConfig covers the host-supplied identity: a signed token carrying the
// numeric id and display name, and the admin identifier the display name is
// compared against.
type HostConfig struct {
	Token         string `env:"HOST_IDENTITY_TOKEN"`
	TokenSecret   string `env:"HOST_TOKEN_SECRET"`
	AdminUsername string `env:"ADMIN_USERNAME"`
}

// RedisConfig configures the placement guard. An empty Addr disables it.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Development reports whether the process runs in the development context.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
