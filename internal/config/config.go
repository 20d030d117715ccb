package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains runtime configuration required by the service.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogFile  string `env:"LOG_FILE"`

	// DBURL enables the Postgres audit trail when set.
	DBURL string `env:"DB_URL"`
	// RedisURL enables the Redis status mirror when set.
	RedisURL string `env:"REDIS_URL"`
	EventBus bool   `env:"EVENT_BUS" envDefault:"true"`

	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"10m"`

	APIKeysRaw string            `env:"API_KEYS"`
	APIKeys    map[string]string `env:"-"` // apiKey -> client
}

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads an optional .env file and then the process environment.
// API_KEYS format: "client1:key1,client2:key2"
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	apiKeys, err := ParseAPIKeys(cfg.APIKeysRaw)
	if err != nil {
		return Config{}, err
	}

	// Local dev fallback so the service runs out-of-the-box.
	if len(apiKeys) == 0 {
		apiKeys["dev-key-123"] = "local"
	}
	cfg.APIKeys = apiKeys

	return cfg, nil
}

// ParseAPIKeys parses "client:key,client:key" into a key -> client map.
func ParseAPIKeys(raw string) (map[string]string, error) {
	apiKeys := map[string]string{}

	for _, p := range strings.Split(strings.TrimSpace(raw), ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New(`API_KEYS must be "client:key,client:key"`)
		}
		client := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if client == "" || key == "" {
			return nil, errors.New(`API_KEYS must be "client:key,client:key"`)
		}
		apiKeys[key] = client
	}

	return apiKeys, nil
}
