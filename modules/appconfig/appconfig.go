package appconfig

import (
	"errors"

	"gate/modules/db/redis"
	"gate/modules/hmac"
	"gate/modules/ratelimit"
	"gate/modules/telemetry"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env string `env:"ENV" envDefault:"dev"`

	Server ServerConfig `envPrefix:"SERVER_"`

	// --- core infra ----
	Redis   redis.RedisConfig    `envPrefix:"REDIS_"`
	KeyHash hmac.KeyHasherConfig `envPrefix:"KEY_HASH_"`

	// --- rate limit presets ----
	RateLimit ratelimit.PresetsConfig `envPrefix:"RATE_LIMIT_"`

	// --- otel ----
	// OTEL has its own naming conventions, so no prefix here.
	Otel telemetry.Config
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(c *Config) error {
	if c.Redis.Enabled && c.Redis.URL == "" {
		return errors.New("appconfig: REDIS_ENABLED requires REDIS_URL")
	}
	return nil
}
