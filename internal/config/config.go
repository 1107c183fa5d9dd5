package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	RedisURL  string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	FlipSigningKey string `env:"FLIP_SIGNING_KEY" envDefault:"dev-flip-key-change-me"`

	LedgerURL     string        `env:"LEDGER_URL" envDefault:"http://localhost:9090"`
	LedgerTimeout time.Duration `env:"LEDGER_TIMEOUT" envDefault:"10s"`

	// Reconciliation sweep timings.
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	DepositMaxAge   time.Duration `env:"DEPOSIT_MAX_AGE" envDefault:"10m"`
	DepositCooldown time.Duration `env:"DEPOSIT_COOLDOWN" envDefault:"2m"`
	DepositGrace    time.Duration `env:"DEPOSIT_GRACE" envDefault:"5m"`

	// Per-round deadlines for human input.
	ChoiceTimeout time.Duration `env:"CHOICE_TIMEOUT" envDefault:"30s"`
	PowerTimeout  time.Duration `env:"POWER_TIMEOUT" envDefault:"20s"`
	FlipTimeout   time.Duration `env:"FLIP_TIMEOUT" envDefault:"30s"`

	// Cadence of the live power-charge broadcast.
	PowerTick time.Duration `env:"POWER_TICK" envDefault:"50ms"`

	// How long a COMPLETED room stays in the store before removal.
	CompletedRetention time.Duration `env:"COMPLETED_RETENTION" envDefault:"10m"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
