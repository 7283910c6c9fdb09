// Package config содержит логику чтения конфигурации сервиса учёта абонементов.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress         = "localhost:8080"
	defaultPlanCacheTTL       = time.Hour
	defaultSweepInterval      = time.Hour
	defaultUpcomingExpiryDays = 7
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress         string        `env:"RUN_ADDRESS"`
	DatabaseURI        string        `env:"DATABASE_URI"`
	RedisAddress       string        `env:"REDIS_ADDRESS"`
	PlanCacheTTL       time.Duration `env:"PLAN_CACHE_TTL"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL"`
	UpcomingExpiryDays int           `env:"UPCOMING_EXPIRY_DAYS"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Значения из окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fromEnv := *cfg

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.RedisAddress, "r", "", "redis address for plan cache")
	flag.DurationVar(&cfg.PlanCacheTTL, "t", defaultPlanCacheTTL, "plan cache TTL")
	flag.DurationVar(&cfg.SweepInterval, "s", defaultSweepInterval, "membership status sweep interval")
	flag.IntVar(&cfg.UpcomingExpiryDays, "u", defaultUpcomingExpiryDays, "days before end date to flag upcoming expiry")

	flag.Parse()

	if fromEnv.RunAddress != "" {
		cfg.RunAddress = fromEnv.RunAddress
	}
	if fromEnv.DatabaseURI != "" {
		cfg.DatabaseURI = fromEnv.DatabaseURI
	}
	if fromEnv.RedisAddress != "" {
		cfg.RedisAddress = fromEnv.RedisAddress
	}
	if fromEnv.PlanCacheTTL != 0 {
		cfg.PlanCacheTTL = fromEnv.PlanCacheTTL
	}
	if fromEnv.SweepInterval != 0 {
		cfg.SweepInterval = fromEnv.SweepInterval
	}
	if fromEnv.UpcomingExpiryDays != 0 {
		cfg.UpcomingExpiryDays = fromEnv.UpcomingExpiryDays
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", cfg.SweepInterval)
	}
	if cfg.UpcomingExpiryDays < 0 {
		return nil, fmt.Errorf("upcoming expiry days must not be negative, got %d", cfg.UpcomingExpiryDays)
	}

	return cfg, nil
}
