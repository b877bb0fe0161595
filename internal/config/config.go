package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, loaded from environment variables.
type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	DBPath   string `env:"DB_PATH" envDefault:"flipsettle.db"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// SeedPath is the snapshot imported on first start when the database
	// is empty. Empty disables seeding.
	SeedPath string `env:"SEED_PATH" envDefault:"testdata/projects.json"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
