// Package config loads the settings shared by the example programs from the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	vars "github.com/goliatone/go-variables"
)

// Config holds example settings.
type Config struct {
	// Seed fixes the sampling source; 0 draws a seed from crypto/rand.
	Seed     uint64 `env:"VARS_SEED" envDefault:"0"`
	Trials   int    `env:"VARS_TRIALS" envDefault:"10000"`
	Engine   string `env:"VARS_ENGINE" envDefault:"expr"`
	LogLevel string `env:"VARS_LOG_LEVEL" envDefault:"info"`
	ActorID  string `env:"VARS_ACTOR_ID"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Trials < 1 {
		return Config{}, fmt.Errorf("config: VARS_TRIALS must be positive, got %d", cfg.Trials)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	cfg.Engine = strings.ToLower(strings.TrimSpace(cfg.Engine))
	if cfg.Seed == 0 {
		seed, err := vars.NewSeed()
		if err != nil {
			return Config{}, err
		}
		cfg.Seed = seed
	}
	return cfg, nil
}

// Source returns a deterministic source for the configured seed.
func (c Config) Source() vars.Source {
	return vars.NewSeededSource(c.Seed)
}

// Evaluator builds the configured rule engine with the boolean helpers.
func (c Config) Evaluator() (vars.Evaluator, error) {
	return vars.NewEvaluator(c.Engine, vars.NewMemoryProgramCache(), vars.BooleanFunctions())
}

// Logger returns a text slog.Logger on stderr at the configured level.
func (c Config) Logger() *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return 0, fmt.Errorf("config: VARS_LOG_LEVEL: %w", err)
	}
	return level, nil
}
