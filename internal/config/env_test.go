package config

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

type envTestConfig struct {
	Trials int `env:"VARS_TEST_TRIALS" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Trials != 123 {
		t.Fatalf("expected default trials 123, got %d", cfg.Trials)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("VARS_TEST_TRIALS", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Trials != 10000 || cfg.Engine != "expr" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Seed == 0 {
		t.Fatalf("expected a generated seed")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("VARS_SEED", "42")
	t.Setenv("VARS_TRIALS", "50")
	t.Setenv("VARS_ENGINE", " CEL ")
	t.Setenv("VARS_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 42 || cfg.Trials != 50 || cfg.Engine != "cel" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.Logger().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("expected debug logging enabled")
	}
	if _, err := cfg.Evaluator(); err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	if a, b := cfg.Source().Float64(), cfg.Source().Float64(); a != b {
		t.Fatalf("expected seeded sources to agree: %v != %v", a, b)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"VARS_TRIALS":    "0",
		"VARS_LOG_LEVEL": "loud",
		"VARS_SEED":      "-1",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}
