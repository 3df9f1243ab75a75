// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the statecraft server and CLI.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"STATECRAFT_ADDR" envDefault:":8080"`
	// ScenarioPath is the authored scenario loaded at startup.
	ScenarioPath string `env:"STATECRAFT_SCENARIO" envDefault:"scenarios/demo.yaml"`
	// DraftDB is the SQLite file used to checkpoint authoring drafts.
	// Empty disables draft persistence.
	DraftDB string `env:"STATECRAFT_DRAFT_DB" envDefault:"statecraft.db"`
	// TemplatesDir holds the HTML templates.
	TemplatesDir string `env:"STATECRAFT_TEMPLATES" envDefault:"templates"`
	// JudgeThreshold overrides the keyword judge's passing score.
	JudgeThreshold float64 `env:"STATECRAFT_JUDGE_THRESHOLD" envDefault:"0"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
