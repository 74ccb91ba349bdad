package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GIGMATCH_CONFIG is set
//  3. env (prefix GIGMATCH_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GIGMATCH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GIGMATCH_LOG_LEVEL, GIGMATCH_SKILL_WEIGHT, ...
	// Keys map to the koanf tags on the struct, underscores preserved.
	envProvider := env.Provider("GIGMATCH_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "gigmatch_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.SkillWeight <= 0 || cfg.RatingWeight <= 0 || cfg.ReliabilityWeight <= 0 {
		return nil, fmt.Errorf("%w: score weights must be positive", ErrInvalidConfig)
	}
	if cfg.BurnoutPenalty < 0 {
		return nil, fmt.Errorf("%w: burnout penalty must not be negative", ErrInvalidConfig)
	}
	return &cfg, nil
}
