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
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if FLEXFLOW_CONFIG is set
//  3. env (prefix FLEXFLOW_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("FLEXFLOW_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: FLEXFLOW_ADDR, FLEXFLOW_SMOOTHING_WINDOW, ...
	// Map env keys like FLEXFLOW_SMOOTHING_WINDOW -> smoothing_window
	// (flat keys). Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FLEXFLOW_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "flexflow_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the pipeline cannot run with.
func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.SmoothingWindow < 1:
		return fmt.Errorf("%w: smoothing_window must be at least 1", ErrInvalidConfig)
	case cfg.IdlePollMS < 1:
		return fmt.Errorf("%w: idle_poll_ms must be positive", ErrInvalidConfig)
	case cfg.PublishIntervalMS < 1:
		return fmt.Errorf("%w: publish_interval_ms must be positive", ErrInvalidConfig)
	case cfg.SyntheticFPS < 1:
		return fmt.Errorf("%w: synthetic_fps must be positive", ErrInvalidConfig)
	case cfg.FrameMaxWidth < 0:
		return fmt.Errorf("%w: frame_max_width must not be negative", ErrInvalidConfig)
	case cfg.TokenTTL <= 0:
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	case cfg.MaxSearchLimit < 1:
		return fmt.Errorf("%w: max_search_limit must be at least 1", ErrInvalidConfig)
	}
	return nil
}
