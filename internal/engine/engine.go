// Package engine abstracts the hosted LLM providers behind a single
// completion capability.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrProvider wraps provider failures that survived the retry loop. The
// batch records these per post and continues.
var ErrProvider = errors.New("provider error")

const defaultMaxTokens = 1024

// Params are the sampling knobs for a single completion.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// Usage tracks token consumption.
type Usage struct {
	Input  int
	Output int
	Total  int
}

// Add accumulates another usage report.
func (u *Usage) Add(o Usage) {
	u.Input += o.Input
	u.Output += o.Output
	u.Total += o.Total
}

// Engine is the single capability every provider implements.
type Engine interface {
	Complete(ctx context.Context, prompt string, params Params) (string, Usage, error)
}

// Backoff controls the retry loop for transient provider errors. Delay is
// in seconds and grows by Rate after each failed attempt, up to Limit
// attempts total.
type Backoff struct {
	Delay float64 `yaml:"delay"`
	Rate  float64 `yaml:"rate"`
	Limit int     `yaml:"limit"`
}

// Config is the engine configuration document.
type Config struct {
	Type    string  `yaml:"type"`
	Model   string  `yaml:"model"`
	Backoff Backoff `yaml:"backoff"`
}

// LoadConfig reads and validates an engine configuration document.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read engine config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse engine config: %w", err)
	}

	if cfg.Type == "" {
		return nil, fmt.Errorf("engine config: missing type")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("engine config: missing model")
	}

	if cfg.Backoff.Delay <= 0 {
		cfg.Backoff.Delay = 2
	}
	if cfg.Backoff.Rate <= 0 {
		cfg.Backoff.Rate = 2
	}
	if cfg.Backoff.Limit <= 0 {
		cfg.Backoff.Limit = 5
	}

	return &cfg, nil
}

// New creates the engine selected by the configuration.
func New(cfg *Config, apiKey string) (Engine, error) {
	switch cfg.Type {
	case "anthropic":
		return NewAnthropic(cfg.Model, cfg.Backoff, apiKey), nil
	case "openai":
		return NewOpenAI(cfg.Model, cfg.Backoff, apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported engine type: %q", cfg.Type)
	}
}

// retry runs fn until it succeeds, a non-retryable error occurs, or the
// attempt limit is reached. Failures that escape the loop are wrapped in
// ErrProvider.
func retry(ctx context.Context, b Backoff, retryable func(error) bool, fn func() error) error {
	delay := time.Duration(b.Delay * float64(time.Second))

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !retryable(err) || attempt >= b.Limit {
			return fmt.Errorf("%w: %w", ErrProvider, err)
		}

		slog.Warn("provider request failed, backing off",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrProvider, ctx.Err())
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * b.Rate)
	}
}
