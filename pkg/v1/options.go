package v1

import (
	"context"

	"github.com/charmbracelet/log"
)

// Option configures a Client.
type Option func(*clientConfig)

// GenerateFunc produces an answer for a fully rendered prompt.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

type clientConfig struct {
	scope    string
	provider string
	logger   *log.Logger
	generate GenerateFunc
}

// WithScope forces a specific scope (global or project).
func WithScope(scope string) Option {
	return func(c *clientConfig) {
		c.scope = scope
	}
}

// WithProvider selects the configured provider used by Ask.
func WithProvider(name string) Option {
	return func(c *clientConfig) {
		c.provider = name
	}
}

// WithLogger sets the logger for indexing and pipeline events.
func WithLogger(logger *log.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithGenerator replaces the provider backed generator.
func WithGenerator(fn GenerateFunc) Option {
	return func(c *clientConfig) {
		c.generate = fn
	}
}
