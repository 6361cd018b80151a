package agents

import (
	"context"
	"log/slog"

	"github.com/bububa/atomic-assistant/components"
)

type Option func(a *Config)

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

func WithStartHook(fn func(context.Context, *Assistant, string, string)) Option {
	return func(c *Config) {
		c.startHook = fn
	}
}

func WithEndHook(fn func(context.Context, *Assistant, string, *components.Message, *components.LLMUsage)) Option {
	return func(c *Config) {
		c.endHook = fn
	}
}

func WithErrorHook(fn func(context.Context, *Assistant, string, error)) Option {
	return func(c *Config) {
		c.errorHook = fn
	}
}

// WithTransitionHook observes every state change of a turn
func WithTransitionHook(fn func(context.Context, *Assistant, State, State)) Option {
	return func(c *Config) {
		c.transitionHook = fn
	}
}
