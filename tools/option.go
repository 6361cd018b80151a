package tools

import "context"

type Option func(c *Config)

func WithName(name string) Option {
	return func(c *Config) {
		c.SetName(name)
	}
}

func WithDescription(desc string) Option {
	return func(c *Config) {
		c.SetDescription(desc)
	}
}

func WithStartHook(fn func(context.Context, Tool, any)) Option {
	return func(c *Config) {
		c.SetStartHook(fn)
	}
}

func WithEndHook(fn func(context.Context, Tool, any, any)) Option {
	return func(c *Config) {
		c.SetEndHook(fn)
	}
}

func WithErrorHook(fn func(context.Context, Tool, any, error)) Option {
	return func(c *Config) {
		c.SetErrorHook(fn)
	}
}

// Apply applies options to the tool config
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
