package tasks

import "github.com/bububa/atomic-assistant/tools/google"

type Option func(*Config)

// WithServiceOptions configures the underlying google service
func WithServiceOptions(opts ...google.Option) Option {
	return func(c *Config) {
		c.serviceOpts = append(c.serviceOpts, opts...)
	}
}
