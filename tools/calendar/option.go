package calendar

import (
	"time"

	"github.com/bububa/atomic-assistant/tools/google"
)

type Option func(*Config)

// WithLocation sets the time zone events are scheduled in
func WithLocation(loc *time.Location) Option {
	return func(c *Config) {
		c.location = loc
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.now = now
	}
}

// WithServiceOptions configures the underlying google service
func WithServiceOptions(opts ...google.Option) Option {
	return func(c *Config) {
		c.serviceOpts = append(c.serviceOpts, opts...)
	}
}
