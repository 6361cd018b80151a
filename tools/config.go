package tools

import "context"

// Config class for tools within the assistant
type Config struct {
	// name is the identifier the model uses to call the tool
	name string
	// description tells the model what the tool does
	description string
	startHook   func(context.Context, Tool, any)
	endHook     func(context.Context, Tool, any, any)
	errorHook   func(context.Context, Tool, any, error)
}

func (c *Config) SetName(v string) {
	c.name = v
}

func (c Config) Name() string {
	return c.name
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}

func (c *Config) SetStartHook(fn func(context.Context, Tool, any)) {
	c.startHook = fn
}

func (c *Config) SetEndHook(fn func(context.Context, Tool, any, any)) {
	c.endHook = fn
}

func (c *Config) SetErrorHook(fn func(context.Context, Tool, any, error)) {
	c.errorHook = fn
}

func (c Config) onStart(ctx context.Context, t Tool, input any) {
	if fn := c.startHook; fn != nil {
		fn(ctx, t, input)
	}
}

func (c Config) onEnd(ctx context.Context, t Tool, input any, output any) {
	if fn := c.endHook; fn != nil {
		fn(ctx, t, input, output)
	}
}

func (c Config) onError(ctx context.Context, t Tool, input any, err error) {
	if fn := c.errorHook; fn != nil {
		fn(ctx, t, input, err)
	}
}
