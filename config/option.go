package config

type loadOptions struct {
	envFile     string
	envOptional bool
	lookup      func(string) (string, bool)
}

type Option func(*loadOptions)

// WithEnvFile reads variables from a .env file, a missing file is an error
func WithEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFile = path
		o.envOptional = false
	}
}

// WithOptionalEnvFile reads variables from a .env file when it exists
func WithOptionalEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFile = path
		o.envOptional = true
	}
}

// WithLookup replaces os.LookupEnv
func WithLookup(fn func(string) (string, bool)) Option {
	return func(o *loadOptions) {
		o.lookup = fn
	}
}
