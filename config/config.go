// Package config loads the assistant configuration.
//
// Values are layered, later sources win: defaults, an optional YAML file, an optional
// .env file and the process environment. The .env file is read into memory only, the
// process environment is never modified.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	DefaultTimeZone = "America/Los_Angeles"
)

// Config is the complete assistant configuration
type Config struct {
	// Provider selects the model adapter
	Provider string `yaml:"provider" validate:"oneof=anthropic openai"`
	// Model overrides the provider default model
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key" validate:"required"`
	BaseURL string `yaml:"base_url" validate:"omitempty,http_url"`
	// Temperature is the sampling temperature
	Temperature     float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens       int     `yaml:"max_tokens" validate:"gte=1"`
	MaxEmptyRetries int     `yaml:"max_empty_retries" validate:"gte=0,lte=10"`
	// ParallelTools bounds concurrent tool calls of one round, 1 runs them in order
	ParallelTools int `yaml:"parallel_tools" validate:"gte=1"`
	// TimeZone is the IANA zone events are scheduled in
	TimeZone string `yaml:"time_zone" validate:"required,timezone"`
	Search   Search `yaml:"search"`
	Google   Google `yaml:"google"`
	Store    Store  `yaml:"store"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Search configures the web_search tool, it is disabled without BaseURL
type Search struct {
	BaseURL    string `yaml:"base_url" validate:"omitempty,http_url"`
	MaxResults int    `yaml:"max_results" validate:"gte=1,lte=50"`
	Language   string `yaml:"language"`
}

// Google configures credentials of the calendar and tasks tools
type Google struct {
	// ClientSecretsFile is the OAuth client of the installed app flow
	ClientSecretsFile string `yaml:"client_secrets_file"`
	// ServiceAccountFile replaces the interactive flow when set
	ServiceAccountFile    string `yaml:"service_account_file"`
	ServiceAccountSubject string `yaml:"service_account_subject" validate:"omitempty,email"`
	CalendarTokenFile     string `yaml:"calendar_token_file" validate:"required"`
	TasksTokenFile        string `yaml:"tasks_token_file" validate:"required"`
}

// Store selects the conversation store
type Store struct {
	Driver string `yaml:"driver" validate:"oneof=memory sqlite"`
	DSN    string `yaml:"dsn" validate:"required_if=Driver sqlite"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Provider:        ProviderAnthropic,
		MaxTokens:       1024,
		MaxEmptyRetries: 2,
		ParallelTools:   1,
		TimeZone:        DefaultTimeZone,
		Search: Search{
			MaxResults: 5,
			Language:   "en",
		},
		Google: Google{
			ClientSecretsFile: "credentials.json",
			CalendarTokenFile: "token_calendar.json",
			TasksTokenFile:    "token_tasks.json",
		},
		Store: Store{
			Driver: "memory",
		},
		LogLevel: "info",
	}
}

// Load builds the configuration. An empty path skips the YAML file.
func Load(path string, opts ...Option) (*Config, error) {
	o := &loadOptions{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(o)
	}
	cfg := Default()
	if path != "" {
		bs, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(bs, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	lookup := o.lookup
	if o.envFile != "" {
		dotenv, err := godotenv.Read(o.envFile)
		if err != nil && !(errors.Is(err, os.ErrNotExist) && o.envOptional) {
			return nil, fmt.Errorf("read env file: %w", err)
		}
		lookup = layered(o.lookup, dotenv)
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// layered looks a key up in env first, then in fallback
func layered(env func(string) (string, bool), fallback map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := env(key); ok {
			return v, true
		}
		v, ok := fallback[key]
		return v, ok
	}
}

type binding struct {
	keys []string
	set  func(c *Config, v string) error
}

func stringVar(fn func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*fn(c) = v
		return nil
	}
}

func intVar(fn func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*fn(c) = n
		return nil
	}
}

func (c *Config) bindings() []binding {
	apiKeys := []string{"ASSISTANT_API_KEY", "ANTHROPIC_API_KEY"}
	baseURLs := []string{"ASSISTANT_API_BASE_URL", "ANTHROPIC_API_BASE_URL"}
	if c.Provider == ProviderOpenAI {
		apiKeys[1], baseURLs[1] = "OPENAI_API_KEY", "OPENAI_API_BASE_URL"
	}
	return []binding{
		{keys: []string{"ASSISTANT_MODEL"}, set: stringVar(func(c *Config) *string { return &c.Model })},
		{keys: apiKeys, set: stringVar(func(c *Config) *string { return &c.APIKey })},
		{keys: baseURLs, set: stringVar(func(c *Config) *string { return &c.BaseURL })},
		{keys: []string{"ASSISTANT_TEMPERATURE"}, set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return err
			}
			c.Temperature = float32(f)
			return nil
		}},
		{keys: []string{"ASSISTANT_MAX_TOKENS"}, set: intVar(func(c *Config) *int { return &c.MaxTokens })},
		{keys: []string{"ASSISTANT_MAX_EMPTY_RETRIES"}, set: intVar(func(c *Config) *int { return &c.MaxEmptyRetries })},
		{keys: []string{"ASSISTANT_PARALLEL_TOOLS"}, set: intVar(func(c *Config) *int { return &c.ParallelTools })},
		{keys: []string{"ASSISTANT_TIME_ZONE", "TZ"}, set: stringVar(func(c *Config) *string { return &c.TimeZone })},
		{keys: []string{"SEARXNG_BASE_URL"}, set: stringVar(func(c *Config) *string { return &c.Search.BaseURL })},
		{keys: []string{"ASSISTANT_SEARCH_MAX_RESULTS"}, set: intVar(func(c *Config) *int { return &c.Search.MaxResults })},
		{keys: []string{"ASSISTANT_SEARCH_LANGUAGE"}, set: stringVar(func(c *Config) *string { return &c.Search.Language })},
		{keys: []string{"GOOGLE_CLIENT_SECRETS"}, set: stringVar(func(c *Config) *string { return &c.Google.ClientSecretsFile })},
		{keys: []string{"GOOGLE_APPLICATION_CREDENTIALS"}, set: stringVar(func(c *Config) *string { return &c.Google.ServiceAccountFile })},
		{keys: []string{"GOOGLE_SERVICE_ACCOUNT_SUBJECT"}, set: stringVar(func(c *Config) *string { return &c.Google.ServiceAccountSubject })},
		{keys: []string{"GOOGLE_CALENDAR_TOKEN_FILE"}, set: stringVar(func(c *Config) *string { return &c.Google.CalendarTokenFile })},
		{keys: []string{"GOOGLE_TASKS_TOKEN_FILE"}, set: stringVar(func(c *Config) *string { return &c.Google.TasksTokenFile })},
		{keys: []string{"ASSISTANT_STORE_DRIVER"}, set: stringVar(func(c *Config) *string { return &c.Store.Driver })},
		{keys: []string{"ASSISTANT_STORE_DSN"}, set: stringVar(func(c *Config) *string { return &c.Store.DSN })},
		{keys: []string{"ASSISTANT_LOG_LEVEL"}, set: stringVar(func(c *Config) *string { return &c.LogLevel })},
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	// provider decides which vendor variables apply
	if v, ok := lookup("ASSISTANT_PROVIDER"); ok && v != "" {
		c.Provider = strings.ToLower(v)
	}
	for _, b := range c.bindings() {
		for _, key := range b.keys {
			v, ok := lookup(key)
			if !ok || v == "" {
				continue
			}
			if err := b.set(c, v); err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			break
		}
	}
	return nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location is the time zone events are scheduled in
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.LoadLocation(DefaultTimeZone)
	}
	return time.LoadLocation(c.TimeZone)
}
