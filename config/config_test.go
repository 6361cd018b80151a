package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func envMap(m map[string]string) Option {
	return WithLookup(func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	})
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", envMap(map[string]string{"ANTHROPIC_API_KEY": "sk-test"}))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Provider != ProviderAnthropic || cfg.APIKey != "sk-test" {
		t.Errorf("unexpected provider %s key %s", cfg.Provider, cfg.APIKey)
	}
	if cfg.Google.ClientSecretsFile != "credentials.json" || cfg.Google.CalendarTokenFile != "token_calendar.json" || cfg.Google.TasksTokenFile != "token_tasks.json" {
		t.Errorf("unexpected google defaults %+v", cfg.Google)
	}
	if cfg.Store.Driver != "memory" || cfg.MaxEmptyRetries != 2 || cfg.ParallelTools != 1 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Skipf("time zone database unavailable: %v", err)
	}
	if loc.String() != DefaultTimeZone {
		t.Errorf("expect %s, but got %s", DefaultTimeZone, loc)
	}
}

func TestLoadPrecedence(t *testing.T) {
	yml := writeFile(t, "assistant.yaml", `
provider: openai
model: gpt-4o
api_key: from-yaml
max_tokens: 2048
search:
  base_url: http://localhost:8080
  max_results: 8
store:
  driver: sqlite
  dsn: /tmp/a.db
`)
	dotenv := writeFile(t, ".env", "OPENAI_API_KEY=from-dotenv\nASSISTANT_MAX_TOKENS=512\nASSISTANT_LOG_LEVEL=debug\n")
	cfg, err := Load(yml, WithEnvFile(dotenv), envMap(map[string]string{
		"ASSISTANT_MAX_TOKENS": "4096",
		"ANTHROPIC_API_KEY":    "ignored",
	}))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	tests := []struct {
		name   string
		got    any
		expect any
	}{
		{"provider from yaml", cfg.Provider, ProviderOpenAI},
		{"model from yaml", cfg.Model, "gpt-4o"},
		{"dotenv over yaml", cfg.APIKey, "from-dotenv"},
		{"env over dotenv", cfg.MaxTokens, 4096},
		{"dotenv only", cfg.LogLevel, "debug"},
		{"nested yaml", cfg.Search.MaxResults, 8},
		{"default kept", cfg.Search.Language, "en"},
		{"store dsn", cfg.Store.DSN, "/tmp/a.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expect {
				t.Errorf("expect %v, but got %v", tt.expect, tt.got)
			}
		})
	}
	if os.Getenv("OPENAI_API_KEY") == "from-dotenv" {
		t.Errorf("expect dotenv not exported to the process environment")
	}
}

func TestLoadEnvFile(t *testing.T) {
	env := envMap(map[string]string{"ANTHROPIC_API_KEY": "k"})
	missing := filepath.Join(t.TempDir(), ".env")
	if _, err := Load("", WithEnvFile(missing), env); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expect missing env file error, but got %v", err)
	}
	if _, err := Load("", WithOptionalEnvFile(missing), env); err != nil {
		t.Errorf("expect optional env file skipped, but got %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing api key", map[string]string{}},
		{"unknown provider", map[string]string{"ASSISTANT_PROVIDER": "cohere", "ASSISTANT_API_KEY": "k"}},
		{"bad number", map[string]string{"ANTHROPIC_API_KEY": "k", "ASSISTANT_MAX_TOKENS": "many"}},
		{"zero parallelism", map[string]string{"ANTHROPIC_API_KEY": "k", "ASSISTANT_PARALLEL_TOOLS": "0"}},
		{"sqlite without dsn", map[string]string{"ANTHROPIC_API_KEY": "k", "ASSISTANT_STORE_DRIVER": "sqlite"}},
		{"bad search url", map[string]string{"ANTHROPIC_API_KEY": "k", "SEARXNG_BASE_URL": "not a url"}},
		{"bad log level", map[string]string{"ANTHROPIC_API_KEY": "k", "ASSISTANT_LOG_LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load("", envMap(tt.env)); err == nil {
				t.Errorf("expect error")
			}
		})
	}
}

func TestValidateReportsField(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "k"
	cfg.TimeZone = "Mars/Olympus_Mons"
	err := cfg.Validate()
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expect validation errors, but got %v", err)
	}
	if verrs[0].Field() != "TimeZone" {
		t.Errorf("expect TimeZone field, but got %s", verrs[0].Field())
	}
}
