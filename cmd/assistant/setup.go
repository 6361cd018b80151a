package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	anthropicSDK "github.com/liushuangls/go-anthropic/v2"
	openaiSDK "github.com/sashabaranov/go-openai"

	"github.com/bububa/atomic-assistant/agents"
	"github.com/bububa/atomic-assistant/auth"
	"github.com/bububa/atomic-assistant/components"
	"github.com/bububa/atomic-assistant/components/models/anthropic"
	"github.com/bububa/atomic-assistant/components/models/openai"
	"github.com/bububa/atomic-assistant/config"
	"github.com/bububa/atomic-assistant/store"
	_ "github.com/bububa/atomic-assistant/store/memory"
	_ "github.com/bububa/atomic-assistant/store/sqlite"
	"github.com/bububa/atomic-assistant/tools"
	"github.com/bububa/atomic-assistant/tools/calculator"
	"github.com/bububa/atomic-assistant/tools/calendar"
	"github.com/bububa/atomic-assistant/tools/google"
	"github.com/bububa/atomic-assistant/tools/searxng"
	"github.com/bububa/atomic-assistant/tools/tasks"
	"github.com/bububa/atomic-assistant/tools/webscraper"
)

func newModel(cfg *config.Config) (components.Model, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		opts := make([]anthropicSDK.ClientOption, 0, 1)
		if cfg.BaseURL != "" {
			opts = append(opts, anthropicSDK.WithBaseURL(cfg.BaseURL))
		}
		clt := anthropicSDK.NewClient(cfg.APIKey, opts...)
		modelOpts := []anthropic.Option{
			anthropic.WithTemperature(cfg.Temperature),
			anthropic.WithMaxTokens(cfg.MaxTokens),
		}
		if cfg.Model != "" {
			modelOpts = append(modelOpts, anthropic.WithModel(cfg.Model))
		}
		return anthropic.New(clt, modelOpts...), nil
	case config.ProviderOpenAI:
		clientCfg := openaiSDK.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		clt := openaiSDK.NewClientWithConfig(clientCfg)
		modelOpts := []openai.Option{
			openai.WithTemperature(cfg.Temperature),
			openai.WithMaxTokens(cfg.MaxTokens),
		}
		if cfg.Model != "" {
			modelOpts = append(modelOpts, openai.WithModel(cfg.Model))
		}
		return openai.New(clt, modelOpts...), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

func newStore(cfg *config.Config) (store.Store, error) {
	return store.Open(cfg.Store.Driver, cfg.Store.DSN)
}

// newAuthProvider prefers a service account, otherwise it runs the installed app flow
// on the terminal when a token cache is missing or cannot be refreshed.
func newAuthProvider(cfg *config.Config, prompt io.Writer, logger *slog.Logger) (*auth.Provider, error) {
	opts := []auth.Option{
		auth.WithSource(auth.CalendarKey, auth.CalendarScopes, auth.NewFileCache(cfg.Google.CalendarTokenFile)),
		auth.WithSource(auth.TasksKey, auth.TasksScopes, auth.NewFileCache(cfg.Google.TasksTokenFile)),
		auth.WithLogger(logger),
	}
	if cfg.Google.ServiceAccountFile != "" {
		sa, err := auth.LoadServiceAccount(cfg.Google.ServiceAccountFile, cfg.Google.ServiceAccountSubject)
		if err != nil {
			return nil, err
		}
		return auth.NewProvider(append(opts, auth.WithAcquirer(sa))...), nil
	}
	secrets, err := auth.LoadClientSecrets(cfg.Google.ClientSecretsFile)
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		auth.WithRefresher(auth.NewOAuthRefresher(secrets)),
		auth.WithAcquirer(auth.NewInstalledAppFlow(secrets, auth.WithPrompt(prompt), auth.WithTimeout(5*time.Minute))),
	)
	return auth.NewProvider(opts...), nil
}

func newRegistry(cfg *config.Config, clients google.ClientProvider, loc *time.Location, logger *slog.Logger) (*tools.Registry, error) {
	toolOpts := []tools.Option{
		tools.WithErrorHook(func(_ context.Context, tool tools.Tool, input any, err error) {
			logger.Debug("tool error", slog.String("tool", tool.Name()), slog.Any("input", input), slog.Any("error", err))
		}),
	}
	serviceOpts := []google.Option{google.WithLogger(logger)}
	list := make([]tools.Tool, 0, 8)
	if cfg.Search.BaseURL != "" {
		search := searxng.New(
			searxng.WithBaseURL(cfg.Search.BaseURL),
			searxng.WithLanguage(cfg.Search.Language),
			searxng.WithMaxResults(cfg.Search.MaxResults),
		)
		list = append(list, search.Tool(toolOpts...), webscraper.New().Tool(toolOpts...))
	}
	cal := calendar.New(clients,
		calendar.WithLocation(loc),
		calendar.WithServiceOptions(serviceOpts...),
	)
	list = append(list, cal.Tools(toolOpts...)...)
	list = append(list, tasks.New(clients, tasks.WithServiceOptions(serviceOpts...)).Tools(toolOpts...)...)
	list = append(list, calculator.New().Tool(toolOpts...))
	return tools.NewRegistry(list...)
}

func newAssistant(cfg *config.Config, model components.Model, registry *tools.Registry, st store.Store, loc *time.Location, logger *slog.Logger) *agents.Assistant {
	_, withSearch := registry.Get(searxng.ToolName)
	step := agents.NewModelStep(model,
		agents.WithSystemPromptGenerator(newSystemPrompt(loc, withSearch)),
		agents.WithToolDefinitions(registry.Definitions()...),
		agents.WithMaxEmptyRetries(cfg.MaxEmptyRetries),
		agents.WithStepLogger(logger),
	)
	executor := tools.NewExecutor(registry,
		tools.WithParallel(cfg.ParallelTools),
		tools.WithLogger(logger),
	)
	return agents.NewAssistant(step, executor, st,
		agents.WithName("personal-assistant"),
		agents.WithLogger(logger),
	)
}
