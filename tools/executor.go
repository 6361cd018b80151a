package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bububa/atomic-assistant/components"
	"github.com/bububa/atomic-assistant/schema"
)

type ExecutorOption func(*Executor)

// WithParallel runs up to n calls of one round concurrently
func WithParallel(n int) ExecutorOption {
	return func(e *Executor) {
		e.parallel = n
	}
}

func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = l
	}
}

// Executor runs the tool calls of one assistant message.
// It yields exactly one result per call, in call order, and never fails as a whole.
type Executor struct {
	registry *Registry
	parallel int
	logger   *slog.Logger
}

func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	ret := &Executor{
		registry: registry,
		parallel: 1,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return ret
}

func (e *Executor) Registry() *Registry {
	return e.registry
}

func (e *Executor) Execute(ctx context.Context, calls []components.ToolCall) []components.ToolResult {
	results := make([]components.ToolResult, len(calls))
	if e.parallel <= 1 || len(calls) < 2 {
		for idx, call := range calls {
			results[idx] = e.invoke(ctx, call)
		}
		return results
	}
	var g errgroup.Group
	g.SetLimit(e.parallel)
	for idx, call := range calls {
		g.Go(func() error {
			results[idx] = e.invoke(ctx, call)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Executor) invoke(ctx context.Context, call components.ToolCall) (result components.ToolResult) {
	result = components.ToolResult{
		CallID: call.ID,
		Name:   call.Name,
	}
	logger := e.logger.With(slog.String("tool", call.Name), slog.String("call_id", call.ID))
	startTime := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("tool %s crashed: %v", call.Name, r)
			logger.Error("tool panic", slog.Any("panic", r))
			result = failure(result, err)
		}
	}()
	tool, ok := e.registry.Get(call.Name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
		logger.Warn("unknown tool")
		return failure(result, err)
	}
	if err := call.ArgumentsError(); err != nil {
		logger.Warn("undecodable arguments", slog.Any("error", err))
		return failure(result, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, call.Name, err))
	}
	if err := ctx.Err(); err != nil {
		return failure(result, err)
	}
	out, err := tool.RunAnonymous(ctx, call.Clone().Arguments)
	duration := time.Since(startTime)
	if err != nil {
		logger.Warn("tool failed", slog.Duration("duration", duration), slog.Any("error", err))
		return failure(result, err)
	}
	logger.Debug("tool done", slog.Duration("duration", duration))
	result.Content = schema.Stringify(out)
	return result
}

func failure(result components.ToolResult, err error) components.ToolResult {
	result.Content = ErrorContent(err)
	result.IsError = true
	return result
}
