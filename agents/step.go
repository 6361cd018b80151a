package agents

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bububa/atomic-assistant/components"
	"github.com/bububa/atomic-assistant/components/systemprompt"
	"github.com/bububa/atomic-assistant/components/systemprompt/cot"
)

// NudgeMessage re-prompts a model which returned an empty reply
const NudgeMessage = "Respond with a real output."

// DefaultMaxEmptyRetries allows three model calls per step
const DefaultMaxEmptyRetries = 2

type ReplyKind int

const (
	// ReplyFinal is a text answer ending the turn
	ReplyFinal ReplyKind = iota
	// ReplyToolCalls requests a tool round
	ReplyToolCalls
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyFinal:
		return "final"
	case ReplyToolCalls:
		return "tool_calls"
	default:
		return fmt.Sprintf("ReplyKind(%d)", int(k))
	}
}

// Reply is the accepted model output of a step
type Reply struct {
	Kind    ReplyKind
	Message *components.Message
	// Attempts counts model calls including nudged retries
	Attempts int
	Usage    *components.LLMUsage
}

// Text returns the reply text
func (r Reply) Text() string {
	if r.Message == nil {
		return ""
	}
	return r.Message.Content()
}

// ToolCalls returns the requested tool calls
func (r Reply) ToolCalls() []components.ToolCall {
	if r.Message == nil {
		return nil
	}
	return r.Message.ToolCalls()
}

type StepOption func(*ModelStep)

func WithSystemPromptGenerator(g systemprompt.Generator) StepOption {
	return func(s *ModelStep) {
		s.systemPromptGenerator = g
	}
}

// WithToolDefinitions declares the tools the model may call
func WithToolDefinitions(defs ...components.ToolDefinition) StepOption {
	return func(s *ModelStep) {
		s.tools = append(s.tools, defs...)
	}
}

// WithMaxEmptyRetries bounds the nudged retries after an empty reply
func WithMaxEmptyRetries(n int) StepOption {
	return func(s *ModelStep) {
		s.maxEmptyRetries = n
	}
}

func WithStepLogger(l *slog.Logger) StepOption {
	return func(s *ModelStep) {
		s.logger = l
	}
}

// ModelStep asks the model for the next reply of a conversation.
// It never yields an empty reply: empty outputs are retried with a nudge appended to
// a private copy of the conversation, up to the retry bound.
type ModelStep struct {
	model                 components.Model
	systemPromptGenerator systemprompt.Generator
	tools                 []components.ToolDefinition
	maxEmptyRetries       int
	logger                *slog.Logger
}

func NewModelStep(model components.Model, opts ...StepOption) *ModelStep {
	ret := &ModelStep{
		model:           model,
		maxEmptyRetries: DefaultMaxEmptyRetries,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = cot.New()
	}
	if ret.maxEmptyRetries < 0 {
		ret.maxEmptyRetries = 0
	}
	if ret.logger == nil {
		ret.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return ret
}

// SystemPrompt returns the current system directive
func (s *ModelStep) SystemPrompt() string {
	return s.systemPromptGenerator.Generate()
}

// Step returns the next reply for history, history is left untouched
func (s *ModelStep) Step(ctx context.Context, history []components.Message) (*Reply, error) {
	local := components.CloneMessages(history)
	req := components.ModelRequest{
		System: s.SystemPrompt(),
		Tools:  s.tools,
	}
	usage := new(components.LLMUsage)
	attempts := s.maxEmptyRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req.Messages = local
		msg, resp, err := s.model.Generate(ctx, req)
		if err != nil {
			s.logger.Error("model call failed", slog.Int("attempt", attempt), slog.Any("error", err))
			return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		}
		if resp != nil {
			usage.Merge(resp.Usage)
			s.logger.Debug("model replied",
				slog.Int("attempt", attempt),
				slog.String("model", resp.Model),
				slog.String("stop_reason", resp.StopReason),
				slog.Int64("input_tokens", usage.InputTokens),
				slog.Int64("output_tokens", usage.OutputTokens),
			)
		}
		if msg == nil || msg.IsEmpty() {
			s.logger.Warn("empty model reply, nudging", slog.Int("attempt", attempt))
			local = append(local, *components.NewMessage(components.UserRole, NudgeMessage))
			continue
		}
		reply := &Reply{
			Kind:     ReplyFinal,
			Message:  normalize(msg),
			Attempts: attempt,
			Usage:    usage,
		}
		if reply.Message.HasToolCalls() {
			reply.Kind = ReplyToolCalls
		}
		return reply, nil
	}
	return nil, fmt.Errorf("%w: %w after %d attempts", ErrModelUnavailable, ErrEmptyModelReply, attempts)
}

// normalize returns an assistant message whose tool calls carry unique non empty ids
func normalize(msg *components.Message) *components.Message {
	out := components.NewAssistantMessage(msg.Content())
	calls := msg.ToolCalls()
	seen := make(map[string]struct{}, len(calls))
	for idx := range calls {
		if _, dup := seen[calls[idx].ID]; calls[idx].ID == "" || dup {
			calls[idx].ID = "call_" + components.NewTurnID()
		}
		seen[calls[idx].ID] = struct{}{}
		if calls[idx].Arguments == nil {
			calls[idx].Arguments = map[string]any{}
		}
	}
	if !msg.CreatedAt().IsZero() {
		out.SetCreatedAt(msg.CreatedAt())
	}
	return out.SetToolCalls(calls)
}
