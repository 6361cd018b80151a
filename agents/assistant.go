package agents

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/atomic"

	"github.com/bububa/atomic-assistant/components"
	"github.com/bububa/atomic-assistant/store"
	"github.com/bububa/atomic-assistant/tools"
)

// State of the orchestration loop within a turn
type State int

const (
	// AwaitModel waits for the next model reply
	AwaitModel State = iota
	// AwaitTools waits for the results of a tool round
	AwaitTools
	// Done ends the turn with a final assistant reply
	Done
)

func (s State) String() string {
	switch s {
	case AwaitModel:
		return "AWAIT_MODEL"
	case AwaitTools:
		return "AWAIT_TOOLS"
	case Done:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stepper produces the next reply of a conversation
type Stepper interface {
	Step(ctx context.Context, history []components.Message) (*Reply, error)
}

// ToolExecutor runs one tool round, one result per call in call order
type ToolExecutor interface {
	Execute(ctx context.Context, calls []components.ToolCall) []components.ToolResult
}

// Config represents general assistant configuration
type Config struct {
	// name is Assistant name presentation
	name           string
	logger         *slog.Logger
	startHook      func(context.Context, *Assistant, string, string)
	endHook        func(context.Context, *Assistant, string, *components.Message, *components.LLMUsage)
	errorHook      func(context.Context, *Assistant, string, error)
	transitionHook func(context.Context, *Assistant, State, State)
}

// Assistant runs turns of a conversation: it alternates model steps and tool rounds
// until the model gives a final text reply. Every message is persisted as soon as it
// is produced, so an abandoned turn keeps what it already did.
type Assistant struct {
	Config
	step     Stepper
	executor ToolExecutor
	store    store.Store
	running  *atomic.Bool
}

func NewAssistant(step Stepper, executor ToolExecutor, st store.Store, opts ...Option) *Assistant {
	ret := &Assistant{
		step:     step,
		executor: executor,
		store:    st,
		running:  atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.name == "" {
		ret.name = "assistant"
	}
	if ret.logger == nil {
		ret.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return ret
}

func (a *Assistant) Name() string {
	return a.name
}

// History returns the stored conversation of a session
func (a *Assistant) History(ctx context.Context, sessionID string) (*components.Conversation, error) {
	return a.store.Load(ctx, sessionID)
}

// Sessions lists the stored session ids
func (a *Assistant) Sessions(ctx context.Context) ([]string, error) {
	return a.store.Sessions(ctx)
}

// Forget deletes the stored conversation of a session
func (a *Assistant) Forget(ctx context.Context, sessionID string) error {
	return a.store.Delete(ctx, sessionID)
}

// turn is the mutable state of one Run
type turn struct {
	sessionID string
	turnID    string
	history   []components.Message
	pending   []components.ToolCall
	reply     *components.Message
	usage     *components.LLMUsage
	rounds    int
}

// Run resolves one user input into a final assistant reply
func (a *Assistant) Run(ctx context.Context, sessionID string, input string) (*components.Message, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}
	if !a.running.CompareAndSwap(false, true) {
		return nil, ErrTurnInProgress
	}
	defer a.running.Store(false)
	if fn := a.startHook; fn != nil {
		fn(ctx, a, sessionID, input)
	}
	reply, err := a.run(ctx, sessionID, input)
	if err != nil {
		if fn := a.errorHook; fn != nil {
			fn(ctx, a, sessionID, err)
		}
		return nil, err
	}
	return reply, nil
}

func (a *Assistant) run(ctx context.Context, sessionID string, input string) (*components.Message, error) {
	conv, err := a.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	t := &turn{
		sessionID: sessionID,
		turnID:    components.NewTurnID(),
		history:   conv.Messages,
		usage:     new(components.LLMUsage),
	}
	logger := a.logger.With(slog.String("session", sessionID), slog.String("turn", t.turnID))
	logger.Info("turn started", slog.Int("history", len(t.history)))
	startTime := time.Now()
	if err := a.closeAbandoned(ctx, logger, t, conv); err != nil {
		return nil, err
	}
	if err := a.persist(ctx, t, *components.NewMessage(components.UserRole, input)); err != nil {
		return nil, err
	}
	state := AwaitModel
	for state != Done {
		if err := ctx.Err(); err != nil {
			logger.Warn("turn abandoned", slog.String("state", state.String()), slog.Any("error", err))
			return nil, err
		}
		var next State
		switch state {
		case AwaitModel:
			next, err = a.awaitModel(ctx, t)
		case AwaitTools:
			next, err = a.awaitTools(ctx, logger, t)
		}
		if err != nil {
			logger.Error("turn failed", slog.String("state", state.String()), slog.Any("error", err))
			return nil, err
		}
		if fn := a.transitionHook; fn != nil {
			fn(ctx, a, state, next)
		}
		state = next
	}
	logger.Info("turn done",
		slog.Int("rounds", t.rounds),
		slog.Duration("duration", time.Since(startTime)),
		slog.Int64("input_tokens", t.usage.InputTokens),
		slog.Int64("output_tokens", t.usage.OutputTokens),
	)
	if fn := a.endHook; fn != nil {
		fn(ctx, a, sessionID, t.reply, t.usage)
	}
	return t.reply, nil
}

func (a *Assistant) awaitModel(ctx context.Context, t *turn) (State, error) {
	reply, err := a.step.Step(ctx, t.history)
	if err != nil {
		return AwaitModel, err
	}
	t.usage.Merge(reply.Usage)
	if err := a.persist(ctx, t, *reply.Message); err != nil {
		return AwaitModel, err
	}
	if reply.Kind == ReplyToolCalls {
		t.pending = reply.Message.ToolCalls()
		return AwaitTools, nil
	}
	msg := t.history[len(t.history)-1]
	t.reply = &msg
	return Done, nil
}

func (a *Assistant) awaitTools(ctx context.Context, logger *slog.Logger, t *turn) (State, error) {
	t.rounds++
	results := matchResults(t.pending, a.executor.Execute(ctx, t.pending))
	msgs := make([]components.Message, 0, len(results))
	var failed int
	for _, result := range results {
		if !result.Success() {
			failed++
		}
		msgs = append(msgs, *components.ToolResultMessage(result))
	}
	logger.Info("tool round done", slog.Int("round", t.rounds), slog.Int("calls", len(results)), slog.Int("failed", failed))
	// results of a canceled round are still recorded so no call stays unanswered
	if err := a.persist(context.WithoutCancel(ctx), t, msgs...); err != nil {
		return AwaitTools, err
	}
	t.pending = nil
	return AwaitModel, nil
}

func (a *Assistant) persist(ctx context.Context, t *turn, msgs ...components.Message) error {
	for idx := range msgs {
		msgs[idx].SetTurnID(t.turnID)
	}
	if err := a.store.Append(ctx, t.sessionID, msgs...); err != nil {
		return fmt.Errorf("persist session %s: %w", t.sessionID, err)
	}
	t.history = append(t.history, msgs...)
	return nil
}

// closeAbandoned answers the tool calls an interrupted turn left behind,
// with failed results attributed to that turn.
func (a *Assistant) closeAbandoned(ctx context.Context, logger *slog.Logger, t *turn, conv *components.Conversation) error {
	pending := conv.PendingToolCalls()
	if len(pending) == 0 {
		return nil
	}
	turnID := conv.Last().TurnID()
	msgs := make([]components.Message, 0, len(pending))
	for _, call := range pending {
		msg := components.ToolResultMessage(components.ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Content: tools.ErrorContent(ErrToolCallAbandoned),
			IsError: true,
		})
		msgs = append(msgs, *msg.SetTurnID(turnID))
	}
	logger.Warn("closing abandoned tool calls", slog.Int("calls", len(msgs)))
	if err := a.store.Append(ctx, t.sessionID, msgs...); err != nil {
		return fmt.Errorf("persist session %s: %w", t.sessionID, err)
	}
	t.history = append(t.history, msgs...)
	return nil
}

// matchResults lines results up with calls so that every call is answered once, in order
func matchResults(calls []components.ToolCall, results []components.ToolResult) []components.ToolResult {
	byID := make(map[string]components.ToolResult, len(results))
	for _, result := range results {
		if _, ok := byID[result.CallID]; !ok {
			byID[result.CallID] = result
		}
	}
	out := make([]components.ToolResult, 0, len(calls))
	for _, call := range calls {
		result, ok := byID[call.ID]
		if !ok {
			result = components.ToolResult{
				CallID:  call.ID,
				Name:    call.Name,
				Content: tools.ErrorContent(fmt.Errorf("tool %s returned no result", call.Name)),
				IsError: true,
			}
		}
		out = append(out, result)
	}
	return out
}
