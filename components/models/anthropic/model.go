package anthropic

import (
	"context"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/bububa/atomic-assistant/components"
)

const (
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultMaxTokens = 1024
)

type Config struct {
	model       string
	temperature float32
	maxTokens   int
}

// Model is the anthropic messages API with native tool use
type Model struct {
	Config
	client *anthropic.Client
}

var _ components.Model = (*Model)(nil)

func New(clt *anthropic.Client, opts ...Option) *Model {
	ret := &Model{client: clt}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.model == "" {
		ret.model = DefaultModel
	}
	if ret.maxTokens <= 0 {
		ret.maxTokens = DefaultMaxTokens
	}
	return ret
}

func (m *Model) Generate(ctx context.Context, req components.ModelRequest) (*components.Message, *components.LLMResponse, error) {
	chatReq := anthropic.MessagesRequest{
		Model:     anthropic.Model(m.model),
		System:    req.System,
		MaxTokens: m.maxTokens,
		Messages:  Messages(req.Messages),
	}
	if m.temperature > 0 {
		temperature := m.temperature
		chatReq.Temperature = &temperature
	}
	for _, t := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, t.ToAnthropic())
	}
	resp, err := m.client.CreateMessages(ctx, chatReq)
	if err != nil {
		return nil, nil, err
	}
	llmResp := new(components.LLMResponse)
	llmResp.FromAnthropic(&resp)
	var (
		text  strings.Builder
		calls []components.ToolCall
	)
	for _, content := range resp.Content {
		switch content.Type {
		case anthropic.MessagesContentTypeText:
			if content.Text != nil {
				text.WriteString(*content.Text)
			}
		case anthropic.MessagesContentTypeToolUse:
			if content.MessageContentToolUse == nil {
				continue
			}
			use := content.MessageContentToolUse
			calls = append(calls, components.NewToolCall(use.ID, use.Name, use.Input))
		}
	}
	return components.NewAssistantMessage(text.String(), calls...), llmResp, nil
}

// Messages converts the conversation to anthropic messages.
// Consecutive messages sharing a role are merged, which groups the tool results of
// one round into a single user message.
func Messages(src []components.Message) []anthropic.Message {
	list := make([]anthropic.Message, 0, len(src))
	for _, msg := range src {
		if msg.Role() == components.SystemRole {
			continue
		}
		var v anthropic.Message
		msg.ToAnthropic(&v)
		if len(v.Content) == 0 {
			continue
		}
		if l := len(list); l > 0 && list[l-1].Role == v.Role {
			list[l-1].Content = append(list[l-1].Content, v.Content...)
			continue
		}
		list = append(list, v)
	}
	return list
}
