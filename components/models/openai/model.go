package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/atomic-assistant/components"
)

const DefaultModel = openai.GPT4oMini

type Config struct {
	model       string
	temperature float32
	maxTokens   int
}

// Model is an OpenAI compatible chat completion API with function calling
type Model struct {
	Config
	client *openai.Client
}

var _ components.Model = (*Model)(nil)

func New(clt *openai.Client, opts ...Option) *Model {
	ret := &Model{client: clt}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.model == "" {
		ret.model = DefaultModel
	}
	return ret
}

func (m *Model) Generate(ctx context.Context, req components.ModelRequest) (*components.Message, *components.LLMResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:               m.model,
		Temperature:         m.temperature,
		MaxCompletionTokens: m.maxTokens,
		Messages:            Messages(req.System, req.Messages),
	}
	for _, t := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, t.ToOpenAI())
	}
	resp, err := m.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, nil, err
	}
	llmResp := new(components.LLMResponse)
	llmResp.FromOpenAI(&resp)
	if len(resp.Choices) == 0 {
		return components.NewAssistantMessage(""), llmResp, nil
	}
	choice := resp.Choices[0].Message
	calls := make([]components.ToolCall, 0, len(choice.ToolCalls))
	for _, tc := range choice.ToolCalls {
		calls = append(calls, components.NewToolCall(tc.ID, tc.Function.Name, []byte(tc.Function.Arguments)))
	}
	return components.NewAssistantMessage(choice.Content, calls...), llmResp, nil
}

// Messages converts the system directive and conversation to chat completion messages
func Messages(system string, src []components.Message) []openai.ChatCompletionMessage {
	list := make([]openai.ChatCompletionMessage, 0, len(src)+1)
	if system != "" {
		list = append(list, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range src {
		var v openai.ChatCompletionMessage
		msg.ToOpenAI(&v)
		list = append(list, v)
	}
	return list
}
