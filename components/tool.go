package components

import (
	"encoding/json"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

// ToolDefinition declares a callable capability exposed to the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

func (d ToolDefinition) ToAnthropic() anthropic.ToolDefinition {
	return anthropic.ToolDefinition{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: d.inputSchema(),
	}
}

func (d ToolDefinition) ToOpenAI() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.inputSchema(),
		},
	}
}

func (d ToolDefinition) inputSchema() map[string]any {
	if d.InputSchema != nil {
		return d.InputSchema
	}
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

// ToolCall is a tool invocation requested by an assistant message.
// The id is scoped to one assistant message.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	// argsErr keeps why the raw arguments could not be decoded, it is not persisted
	argsErr error
}

// NewToolCall parses raw JSON arguments into a ToolCall.
// Undecodable arguments leave an empty mapping and are reported by ArgumentsError,
// so the call can still be answered with a failed result.
func NewToolCall(id string, name string, rawArgs []byte) ToolCall {
	call := ToolCall{ID: id, Name: name}
	args, err := ParseArguments(rawArgs)
	if err != nil {
		call.Arguments = map[string]any{}
		call.argsErr = err
		return call
	}
	call.Arguments = args
	return call
}

// ArgumentsError reports why the model supplied arguments could not be decoded
func (c ToolCall) ArgumentsError() error {
	return c.argsErr
}

// ParseArguments decodes a JSON object into an argument mapping.
// Empty input yields an empty mapping.
func ParseArguments(raw []byte) (map[string]any, error) {
	args := make(map[string]any)
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	return args, nil
}

// ArgumentsJSON returns the JSON encoded arguments, `{}` when there are none
func (c ToolCall) ArgumentsJSON() []byte {
	if len(c.Arguments) == 0 {
		return []byte("{}")
	}
	bs, err := json.Marshal(c.Arguments)
	if err != nil {
		return []byte("{}")
	}
	return bs
}

// Clone returns a deep copy of a tool call.
func (c ToolCall) Clone() ToolCall {
	out := c
	if c.Arguments != nil {
		out.Arguments = cloneValue(c.Arguments).(map[string]any)
	}
	return out
}

// CloneToolCalls returns deep copies of the calls, nil for an empty list
func CloneToolCalls(in []ToolCall) []ToolCall {
	if len(in) == 0 {
		return nil
	}
	out := make([]ToolCall, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// ToolResult is the outcome of one tool call.
// On failure Content carries a diagnostic for the model.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Success reports whether the tool call succeeded
func (r ToolResult) Success() bool {
	return !r.IsError
}

// ToolResultMessage converts a tool result to a conversation message.
func ToolResultMessage(result ToolResult) *Message {
	return NewMessage(ToolRole, result.Content).
		SetToolCallID(result.CallID).
		SetName(result.Name).
		SetIsError(result.IsError)
}

func ToolCallsToOpenAI(src []ToolCall, dist *openai.ChatCompletionMessage) {
	list := make([]openai.ToolCall, 0, len(src))
	for _, v := range src {
		list = append(list, openai.ToolCall{
			ID:   v.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      v.Name,
				Arguments: string(v.ArgumentsJSON()),
			},
		})
	}
	dist.Role = openai.ChatMessageRoleAssistant
	dist.ToolCalls = list
}

func ToolCallsToAnthropic(src []ToolCall, dist *anthropic.Message) {
	for _, v := range src {
		dist.Content = append(dist.Content, anthropic.NewToolUseMessageContent(v.ID, v.Name, v.ArgumentsJSON()))
	}
	dist.Role = anthropic.RoleAssistant
}

func ToolResultsToOpenAI(src []ToolResult) []openai.ChatCompletionMessage {
	list := make([]openai.ChatCompletionMessage, 0, len(src))
	for _, v := range src {
		list = append(list, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Content:    v.Content,
			Name:       v.Name,
			ToolCallID: v.CallID,
		})
	}
	return list
}

func ToolResultsToAnthropic(src []ToolResult, dist *anthropic.Message) {
	for _, v := range src {
		dist.Content = append(dist.Content, anthropic.NewToolResultMessageContent(v.CallID, v.Content, v.IsError))
	}
	dist.Role = anthropic.RoleUser
}
