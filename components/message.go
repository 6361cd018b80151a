package components

import (
	"encoding/json"
	"strings"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/rs/xid"
	openai "github.com/sashabaranov/go-openai"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'assistant', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
	ToolRole      MessageRole = "tool"
)

// Message represents a message in the conversation history.
//
// Assistant messages may carry tool calls, tool messages carry the id of the
// call they answer.
type Message struct {
	// role is the role of the message sender
	role MessageRole
	// content is the text of the message, may be empty
	content string
	// toolCalls are requested by an assistant message
	toolCalls []ToolCall
	// toolCallID links a tool message to the call it answers
	toolCallID string
	// name is the tool name for tool messages
	name string
	// isError marks a failed tool result
	isError bool
	// turnID is Unique identifier for the turn this message belongs to.
	turnID    string
	createdAt time.Time
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content string) *Message {
	return &Message{
		role:      role,
		content:   content,
		createdAt: time.Now().UTC(),
	}
}

// NewAssistantMessage returns an assistant message carrying optional tool calls
func NewAssistantMessage(content string, calls ...ToolCall) *Message {
	return NewMessage(AssistantRole, content).SetToolCalls(calls)
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// SetToolCalls replaces the tool calls with copies of calls
func (m *Message) SetToolCalls(calls []ToolCall) *Message {
	m.toolCalls = CloneToolCalls(calls)
	return m
}

// SetToolCallID set the id of the tool call answered by this message
func (m *Message) SetToolCallID(id string) *Message {
	m.toolCallID = id
	return m
}

// SetName set the tool name
func (m *Message) SetName(name string) *Message {
	m.name = name
	return m
}

// SetIsError marks the message as a failed tool result
func (m *Message) SetIsError(isError bool) *Message {
	m.isError = isError
	return m
}

// SetCreatedAt set message creation time
func (m *Message) SetCreatedAt(t time.Time) *Message {
	m.createdAt = t.UTC()
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() string {
	return m.content
}

// ToolCalls returns a copy of the tool calls
func (m Message) ToolCalls() []ToolCall {
	return CloneToolCalls(m.toolCalls)
}

// ToolCallID returns the id of the answered tool call
func (m Message) ToolCallID() string {
	return m.toolCallID
}

// Name returns the tool name
func (m Message) Name() string {
	return m.name
}

// IsError reports whether a tool message carries a failure
func (m Message) IsError() bool {
	return m.isError
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// CreatedAt returns message creation time
func (m Message) CreatedAt() time.Time {
	return m.createdAt
}

// HasText reports whether the message carries non blank text
func (m Message) HasText() bool {
	return strings.TrimSpace(m.content) != ""
}

// HasToolCalls reports whether the message requests tool invocations
func (m Message) HasToolCalls() bool {
	return len(m.toolCalls) > 0
}

// IsEmpty reports a message with neither text nor tool calls
func (m Message) IsEmpty() bool {
	return !m.HasText() && !m.HasToolCalls()
}

// Clone returns a deep copy of the message
func (m Message) Clone() Message {
	out := m
	out.toolCalls = CloneToolCalls(m.toolCalls)
	return out
}

// CloneMessages returns deep copies of all messages.
func CloneMessages(in []Message) []Message {
	out := make([]Message, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

type messageJSON struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	Name       string      `json:"name,omitempty"`
	IsError    bool        `json:"is_error,omitempty"`
	TurnID     string      `json:"turn_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at,omitempty"`
}

// MarshalJSON implements json.Marshaler interface
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		Role:       m.role,
		Content:    m.content,
		ToolCalls:  m.toolCalls,
		ToolCallID: m.toolCallID,
		Name:       m.name,
		IsError:    m.isError,
		TurnID:     m.turnID,
		CreatedAt:  m.createdAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler interface
func (m *Message) UnmarshalJSON(bs []byte) error {
	var v messageJSON
	if err := json.Unmarshal(bs, &v); err != nil {
		return err
	}
	m.role = v.Role
	m.content = v.Content
	m.toolCalls = v.ToolCalls
	m.toolCallID = v.ToolCallID
	m.name = v.Name
	m.isError = v.IsError
	m.turnID = v.TurnID
	m.createdAt = v.CreatedAt
	return nil
}

// ToOpenAI convert message to openai ChatCompletionMessage
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.role
	dist.Content = m.content
	switch m.role {
	case AssistantRole:
		if len(m.toolCalls) > 0 {
			ToolCallsToOpenAI(m.toolCalls, dist)
		}
	case ToolRole:
		dist.ToolCallID = m.toolCallID
		dist.Name = m.name
	}
}

// ToAnthropic convert message to anthropic Message.
// Tool results are sent back to anthropic as user role tool_result contents.
func (m Message) ToAnthropic(dist *anthropic.Message) {
	switch m.role {
	case AssistantRole:
		dist.Role = anthropic.RoleAssistant
		dist.Content = make([]anthropic.MessageContent, 0, len(m.toolCalls)+1)
		if m.HasText() {
			dist.Content = append(dist.Content, anthropic.NewTextMessageContent(m.content))
		}
		ToolCallsToAnthropic(m.toolCalls, dist)
	case ToolRole:
		ToolResultsToAnthropic([]ToolResult{m.ToolResult()}, dist)
	default:
		dist.Role = anthropic.RoleUser
		dist.Content = []anthropic.MessageContent{anthropic.NewTextMessageContent(m.content)}
	}
}

// ToolResult rebuilds the ToolResult carried by a tool message
func (m Message) ToolResult() ToolResult {
	return ToolResult{
		CallID:  m.toolCallID,
		Name:    m.name,
		Content: m.content,
		IsError: m.isError,
	}
}
