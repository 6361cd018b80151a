package components

import (
	"errors"
	"fmt"
)

var (
	// ErrOrphanToolResult is a tool message whose id was not requested by the preceding assistant message
	ErrOrphanToolResult = errors.New("tool result does not answer a pending tool call")
	// ErrUnansweredToolCall is an assistant tool call that never received a result
	ErrUnansweredToolCall = errors.New("tool call left unanswered")
	// ErrIncompleteTurn is a conversation that does not end with a final assistant reply
	ErrIncompleteTurn = errors.New("conversation does not end with a final assistant reply")
)

// Conversation is the ordered message history of one session
type Conversation struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// Last returns the last message, nil for an empty conversation
func (c Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	msg := c.Messages[len(c.Messages)-1]
	return &msg
}

// PendingToolCalls returns the calls of the last assistant message not yet answered by the
// tool messages following it. Calls followed by any other message can no longer be answered
// in place, so none are reported.
func (c Conversation) PendingToolCalls() []ToolCall {
	idx := -1
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role() == AssistantRole {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	answered := make(map[string]struct{})
	for _, msg := range c.Messages[idx+1:] {
		if msg.Role() != ToolRole {
			return nil
		}
		answered[msg.ToolCallID()] = struct{}{}
	}
	var pending []ToolCall
	for _, call := range c.Messages[idx].toolCalls {
		if _, ok := answered[call.ID]; !ok {
			pending = append(pending, call.Clone())
		}
	}
	return pending
}

// Validate checks the tool call linkage of the whole conversation and that it
// ends with an assistant message carrying text and no pending tool calls.
func (c Conversation) Validate() error {
	pending := make(map[string]struct{})
	for idx, msg := range c.Messages {
		switch msg.Role() {
		case ToolRole:
			if _, ok := pending[msg.ToolCallID()]; !ok {
				return fmt.Errorf("message %d (%s): %w", idx, msg.ToolCallID(), ErrOrphanToolResult)
			}
			delete(pending, msg.ToolCallID())
		default:
			for id := range pending {
				return fmt.Errorf("message %d (%s): %w", idx, id, ErrUnansweredToolCall)
			}
			if msg.Role() == AssistantRole {
				for _, call := range msg.toolCalls {
					pending[call.ID] = struct{}{}
				}
			}
		}
	}
	for id := range pending {
		return fmt.Errorf("%s: %w", id, ErrUnansweredToolCall)
	}
	last := c.Last()
	if last == nil || last.Role() != AssistantRole || !last.HasText() || last.HasToolCalls() {
		return ErrIncompleteTurn
	}
	return nil
}
