package components

import (
	"errors"
	"testing"
)

func TestConversationValidate(t *testing.T) {
	call := ToolCall{ID: "call_1", Name: "list_upcoming_events"}
	tests := []struct {
		name     string
		messages []Message
		expect   error
	}{
		{
			name: "final reply",
			messages: []Message{
				*NewMessage(UserRole, "hi"),
				*NewAssistantMessage("hello"),
			},
		},
		{
			name: "tool round",
			messages: []Message{
				*NewMessage(UserRole, "what's on my calendar"),
				*NewAssistantMessage("", call),
				*ToolResultMessage(ToolResult{CallID: "call_1", Content: "[]"}),
				*NewAssistantMessage("nothing planned"),
			},
		},
		{
			name: "unanswered call",
			messages: []Message{
				*NewMessage(UserRole, "what's on my calendar"),
				*NewAssistantMessage("", call),
				*NewAssistantMessage("nothing planned"),
			},
			expect: ErrUnansweredToolCall,
		},
		{
			name: "orphan result",
			messages: []Message{
				*NewMessage(UserRole, "hi"),
				*ToolResultMessage(ToolResult{CallID: "call_9", Content: "[]"}),
				*NewAssistantMessage("hello"),
			},
			expect: ErrOrphanToolResult,
		},
		{
			name: "ends with tool calls",
			messages: []Message{
				*NewMessage(UserRole, "hi"),
				*NewAssistantMessage("", call),
				*ToolResultMessage(ToolResult{CallID: "call_1", Content: "[]"}),
			},
			expect: ErrIncompleteTurn,
		},
		{
			name:     "empty",
			messages: nil,
			expect:   ErrIncompleteTurn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Conversation{SessionID: "s", Messages: tt.messages}.Validate()
			if tt.expect == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.expect != nil && !errors.Is(err, tt.expect) {
				t.Fatalf("expect %v, got %v", tt.expect, err)
			}
		})
	}
}

func TestConversationPendingToolCalls(t *testing.T) {
	conv := Conversation{Messages: []Message{
		*NewMessage(UserRole, "hi"),
		*NewAssistantMessage("", ToolCall{ID: "a", Name: "list_tasks"}, ToolCall{ID: "b", Name: "list_upcoming_events"}),
		*ToolResultMessage(ToolResult{CallID: "a", Content: "[]"}),
	}}
	pending := conv.PendingToolCalls()
	if len(pending) != 1 || pending[0].ID != "b" {
		t.Errorf("expect pending call b, got %+v", pending)
	}
	conv.Messages = append(conv.Messages, *ToolResultMessage(ToolResult{CallID: "b", Content: "[]"}))
	if pending := conv.PendingToolCalls(); len(pending) != 0 {
		t.Errorf("expect no pending calls, got %+v", pending)
	}
	conv.Messages = conv.Messages[:2]
	conv.Messages = append(conv.Messages, *NewMessage(UserRole, "never mind"))
	if pending := conv.PendingToolCalls(); len(pending) != 0 {
		t.Errorf("expect calls followed by a user message not reported, got %+v", pending)
	}
	if pending := (Conversation{Messages: []Message{*NewMessage(UserRole, "hi")}}).PendingToolCalls(); pending != nil {
		t.Errorf("expect nil without assistant messages, got %+v", pending)
	}
}
