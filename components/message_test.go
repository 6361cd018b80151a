package components

import (
	"bytes"
	"encoding/json"
	"testing"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

func TestMessageMarshaler(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	dec := json.NewDecoder(&buf)
	msg := NewAssistantMessage("", ToolCall{
		ID:        "call_1",
		Name:      "schedule_event",
		Arguments: map[string]any{"summary": "lunch", "attendees": []any{"a", "b"}},
	}).SetTurnID(NewTurnID())
	if err := enc.Encode(msg); err != nil {
		t.Fatal(err)
		return
	}
	var decodeMsg Message
	if err := dec.Decode(&decodeMsg); err != nil {
		t.Fatal(err)
		return
	}
	if decodeMsg.Role() != AssistantRole {
		t.Errorf("role match error, expect:%s, got:%s", AssistantRole, decodeMsg.Role())
	}
	if decodeMsg.TurnID() != msg.TurnID() {
		t.Errorf("turn id match error, expect:%s, got:%s", msg.TurnID(), decodeMsg.TurnID())
	}
	calls := decodeMsg.ToolCalls()
	if len(calls) != 1 || calls[0].ID != "call_1" || calls[0].Arguments["summary"] != "lunch" {
		t.Errorf("tool calls mismatch, got:%+v", calls)
	}
}

func TestToolCallsAreCopied(t *testing.T) {
	args := map[string]any{"nested": map[string]any{"k": "v"}}
	msg := NewAssistantMessage("", ToolCall{ID: "1", Name: "list_tasks", Arguments: args})
	args["nested"].(map[string]any)["k"] = "changed"
	got := msg.ToolCalls()
	if got[0].Arguments["nested"].(map[string]any)["k"] != "v" {
		t.Errorf("tool call arguments were shared with the caller")
	}
	got[0].Name = "other"
	if msg.ToolCalls()[0].Name != "list_tasks" {
		t.Errorf("ToolCalls must return a copy")
	}
}

func TestMessageIsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		msg    *Message
		expect bool
	}{
		{name: "blank", msg: NewAssistantMessage(" \n"), expect: true},
		{name: "text", msg: NewAssistantMessage("hi"), expect: false},
		{name: "tool calls", msg: NewAssistantMessage("", ToolCall{ID: "1", Name: "list_tasks"}), expect: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.IsEmpty(); got != tt.expect {
				t.Errorf("expect %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestMessageToAnthropic(t *testing.T) {
	var dist anthropic.Message
	NewAssistantMessage("let me check", ToolCall{ID: "toolu_1", Name: "list_upcoming_events"}).ToAnthropic(&dist)
	if dist.Role != anthropic.RoleAssistant {
		t.Fatalf("expect assistant role, got %s", dist.Role)
	}
	if len(dist.Content) != 2 {
		t.Fatalf("expect text and tool_use contents, got %d", len(dist.Content))
	}
	if dist.Content[1].Type != anthropic.MessagesContentTypeToolUse {
		t.Errorf("expect tool_use content, got %s", dist.Content[1].Type)
	}

	var result anthropic.Message
	ToolResultMessage(ToolResult{CallID: "toolu_1", Content: "Error: boom", IsError: true}).ToAnthropic(&result)
	if result.Role != anthropic.RoleUser {
		t.Errorf("tool results are sent with user role, got %s", result.Role)
	}
	if len(result.Content) != 1 || result.Content[0].Type != anthropic.MessagesContentTypeToolResult {
		t.Errorf("expect one tool_result content, got %+v", result.Content)
	}
}

func TestMessageToOpenAI(t *testing.T) {
	var dist openai.ChatCompletionMessage
	NewAssistantMessage("", ToolCall{ID: "call_1", Name: "create_task", Arguments: map[string]any{"title": "milk"}}).ToOpenAI(&dist)
	if len(dist.ToolCalls) != 1 {
		t.Fatalf("expect 1 tool call, got %d", len(dist.ToolCalls))
	}
	if dist.ToolCalls[0].Function.Arguments != `{"title":"milk"}` {
		t.Errorf("unexpected arguments %s", dist.ToolCalls[0].Function.Arguments)
	}

	var tool openai.ChatCompletionMessage
	ToolResultMessage(ToolResult{CallID: "call_1", Name: "create_task", Content: "Task created: milk"}).ToOpenAI(&tool)
	if tool.Role != openai.ChatMessageRoleTool || tool.ToolCallID != "call_1" {
		t.Errorf("unexpected tool message %+v", tool)
	}
}

func TestParseArguments(t *testing.T) {
	args, err := ParseArguments(nil)
	if err != nil || len(args) != 0 {
		t.Errorf("empty arguments should parse to an empty map, got %v %v", args, err)
	}
	if _, err := ParseArguments([]byte("{bad")); err == nil {
		t.Errorf("expect error for invalid json")
	}
	args, err = ParseArguments([]byte(`{"num_events":5}`))
	if err != nil {
		t.Fatal(err)
	}
	if args["num_events"] != float64(5) {
		t.Errorf("unexpected value %v", args["num_events"])
	}
}

func TestNewToolCallKeepsUndecodableCall(t *testing.T) {
	call := NewToolCall("c1", "add_task", []byte(`{"text": "milk`))
	if call.ID != "c1" || call.Name != "add_task" {
		t.Fatalf("expect id and name kept, got %+v", call)
	}
	if call.ArgumentsError() == nil {
		t.Fatalf("expect the decode error carried on the call")
	}
	if call.Clone().ArgumentsError() == nil {
		t.Errorf("expect a clone to keep the decode error")
	}
	msg := NewAssistantMessage("", call)
	if msg.ToolCalls()[0].ArgumentsError() == nil {
		t.Errorf("expect the message copy to keep the decode error")
	}
	if string(call.ArgumentsJSON()) != "{}" {
		t.Errorf("expect empty arguments sent back, got %s", call.ArgumentsJSON())
	}
	if ok := NewToolCall("c2", "add_task", []byte(`{"text":"milk"}`)); ok.ArgumentsError() != nil || ok.Arguments["text"] != "milk" {
		t.Errorf("expect decoded arguments, got %+v", ok)
	}
}
