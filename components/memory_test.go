package components

import (
	"sync"
	"testing"
)

func TestMemoryAppendKeepsOrder(t *testing.T) {
	mem := NewMemory()
	turnID := NewTurnID()
	mem.Append(*NewMessage(UserRole, "hi").SetTurnID(turnID))
	mem.Append(*NewAssistantMessage("hello").SetTurnID(turnID), *NewMessage(UserRole, "bye"))
	history := mem.History()
	if len(history) != 3 {
		t.Fatalf("expect 3 messages, got %d", len(history))
	}
	for idx, expect := range []string{"hi", "hello", "bye"} {
		if history[idx].Content() != expect {
			t.Errorf("message %d: expect %s, got %s", idx, expect, history[idx].Content())
		}
	}
	if history[1].TurnID() != turnID || history[2].TurnID() != "" {
		t.Errorf("expect turn ids kept as given")
	}
}

func TestMemoryHistoryIsCopy(t *testing.T) {
	mem := NewMemory()
	call := ToolCall{ID: "1", Name: "list_tasks", Arguments: map[string]any{"tasklist": "@default"}}
	mem.Append(*NewAssistantMessage("", call))
	history := mem.History()
	history[0] = *NewMessage(UserRole, "tampered")
	if mem.History()[0].Role() != AssistantRole {
		t.Errorf("History must not expose internal storage")
	}
	calls := mem.History()[0].ToolCalls()
	calls[0].Arguments["tasklist"] = "changed"
	if mem.History()[0].ToolCalls()[0].Arguments["tasklist"] != "@default" {
		t.Errorf("tool call arguments must be copied")
	}
}

func TestMemoryConcurrentAppend(t *testing.T) {
	mem := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mem.Append(*NewMessage(UserRole, "x"))
		}()
	}
	wg.Wait()
	if n := len(mem.History()); n != 20 {
		t.Errorf("expect 20 messages, got %d", n)
	}
}
