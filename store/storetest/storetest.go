// Package storetest checks a store.Store implementation
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bububa/atomic-assistant/components"
	"github.com/bububa/atomic-assistant/store"
)

// Run runs the conformance suite, newStore must return an empty store
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("empty session", func(t *testing.T) {
		s := newStore(t)
		conv, err := s.Load(context.Background(), "missing")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if conv.SessionID != "missing" || len(conv.Messages) != 0 {
			t.Errorf("expect empty conversation, but got %+v", conv)
		}
	})
	t.Run("append order", func(t *testing.T) { testAppendOrder(t, newStore(t)) })
	t.Run("isolation", func(t *testing.T) { testIsolation(t, newStore(t)) })
	t.Run("invalid session", func(t *testing.T) { testInvalidSession(t, newStore(t)) })
	t.Run("concurrent append", func(t *testing.T) { testConcurrentAppend(t, newStore(t)) })
}

func turn() []components.Message {
	turnID := components.NewTurnID()
	call := components.ToolCall{ID: "call_1", Name: "list_tasks", Arguments: map[string]any{"tasklist": "@default"}}
	return []components.Message{
		*components.NewMessage(components.UserRole, "what is on my list?").SetTurnID(turnID),
		*components.NewAssistantMessage("", call).SetTurnID(turnID),
		*components.ToolResultMessage(components.ToolResult{CallID: "call_1", Name: "list_tasks", Content: `[{"id":"t1","title":"Buy milk"}]`}).SetTurnID(turnID),
		*components.NewAssistantMessage("You need to buy milk.").SetTurnID(turnID),
	}
}

func testAppendOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	msgs := turn()
	if err := s.Append(ctx, "s1", msgs[0]); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := s.Append(ctx, "s1", msgs[1:]...); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	conv, err := s.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(conv.Messages) != len(msgs) {
		t.Fatalf("expect %d messages, but got %d", len(msgs), len(conv.Messages))
	}
	for idx, got := range conv.Messages {
		want := msgs[idx]
		if got.Role() != want.Role() || got.Content() != want.Content() || got.TurnID() != want.TurnID() || got.ToolCallID() != want.ToolCallID() {
			t.Errorf("message %d: expect %+v, but got %+v", idx, want, got)
		}
	}
	calls := conv.Messages[1].ToolCalls()
	if len(calls) != 1 || calls[0].ID != "call_1" || calls[0].Arguments["tasklist"] != "@default" {
		t.Errorf("unexpected tool calls %+v", calls)
	}
	if err := conv.Validate(); err != nil {
		t.Errorf("expect valid conversation, got %v", err)
	}
}

func testIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.Append(ctx, "a", turn()...); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, "b", turn()[0]); err != nil {
		t.Fatal(err)
	}
	sessions, err := s.Sessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 || sessions[0] != "a" || sessions[1] != "b" {
		t.Errorf("expect sessions [a b], but got %v", sessions)
	}
	// mutating a loaded conversation must not leak into the store
	conv, _ := s.Load(ctx, "a")
	conv.Messages[0].SetTurnID("changed")
	conv.Messages = conv.Messages[:1]
	again, _ := s.Load(ctx, "a")
	if len(again.Messages) != 4 || again.Messages[0].TurnID() == "changed" {
		t.Errorf("expect stored history untouched")
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	conv, _ = s.Load(ctx, "a")
	if len(conv.Messages) != 0 {
		t.Errorf("expect deleted session empty, got %d messages", len(conv.Messages))
	}
	conv, _ = s.Load(ctx, "b")
	if len(conv.Messages) != 1 {
		t.Errorf("expect session b untouched, got %d messages", len(conv.Messages))
	}
}

func testInvalidSession(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.Load(ctx, ""); !errors.Is(err, store.ErrInvalidSessionID) {
		t.Errorf("load: expect ErrInvalidSessionID, got %v", err)
	}
	if err := s.Append(ctx, " ", turn()...); !errors.Is(err, store.ErrInvalidSessionID) {
		t.Errorf("append: expect ErrInvalidSessionID, got %v", err)
	}
	if err := s.Delete(ctx, ""); !errors.Is(err, store.ErrInvalidSessionID) {
		t.Errorf("delete: expect ErrInvalidSessionID, got %v", err)
	}
}

func testConcurrentAppend(t *testing.T, s store.Store) {
	ctx := context.Background()
	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := components.NewMessage(components.UserRole, fmt.Sprintf("m%d", i))
			if err := s.Append(ctx, "busy", *msg); err != nil {
				t.Errorf("append failed: %v", err)
			}
		}(i)
	}
	wg.Wait()
	conv, err := s.Load(ctx, "busy")
	if err != nil {
		t.Fatal(err)
	}
	if len(conv.Messages) != n {
		t.Errorf("expect %d messages, but got %d", n, len(conv.Messages))
	}
}
