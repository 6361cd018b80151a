package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bububa/atomic-assistant/agents"
	"github.com/bububa/atomic-assistant/components/models/scripted"
	"github.com/bububa/atomic-assistant/config"
	"github.com/bububa/atomic-assistant/store/memory"
	"github.com/bububa/atomic-assistant/tools"
)

func newTestAssistant(t *testing.T, model *scripted.Model) *agents.Assistant {
	t.Helper()
	registry, err := tools.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	return newAssistant(cfg, model, registry, memory.New(), time.UTC, newLogger(&bytes.Buffer{}, "error"))
}

func TestREPL(t *testing.T) {
	model := scripted.New(
		scripted.Text("Hello! How can I help?"),
		scripted.Fail(errors.New("overloaded")),
		scripted.Text("Still here."),
	)
	a := newTestAssistant(t, model)
	in := strings.NewReader("hi\n\nagain\nand again\nquit\nnever read\n")
	var out bytes.Buffer
	if err := repl(context.Background(), in, &out, a, "s1"); err != nil {
		t.Fatalf("repl failed: %v", err)
	}
	got := out.String()
	for _, expect := range []string{
		"Assistant: Hello! How can I help?\n",
		"Assistant unavailable: ",
		"Assistant: Still here.\n",
		"Goodbye!\n",
	} {
		if !strings.Contains(got, expect) {
			t.Errorf("expect %q in output:\n%s", expect, got)
		}
	}
	if model.CallCount() != 3 {
		t.Errorf("expect 3 model calls, got %d", model.CallCount())
	}
	conv, _ := a.History(context.Background(), "s1")
	if n := len(conv.Messages); n != 5 {
		t.Errorf("expect 5 stored messages, got %d", n)
	}
}

func TestREPLEndsOnEOF(t *testing.T) {
	a := newTestAssistant(t, scripted.New(scripted.Text("ok")))
	var out bytes.Buffer
	if err := repl(context.Background(), strings.NewReader("hello"), &out, a, "s1"); err != nil {
		t.Fatalf("repl failed: %v", err)
	}
	if !strings.Contains(out.String(), "Assistant: ok") || !strings.HasSuffix(out.String(), "Goodbye!\n") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestSystemPrompt(t *testing.T) {
	prompt := newSystemPrompt(time.UTC, false).Generate()
	for _, expect := range []string{"Google Calendar", "ask for any missing information", "they must do it manually", "Current time"} {
		if !strings.Contains(prompt, expect) {
			t.Errorf("expect %q in system prompt", expect)
		}
	}
	if strings.Contains(prompt, "search capabilities") {
		t.Errorf("expect no search capability without the search tool")
	}
}

func TestRegistryWithoutSearch(t *testing.T) {
	cfg := config.Default()
	registry, err := newRegistry(cfg, nil, time.UTC, newLogger(&bytes.Buffer{}, "error"))
	if err != nil {
		t.Fatalf("new registry failed: %v", err)
	}
	expect := []string{"schedule_event", "schedule_recurring_event", "list_upcoming_events", "list_calendars", "create_task", "list_tasks", "calculate"}
	got := registry.Names()
	if strings.Join(got, ",") != strings.Join(expect, ",") {
		t.Errorf("expect %v, but got %v", expect, got)
	}
	cfg.Search.BaseURL = "http://localhost:8888"
	registry, err = newRegistry(cfg, nil, time.UTC, newLogger(&bytes.Buffer{}, "error"))
	if err != nil {
		t.Fatalf("new registry failed: %v", err)
	}
	if _, ok := registry.Get("web_search"); !ok {
		t.Errorf("expect web_search registered")
	}
	if _, ok := registry.Get("fetch_webpage"); !ok {
		t.Errorf("expect fetch_webpage registered")
	}
}

func TestListAndForgetSessions(t *testing.T) {
	a := newTestAssistant(t, scripted.New(scripted.Text("ok")).Repeat())
	var out bytes.Buffer
	if err := listSessions(context.Background(), &out, a); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out.String() != "No stored sessions.\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	for _, id := range []string{"s2", "s1"} {
		if _, err := a.Run(context.Background(), id, "hi"); err != nil {
			t.Fatalf("run failed: %v", err)
		}
	}
	out.Reset()
	if err := listSessions(context.Background(), &out, a); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out.String() != "s1\ns2\n" {
		t.Errorf("unexpected sessions %q", out.String())
	}
	out.Reset()
	if err := forgetSession(context.Background(), &out, a, "s1"); err != nil {
		t.Fatalf("forget failed: %v", err)
	}
	if !strings.Contains(out.String(), "s1 forgotten") {
		t.Errorf("unexpected output %q", out.String())
	}
	ids, _ := a.Sessions(context.Background())
	if len(ids) != 1 || ids[0] != "s2" {
		t.Errorf("expect only s2 left, got %v", ids)
	}
	conv, err := a.History(context.Background(), "s1")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(conv.Messages) != 0 {
		t.Errorf("expect forgotten session empty, got %d messages", len(conv.Messages))
	}
}

func TestForgetNeedsSession(t *testing.T) {
	if err := run(context.Background(), "", "", "", false, true); err == nil {
		t.Errorf("expect -forget without -session rejected")
	}
}
