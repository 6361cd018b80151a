package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bububa/atomic-assistant/components"
)

type echoInput struct {
	Text  string `json:"text"`
	Delay int    `json:"delay,omitempty"`
}

func newEchoTool() *Func[echoInput, string] {
	return NewFunc("echo", "Echoes text", func(_ context.Context, in *echoInput) (*string, error) {
		if in.Delay > 0 {
			time.Sleep(time.Duration(in.Delay) * time.Millisecond)
		}
		out := in.Text
		return &out, nil
	})
}

func newFailTool() *Func[echoInput, string] {
	return NewFunc("fail", "Always fails", func(context.Context, *echoInput) (*string, error) {
		return nil, NewExternalServiceError("calendar", "events.insert", errors.New("quota exceeded"))
	})
}

func newPanicTool() *Func[echoInput, string] {
	return NewFunc("crash", "Panics", func(context.Context, *echoInput) (*string, error) {
		panic("boom")
	})
}

func newTestExecutor(t *testing.T, opts ...ExecutorOption) *Executor {
	t.Helper()
	r, err := NewRegistry(newEchoTool(), newFailTool(), newPanicTool())
	if err != nil {
		t.Fatalf("new registry failed: %v", err)
	}
	return NewExecutor(r, opts...)
}

func TestExecutorOrderAndCount(t *testing.T) {
	calls := []components.ToolCall{
		{ID: "1", Name: "echo", Arguments: map[string]any{"text": "a"}},
		{ID: "2", Name: "fail"},
		{ID: "3", Name: "missing"},
		{ID: "4", Name: "crash"},
		{ID: "5", Name: "echo", Arguments: map[string]any{"text": "b"}},
	}
	for _, parallel := range []int{1, 4} {
		t.Run(fmt.Sprintf("parallel=%d", parallel), func(t *testing.T) {
			results := newTestExecutor(t, WithParallel(parallel)).Execute(context.Background(), calls)
			if len(results) != len(calls) {
				t.Fatalf("expect %d results, but got %d", len(calls), len(results))
			}
			for idx, result := range results {
				if result.CallID != calls[idx].ID {
					t.Errorf("result %d: expect call id %s, but got %s", idx, calls[idx].ID, result.CallID)
				}
				if result.Name != calls[idx].Name {
					t.Errorf("result %d: expect name %s, but got %s", idx, calls[idx].Name, result.Name)
				}
			}
			if !results[0].Success() || results[0].Content != "a" {
				t.Errorf("expect echo a, but got %+v", results[0])
			}
			if !results[4].Success() || results[4].Content != "b" {
				t.Errorf("expect echo b, but got %+v", results[4])
			}
			for _, idx := range []int{1, 2, 3} {
				if results[idx].Success() {
					t.Errorf("result %d: expect failure", idx)
				}
				if !strings.HasPrefix(results[idx].Content, "Error: ") || !strings.HasSuffix(results[idx].Content, "\n please fix your mistakes.") {
					t.Errorf("result %d: unexpected error content %q", idx, results[idx].Content)
				}
			}
			if !strings.Contains(results[1].Content, "calendar events.insert failed: quota exceeded") {
				t.Errorf("expect external service error description, got %q", results[1].Content)
			}
			if !strings.Contains(results[2].Content, "unknown tool: missing") {
				t.Errorf("expect unknown tool description, got %q", results[2].Content)
			}
		})
	}
}

func TestExecutorAllFail(t *testing.T) {
	calls := []components.ToolCall{
		{ID: "a", Name: "fail"},
		{ID: "b", Name: "nope"},
		{ID: "c", Name: "fail"},
	}
	results := newTestExecutor(t).Execute(context.Background(), calls)
	if len(results) != 3 {
		t.Fatalf("expect 3 results, but got %d", len(results))
	}
	for idx, result := range results {
		if result.Success() || result.CallID != calls[idx].ID {
			t.Errorf("result %d: unexpected %+v", idx, result)
		}
	}
}

func TestExecutorEmpty(t *testing.T) {
	if results := newTestExecutor(t).Execute(context.Background(), nil); len(results) != 0 {
		t.Errorf("expect no results, but got %d", len(results))
	}
}

func TestExecutorParallelRestoresOrder(t *testing.T) {
	var running, peak atomic.Int32
	slow := NewFunc("slow", "Sleeps", func(_ context.Context, in *echoInput) (*string, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Duration(in.Delay) * time.Millisecond)
		running.Add(-1)
		out := in.Text
		return &out, nil
	})
	r, err := NewRegistry(slow)
	if err != nil {
		t.Fatalf("new registry failed: %v", err)
	}
	calls := []components.ToolCall{
		{ID: "1", Name: "slow", Arguments: map[string]any{"text": "first", "delay": 60}},
		{ID: "2", Name: "slow", Arguments: map[string]any{"text": "second", "delay": 30}},
		{ID: "3", Name: "slow", Arguments: map[string]any{"text": "third", "delay": 1}},
	}
	results := NewExecutor(r, WithParallel(3)).Execute(context.Background(), calls)
	for idx, expect := range []string{"first", "second", "third"} {
		if results[idx].Content != expect {
			t.Errorf("result %d: expect %s, but got %s", idx, expect, results[idx].Content)
		}
	}
	if peak.Load() < 2 {
		t.Errorf("expect concurrent execution, peak %d", peak.Load())
	}
}

func TestExecutorCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := newTestExecutor(t).Execute(ctx, []components.ToolCall{{ID: "1", Name: "echo", Arguments: map[string]any{"text": "x"}}})
	if len(results) != 1 || results[0].Success() {
		t.Errorf("expect one failed result, but got %+v", results)
	}
}

func TestExecutorUndecodableArguments(t *testing.T) {
	var ran atomic.Bool
	echo := NewFunc("echo", "Echoes text", func(_ context.Context, in *echoInput) (*string, error) {
		ran.Store(true)
		return &in.Text, nil
	})
	r, err := NewRegistry(echo)
	if err != nil {
		t.Fatalf("new registry failed: %v", err)
	}
	call := components.NewToolCall("1", "echo", []byte(`{"text": "mi`))
	results := NewExecutor(r).Execute(context.Background(), []components.ToolCall{call})
	if len(results) != 1 || results[0].Success() {
		t.Fatalf("expect one failed result, but got %+v", results)
	}
	if results[0].CallID != "1" || results[0].Name != "echo" {
		t.Errorf("expect the result linked to call 1, got %+v", results[0])
	}
	if !strings.Contains(results[0].Content, ErrInvalidArguments.Error()) {
		t.Errorf("expect invalid arguments reported, got %q", results[0].Content)
	}
	if ran.Load() {
		t.Errorf("expect the tool not to run")
	}
}
