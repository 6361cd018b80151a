// Package scripted is a deterministic model for tests and dry runs
package scripted

import (
	"context"
	"fmt"
	"sync"

	"github.com/bububa/atomic-assistant/components"
)

// Response configures one model call in a scripted sequence.
type Response struct {
	Message *components.Message
	Err     error
}

// Text scripts a final reply
func Text(text string) Response {
	return Response{Message: components.NewAssistantMessage(text)}
}

// Calls scripts a tool round
func Calls(calls ...components.ToolCall) Response {
	return Response{Message: components.NewAssistantMessage("", calls...)}
}

// Empty scripts a reply with neither text nor tool calls
func Empty() Response {
	return Response{Message: components.NewAssistantMessage("")}
}

// Fail scripts an inference failure
func Fail(err error) Response {
	return Response{Err: err}
}

// Model replays responses in order and records every request
type Model struct {
	mu        sync.Mutex
	index     int
	responses []Response
	requests  []components.ModelRequest
	// repeat replays the last response forever once the script is exhausted
	repeat bool
}

var _ components.Model = (*Model)(nil)

func New(responses ...Response) *Model {
	cloned := make([]Response, len(responses))
	copy(cloned, responses)
	return &Model{responses: cloned}
}

// Repeat keeps returning the last response once the script is exhausted
func (m *Model) Repeat() *Model {
	m.mu.Lock()
	m.repeat = true
	m.mu.Unlock()
	return m
}

func (m *Model) Generate(_ context.Context, req components.ModelRequest) (*components.Message, *components.LLMResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.Messages = components.CloneMessages(req.Messages)
	m.requests = append(m.requests, req)
	if m.index >= len(m.responses) {
		if !m.repeat || len(m.responses) == 0 {
			return nil, nil, fmt.Errorf("script exhausted at call %d", m.index+1)
		}
		m.index = len(m.responses) - 1
	}
	current := m.responses[m.index]
	m.index++
	if current.Err != nil {
		return nil, nil, current.Err
	}
	msg := current.Message.Clone()
	return &msg, &components.LLMResponse{
		ID:    fmt.Sprintf("scripted-%d", m.index),
		Role:  components.AssistantRole,
		Model: "scripted",
		Usage: &components.LLMUsage{InputTokens: 1, OutputTokens: 1},
	}, nil
}

// Requests returns the recorded requests
func (m *Model) Requests() []components.ModelRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]components.ModelRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns how many times Generate was called
func (m *Model) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
