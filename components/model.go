package components

import "context"

// ModelRequest is everything one inference call receives
type ModelRequest struct {
	// System is the fixed system directive
	System string
	// Messages is the conversation, oldest first
	Messages []Message
	// Tools are the tools the model may request
	Tools []ToolDefinition
}

// Model is the language model inference call.
// Generate returns the assistant message, which may be empty or carry tool calls.
type Model interface {
	Generate(ctx context.Context, req ModelRequest) (*Message, *LLMResponse, error)
}
