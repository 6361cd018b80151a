package agents

import "errors"

var (
	// ErrModelUnavailable is a failed model inference, the turn is abandoned
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrEmptyModelReply is returned, wrapped in ErrModelUnavailable, when every
	// attempt of a step came back without text or tool calls
	ErrEmptyModelReply = errors.New("model returned empty replies")
	// ErrTurnInProgress rejects a turn while another one runs
	ErrTurnInProgress = errors.New("another turn is in progress")
	// ErrEmptyInput rejects a blank user message
	ErrEmptyInput = errors.New("empty user input")
	// ErrToolCallAbandoned answers a tool call whose turn was interrupted before it ran
	ErrToolCallAbandoned = errors.New("tool call was abandoned before it ran")
)
