package tools

import (
	"context"

	"github.com/bububa/atomic-assistant/components"
)

// Tool is a named capability the model can invoke
type Tool interface {
	Name() string
	Description() string
	// Definition returns the declaration sent to the model
	Definition() components.ToolDefinition
	// RunAnonymous runs the tool with the argument mapping of a tool call
	RunAnonymous(ctx context.Context, args map[string]any) (any, error)
}
