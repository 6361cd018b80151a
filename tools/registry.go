package tools

import (
	"fmt"
	"regexp"

	"github.com/bububa/atomic-assistant/components"
)

var toolNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Registry maps tool names to tools.
// It is built once at startup and read-only afterwards.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(list ...Tool) (*Registry, error) {
	r := &Registry{
		tools: make(map[string]Tool, len(list)),
	}
	for _, t := range list {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool, names must be unique
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if !toolNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidToolName, name)
	}
	if _, ok := r.tools[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns tool names in registration order
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions returns tool declarations in registration order
func (r *Registry) Definitions() []components.ToolDefinition {
	list := make([]components.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.tools[name].Definition())
	}
	return list
}

func (r *Registry) Len() int {
	return len(r.order)
}
