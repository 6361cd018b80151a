package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/bububa/atomic-assistant/components"
	"github.com/bububa/atomic-assistant/schema"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Defaulter is implemented by inputs which fill in optional fields before validation
type Defaulter interface {
	SetDefaults()
}

// Func adapts a typed function to a Tool.
// Arguments are decoded into I, defaulted, validated and passed to the function.
type Func[I any, O any] struct {
	Config
	fn          func(context.Context, *I) (*O, error)
	inputSchema map[string]any
}

var _ Tool = (*Func[struct{}, struct{}])(nil)

func NewFunc[I any, O any](name string, description string, fn func(context.Context, *I) (*O, error), opts ...Option) *Func[I, O] {
	ret := &Func[I, O]{
		fn:          fn,
		inputSchema: schema.Reflect[I](),
	}
	ret.SetName(name)
	ret.SetDescription(description)
	ret.Apply(opts...)
	return ret
}

func (f *Func[I, O]) Definition() components.ToolDefinition {
	return components.ToolDefinition{
		Name:        f.Name(),
		Description: f.Description(),
		InputSchema: f.inputSchema,
	}
}

// Decode converts an argument mapping into a validated input
func (f *Func[I, O]) Decode(args map[string]any) (*I, error) {
	in := new(I)
	if len(args) > 0 {
		bs, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
		}
		dec := json.NewDecoder(bytes.NewReader(bs))
		if err := dec.Decode(in); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
		}
	}
	if d, ok := any(in).(Defaulter); ok {
		d.SetDefaults()
	}
	if err := validate.Struct(in); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			return in, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	return in, nil
}

// Run runs the typed function directly
func (f *Func[I, O]) Run(ctx context.Context, in *I) (*O, error) {
	f.onStart(ctx, f, in)
	out, err := f.fn(ctx, in)
	if err != nil {
		f.onError(ctx, f, in, err)
		return nil, err
	}
	f.onEnd(ctx, f, in, out)
	return out, nil
}

func (f *Func[I, O]) RunAnonymous(ctx context.Context, args map[string]any) (any, error) {
	in, err := f.Decode(args)
	if err != nil {
		f.onError(ctx, f, args, err)
		return nil, err
	}
	out, err := f.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	return out, nil
}
