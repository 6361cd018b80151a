// Package calculator evaluates arithmetic expressions for the model,
// which is unreliable at doing sums and date arithmetic on its own.
package calculator

import (
	"context"
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/bububa/atomic-assistant/schema"
	"github.com/bububa/atomic-assistant/tools"
)

const ToolName = "calculate"

// Input Tool for performing calculations. Supports basic arithmetic operations
// like addition, subtraction, multiplication, and division, as well as functions
// such as sqrt, pow, round and the trigonometric ones.
type Input struct {
	schema.Base
	// Expression Mathematical expression to evaluate. For example, '2 + 2'.
	Expression string `json:"expression" validate:"required" jsonschema_description:"Mathematical expression to evaluate. For example, '2 + 2' or 'round(90 / 7, 2)'."`
	// Params represents expressions's parameters
	Params map[string]any `json:"params,omitempty" jsonschema_description:"Values of the variables used in the expression."`
}

func NewInput(exp string, params map[string]any) *Input {
	return &Input{
		Expression: exp,
		Params:     params,
	}
}

// Output Schema for the output of the calculate tool
type Output struct {
	schema.Base
	// Result Result of the calculation
	Result any `json:"result"`
}

func (o Output) String() string {
	switch v := o.Result.(type) {
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

func NewOutput(result any) *Output {
	return &Output{
		Result: result,
	}
}

type Calculator struct{}

func New() *Calculator {
	return new(Calculator)
}

func (t *Calculator) Tool(opts ...tools.Option) *tools.Func[Input, Output] {
	return tools.NewFunc(ToolName, "Evaluate a mathematical expression. Use it for any arithmetic instead of computing in your head.", t.Run, opts...)
}

// Run evaluates the expression, variables of the input shadow the constants
func (t *Calculator) Run(_ context.Context, input *Input) (*Output, error) {
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(input.Expression, functions)
	if err != nil {
		return nil, fmt.Errorf("parse expression: %w", err)
	}
	params := make(map[string]any, len(input.Params)+len(constParams))
	for k, v := range constParams {
		params[k] = v
	}
	for k, v := range input.Params {
		params[k] = v
	}
	result, err := exp.Evaluate(params)
	if err != nil {
		return nil, fmt.Errorf("evaluate expression: %w", err)
	}
	return NewOutput(result), nil
}
