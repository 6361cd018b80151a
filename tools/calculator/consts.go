package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

var constParams = map[string]any{
	"pi":      math.Pi,
	"e":       math.E,
	"phi":     math.Phi,
	"sqrt2":   math.Sqrt2,
	"sqrte":   math.SqrtE,
	"sqrtpi":  math.SqrtPi,
	"sqrtphi": math.SqrtPhi,
	"ln2":     math.Ln2,
	"log2e":   math.Log2E,
	"ln10":    math.Ln10,
	"log10E":  math.Log10E,
}

var errArgument = errors.New("invalid argument")

func floats(name string, want int, args []any) ([]float64, error) {
	if want >= 0 && len(args) != want {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", errArgument, name, want, len(args))
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %s takes at least one argument", errArgument, name)
	}
	out := make([]float64, len(args))
	for i, arg := range args {
		v, ok := arg.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects numbers, got %v", errArgument, name, arg)
		}
		out[i] = v
	}
	return out, nil
}

func unary(name string, fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		v, err := floats(name, 1, args)
		if err != nil {
			return nil, err
		}
		return fn(v[0]), nil
	}
}

func binary(name string, fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		v, err := floats(name, 2, args)
		if err != nil {
			return nil, err
		}
		return fn(v[0], v[1]), nil
	}
}

func fold(name string, fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		v, err := floats(name, -1, args)
		if err != nil {
			return nil, err
		}
		acc := v[0]
		for _, x := range v[1:] {
			acc = fn(acc, x)
		}
		return acc, nil
	}
}

var functions = map[string]govaluate.ExpressionFunction{
	"abs":   unary("abs", math.Abs),
	"sqrt":  unary("sqrt", math.Sqrt),
	"cbrt":  unary("cbrt", math.Cbrt),
	"floor": unary("floor", math.Floor),
	"ceil":  unary("ceil", math.Ceil),
	"ln":    unary("ln", math.Log),
	"log10": unary("log10", math.Log10),
	"log2":  unary("log2", math.Log2),
	"exp":   unary("exp", math.Exp),
	"sin":   unary("sin", math.Sin),
	"cos":   unary("cos", math.Cos),
	"tan":   unary("tan", math.Tan),
	"asin":  unary("asin", math.Asin),
	"acos":  unary("acos", math.Acos),
	"atan":  unary("atan", math.Atan),
	"pow":   binary("pow", math.Pow),
	"mod":   binary("mod", math.Mod),
	"min":   fold("min", math.Min),
	"max":   fold("max", math.Max),
	"round": func(args ...any) (any, error) {
		if len(args) == 1 {
			v, err := floats("round", 1, args)
			if err != nil {
				return nil, err
			}
			return math.Round(v[0]), nil
		}
		v, err := floats("round", 2, args)
		if err != nil {
			return nil, err
		}
		scale := math.Pow(10, math.Trunc(v[1]))
		return math.Round(v[0]*scale) / scale, nil
	},
}
