package research

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/tool"
)

// calcEnv exposes common math helpers to expressions.
var calcEnv = map[string]any{
	"pi":    math.Pi,
	"e":     math.E,
	"sqrt":  math.Sqrt,
	"pow":   math.Pow,
	"log":   math.Log,
	"log10": math.Log10,
	"exp":   math.Exp,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
}

// Evaluate computes a single arithmetic expression.
func Evaluate(expression string) (any, error) {
	program, err := expr.Compile(expression, expr.Env(calcEnv))
	if err != nil {
		return nil, err
	}

	out, err := expr.Run(program, calcEnv)
	if err != nil {
		return nil, err
	}

	switch v := out.(type) {
	case int, float64:
		return v, nil
	case bool:
		return v, nil
	default:
		return nil, fmt.Errorf("expression must evaluate to a number, got %T", out)
	}
}

type calculatorArgs struct {
	Expression string `json:"expression" description:"A single arithmetic expression, e.g. 37593 * 67 or sqrt(2) ^ 2"`
}

// NewCalculatorTool returns the calculator tool.
func NewCalculatorTool() tool.Tool {
	return tool.NewTypedTool(
		"calculator",
		"Calculate a math expression. Supports + - * / % ^ ** and sqrt, pow, log, log10, exp, sin, cos, tan, pi, e.",
		func(_ *core.ToolContext, args calculatorArgs) tool.Result {
			expression := strings.TrimSpace(args.Expression)
			if expression == "" {
				return tool.Failure("expression must not be empty")
			}

			v, err := Evaluate(expression)
			if err != nil {
				return tool.Failuref("invalid expression: %v", err)
			}

			return tool.Success(fmt.Sprintf("%s = %v", expression, v), v)
		},
	)
}
