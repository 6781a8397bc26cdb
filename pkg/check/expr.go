package check

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/dmitrymomot/imdm/pkg/array"
)

// ExprCheck evaluates a boolean expr-lang expression against the input.
//
// The environment exposes value (the input itself) and, when the input
// converts to a numeric array, data (flattened elements), shape and size:
//
//	size > 0 && all(data, # <= 4095)
//	len(shape) == 3 && shape[0] == shape[1]
//	value matches "^[A-Z]{2}[0-9]+$"
type ExprCheck struct {
	source  string
	program *vm.Program
}

// exprEnv is the compile-time environment; values are placeholders.
var exprEnv = map[string]any{
	"value": nil,
	"data":  []float64{},
	"shape": []int{},
	"size":  0,
}

// Expr compiles source into a check. Compile errors wrap
// ErrInvalidExpression.
func Expr(source string) (*ExprCheck, error) {
	program, err := expr.Compile(source, expr.Env(exprEnv), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return &ExprCheck{source: source, program: program}, nil
}

// MustExpr is Expr that panics on compile errors.
func MustExpr(source string) *ExprCheck {
	c, err := Expr(source)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *ExprCheck) Source() string {
	return c.source
}

// Unpack runs the program against x and returns its boolean result.
func (c *ExprCheck) Unpack(x any) (any, error) {
	env := map[string]any{
		"value": x,
		"data":  []float64{},
		"shape": []int{},
		"size":  0,
	}
	if a, err := array.From(x); err == nil {
		env["data"] = a.Data()
		env["shape"] = a.Shape()
		env["size"] = a.Size()
	}
	return expr.Run(c.program, env)
}

func (c *ExprCheck) Compare(v any) bool {
	ok, _ := v.(bool)
	return ok
}

func (c *ExprCheck) Messages() (string, string) {
	return fmt.Sprintf("%q holds", c.source), fmt.Sprintf("%q does not hold", c.source)
}
