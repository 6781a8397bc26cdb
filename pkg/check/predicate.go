package check

import (
	"fmt"
	"reflect"
)

// FuncCheck wraps user functions as a Check.
type FuncCheck struct {
	name    string
	unpack  func(any) (any, error)
	compare func(any) bool
}

// Predicate wraps fn as a check named name. A nil fn is not applicable.
func Predicate(name string, fn func(any) bool) *FuncCheck {
	return &FuncCheck{name: name, compare: fn}
}

// PredicateOf wraps a typed predicate. Inputs that are not a T fail with
// ErrUnexpectedType.
func PredicateOf[T any](name string, fn func(T) bool) *FuncCheck {
	if fn == nil {
		return &FuncCheck{name: name}
	}
	return &FuncCheck{
		name: name,
		unpack: func(x any) (any, error) {
			v, ok := x.(T)
			if !ok {
				return nil, fmt.Errorf("%w: want %s, got %T", ErrUnexpectedType, reflect.TypeFor[T](), x)
			}
			return v, nil
		},
		compare: func(v any) bool { return fn(v.(T)) },
	}
}

// Assert wraps a function that returns an error when x is invalid. The error
// text becomes the failure message.
func Assert(name string, fn func(any) error) *FuncCheck {
	if fn == nil {
		return &FuncCheck{name: name}
	}
	return &FuncCheck{
		name: name,
		unpack: func(x any) (any, error) {
			if err := fn(x); err != nil {
				return nil, err
			}
			return x, nil
		},
		compare: func(any) bool { return true },
	}
}

func (c *FuncCheck) Applicable() bool {
	return c != nil && c.compare != nil
}

func (c *FuncCheck) Unpack(x any) (any, error) {
	if c.unpack == nil {
		return x, nil
	}
	return c.unpack(x)
}

func (c *FuncCheck) Compare(v any) bool {
	return c.compare(v)
}

func (c *FuncCheck) Messages() (string, string) {
	name := c.name
	if name == "" {
		name = "predicate"
	}
	return name + " holds", name + " does not hold"
}
