package check

import (
	"fmt"
	"reflect"
	"unicode/utf8"
)

// LengthCheck passes when the input has exactly the target length.
type LengthCheck struct {
	n int
}

// Length returns an exact length check. It panics if n is negative.
func Length(n int) *LengthCheck {
	if n < 0 {
		panic(fmt.Errorf("%w: negative length %d", ErrInvalidTarget, n))
	}
	return &LengthCheck{n: n}
}

func (c *LengthCheck) Applicable() bool {
	return c != nil
}

func (c *LengthCheck) Unpack(x any) (any, error) {
	return LengthOf(x)
}

func (c *LengthCheck) Compare(v any) bool {
	n, ok := v.(int)
	return ok && n == c.n
}

func (c *LengthCheck) Messages() (string, string) {
	return fmt.Sprintf("length is %d", c.n), fmt.Sprintf("length is not %d", c.n)
}

func (c *LengthCheck) Detail(v any) string {
	return fmt.Sprintf("got %v", v)
}

// LengthOf returns the length of x. Strings are measured in runes.
func LengthOf(x any) (int, error) {
	switch v := x.(type) {
	case string:
		return utf8.RuneCountInString(v), nil
	case interface{ Len() int }:
		return v.Len(), nil
	case nil:
		return 0, fmt.Errorf("%w: nil", ErrNoLength)
	}

	rv := reflect.ValueOf(x)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len(), nil
	case reflect.String:
		return utf8.RuneCountInString(rv.String()), nil
	}
	return 0, fmt.Errorf("%w: %T", ErrNoLength, x)
}
