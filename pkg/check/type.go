package check

import (
	"fmt"
	"reflect"
	"strings"
)

// TypeCheck passes when the dynamic type of the input is one of its targets.
type TypeCheck struct {
	types []reflect.Type
}

// Type returns a type membership check. Nil types are ignored; with no types
// the check is not applicable.
func Type(types ...reflect.Type) *TypeCheck {
	c := &TypeCheck{}
	for _, t := range types {
		if t != nil {
			c.types = append(c.types, t)
		}
	}
	return c
}

// TypeOf is Type for a single static type. For interface types the check
// passes on any value implementing the interface.
func TypeOf[T any]() *TypeCheck {
	return Type(reflect.TypeFor[T]())
}

// Types returns the accepted types.
func (c *TypeCheck) Types() []reflect.Type {
	if c == nil {
		return nil
	}
	return append([]reflect.Type(nil), c.types...)
}

func (c *TypeCheck) Applicable() bool {
	return c != nil && len(c.types) > 0
}

func (c *TypeCheck) Unpack(x any) (any, error) {
	return reflect.TypeOf(x), nil
}

func (c *TypeCheck) Compare(v any) bool {
	t, ok := v.(reflect.Type)
	if !ok || t == nil {
		return false
	}
	for _, want := range c.types {
		if t == want || (want.Kind() == reflect.Interface && t.Implements(want)) {
			return true
		}
	}
	return false
}

func (c *TypeCheck) Messages() (string, string) {
	name := c.name()
	return fmt.Sprintf("input type is %s", name), fmt.Sprintf("input type is not %s", name)
}

func (c *TypeCheck) Detail(v any) string {
	if t, ok := v.(reflect.Type); ok && t != nil {
		return "got " + t.String()
	}
	return "got nil"
}

func (c *TypeCheck) name() string {
	names := make([]string, len(c.types))
	for i, t := range c.types {
		names[i] = t.String()
	}
	return strings.Join(names, " | ")
}
