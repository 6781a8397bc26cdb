package check

import (
	"fmt"

	"github.com/dmitrymomot/imdm/pkg/array"
)

// DTypeCheck passes when the element type name of the input array equals the
// target, e.g. "uint16".
type DTypeCheck struct {
	name string
}

// DType returns an element type check. An empty name is not applicable.
func DType(name string) *DTypeCheck {
	return &DTypeCheck{name: name}
}

func (c *DTypeCheck) Applicable() bool {
	return c != nil && c.name != ""
}

func (c *DTypeCheck) Unpack(x any) (any, error) {
	if d, ok := x.(interface{ DType() string }); ok {
		return d.DType(), nil
	}
	a, err := array.From(x)
	if err != nil {
		return nil, err
	}
	return a.DType(), nil
}

func (c *DTypeCheck) Compare(v any) bool {
	s, ok := v.(string)
	return ok && s == c.name
}

func (c *DTypeCheck) Messages() (string, string) {
	return fmt.Sprintf("dtype is %s", c.name), fmt.Sprintf("dtype is not %s", c.name)
}

func (c *DTypeCheck) Detail(v any) string {
	return fmt.Sprintf("got %v", v)
}
