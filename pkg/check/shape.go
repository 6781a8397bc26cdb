package check

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/imdm/pkg/array"
)

const (
	// AnyDim matches exactly one axis of any size.
	AnyDim = -1
	// AnyDims matches zero or more axes of any size.
	AnyDims = -2
)

// ShapeCheck passes when the shape of the input matches its pattern.
type ShapeCheck struct {
	dims []int
}

// Shape returns a shape check. Dims may contain AnyDim and AnyDims wildcards;
// with no dims the check is not applicable. It panics on any other negative
// dim.
func Shape(dims ...int) *ShapeCheck {
	for _, d := range dims {
		if d < AnyDims {
			panic(fmt.Errorf("%w: dimension %d", ErrInvalidTarget, d))
		}
	}
	return &ShapeCheck{dims: slices.Clone(dims)}
}

// Dims returns the shape pattern.
func (c *ShapeCheck) Dims() []int {
	if c == nil {
		return nil
	}
	return slices.Clone(c.dims)
}

func (c *ShapeCheck) Applicable() bool {
	return c != nil && len(c.dims) > 0
}

func (c *ShapeCheck) Unpack(x any) (any, error) {
	return array.ShapeOf(x)
}

func (c *ShapeCheck) Compare(v any) bool {
	shape, ok := v.([]int)
	return ok && MatchShape(c.dims, shape)
}

func (c *ShapeCheck) Messages() (string, string) {
	p := FormatShape(c.dims)
	return fmt.Sprintf("shape matches %s", p), fmt.Sprintf("shape does not match %s", p)
}

func (c *ShapeCheck) Detail(v any) string {
	if shape, ok := v.([]int); ok {
		return "got " + FormatShape(shape)
	}
	return fmt.Sprintf("got %v", v)
}

// MatchShape reports whether shape matches pattern. AnyDim in the pattern
// matches a single axis, AnyDims matches any run of axes including none.
func MatchShape(pattern, shape []int) bool {
	for len(pattern) > 0 {
		p := pattern[0]
		if p == AnyDims {
			for i := 0; i <= len(shape); i++ {
				if MatchShape(pattern[1:], shape[i:]) {
					return true
				}
			}
			return false
		}
		if len(shape) == 0 || (p != AnyDim && p != shape[0]) {
			return false
		}
		pattern, shape = pattern[1:], shape[1:]
	}
	return len(shape) == 0
}

// FormatShape renders a shape pattern as "(3, *, ...)".
func FormatShape(dims []int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		switch d {
		case AnyDim:
			parts[i] = "*"
		case AnyDims:
			parts[i] = "..."
		default:
			parts[i] = strconv.Itoa(d)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
