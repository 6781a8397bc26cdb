package check

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dmitrymomot/imdm/pkg/array"
)

// Bounds is an inclusive numeric interval. A nil bound is open.
type Bounds struct {
	Min *float64
	Max *float64
}

// Bound returns a pointer to v for use in Bounds.
func Bound(v float64) *float64 {
	return &v
}

// Contains reports whether [lo, hi] lies within the bounds.
func (b Bounds) Contains(lo, hi float64) bool {
	if b.Min != nil && lo < *b.Min {
		return false
	}
	if b.Max != nil && hi > *b.Max {
		return false
	}
	return true
}

func (b Bounds) String() string {
	return "[" + formatBound(b.Min, "-inf") + ", " + formatBound(b.Max, "+inf") + "]"
}

func formatBound(v *float64, open string) string {
	if v == nil {
		return open
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// RangeCheck passes when every element of the input lies within its bounds.
type RangeCheck struct {
	bounds Bounds
}

// Range returns a range check. With both bounds open the check is not
// applicable. It panics if a bound is NaN or Min exceeds Max.
func Range(b Bounds) *RangeCheck {
	if (b.Min != nil && math.IsNaN(*b.Min)) || (b.Max != nil && math.IsNaN(*b.Max)) {
		panic(fmt.Errorf("%w: NaN bound", ErrInvalidTarget))
	}
	if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
		panic(fmt.Errorf("%w: range %s is empty", ErrInvalidTarget, b))
	}
	return &RangeCheck{bounds: b}
}

// Between is Range with both bounds set.
func Between(lo, hi float64) *RangeCheck {
	return Range(Bounds{Min: Bound(lo), Max: Bound(hi)})
}

// AtLeast is Range with only a lower bound.
func AtLeast(lo float64) *RangeCheck {
	return Range(Bounds{Min: Bound(lo)})
}

// AtMost is Range with only an upper bound.
func AtMost(hi float64) *RangeCheck {
	return Range(Bounds{Max: Bound(hi)})
}

func (c *RangeCheck) Bounds() Bounds {
	return c.bounds
}

func (c *RangeCheck) Applicable() bool {
	return c != nil && (c.bounds.Min != nil || c.bounds.Max != nil)
}

// Unpack reduces the input to its [min, max] pair.
func (c *RangeCheck) Unpack(x any) (any, error) {
	a, err := array.From(x)
	if err != nil {
		return nil, err
	}
	lo, hi, err := a.Bounds()
	if err != nil {
		return nil, err
	}
	return [2]float64{lo, hi}, nil
}

func (c *RangeCheck) Compare(v any) bool {
	mm, ok := v.([2]float64)
	return ok && c.bounds.Contains(mm[0], mm[1])
}

func (c *RangeCheck) Messages() (string, string) {
	return fmt.Sprintf("values are within %s", c.bounds), fmt.Sprintf("values are not within %s", c.bounds)
}

func (c *RangeCheck) Detail(v any) string {
	if mm, ok := v.([2]float64); ok {
		return fmt.Sprintf("got min %g, max %g", mm[0], mm[1])
	}
	return fmt.Sprintf("got %v", v)
}
