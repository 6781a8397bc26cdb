package array

import (
	"fmt"
	"reflect"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Array is an n-dimensional numeric array stored flat in row-major order.
type Array struct {
	data  []float64
	shape []int
	dtype string
}

// Shaper is implemented by values that know their own shape.
type Shaper interface {
	Shape() []int
}

// Arrayer is implemented by decoded objects that can produce their numeric
// content.
type Arrayer interface {
	Array() (Array, error)
}

// New builds an array from row-major data. An empty dtype defaults to float64.
func New(data []float64, shape []int, dtype string) (Array, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return Array{}, fmt.Errorf("%w: negative dimension %d", ErrShapeMismatch, d)
		}
		n *= d
	}
	if n != len(data) {
		return Array{}, fmt.Errorf("%w: shape %v holds %d values, got %d", ErrShapeMismatch, shape, n, len(data))
	}
	if dtype == "" {
		dtype = "float64"
	}
	return Array{data: data, shape: slices.Clone(shape), dtype: dtype}, nil
}

// Scalar returns a rank-0 array.
func Scalar(v float64, dtype string) Array {
	if dtype == "" {
		dtype = "float64"
	}
	return Array{data: []float64{v}, shape: []int{}, dtype: dtype}
}

// Shape returns a copy of the dimensions.
func (a Array) Shape() []int {
	return slices.Clone(a.shape)
}

// Data returns the flat row-major values. The slice is shared with the array
// and must not be modified.
func (a Array) Data() []float64 {
	return a.data
}

// DType returns the element type name, e.g. "uint16" or "float64".
func (a Array) DType() string {
	return a.dtype
}

// Rank returns the number of dimensions.
func (a Array) Rank() int {
	return len(a.shape)
}

// Size returns the total number of elements.
func (a Array) Size() int {
	return len(a.data)
}

// Len returns the size of the first axis, or 0 for a rank-0 array.
func (a Array) Len() int {
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[0]
}

// Min returns the smallest element.
func (a Array) Min() (float64, error) {
	if err := a.reducible(); err != nil {
		return 0, err
	}
	return floats.Min(a.data), nil
}

// Max returns the largest element.
func (a Array) Max() (float64, error) {
	if err := a.reducible(); err != nil {
		return 0, err
	}
	return floats.Max(a.data), nil
}

// Bounds returns the smallest and the largest element.
func (a Array) Bounds() (lo, hi float64, err error) {
	if err := a.reducible(); err != nil {
		return 0, 0, err
	}
	return floats.Min(a.data), floats.Max(a.data), nil
}

func (a Array) reducible() error {
	if len(a.data) == 0 {
		return ErrEmpty
	}
	if floats.HasNaN(a.data) {
		return ErrNaN
	}
	return nil
}

func (a Array) String() string {
	return fmt.Sprintf("array(shape=%v, dtype=%s)", a.shape, a.dtype)
}

// ShapeOf returns the shape of x without requiring the caller to convert it.
func ShapeOf(x any) ([]int, error) {
	if s, ok := x.(Shaper); ok {
		return s.Shape(), nil
	}
	a, err := From(x)
	if err != nil {
		return nil, err
	}
	return a.shape, nil
}

// From converts x into an Array. Supported inputs are Array values, Arrayer
// implementations, numeric and boolean scalars, and rectangular slices or
// arrays of those, nested to any depth. Elements of mixed numeric kinds are
// reported with dtype float64.
func From(x any) (Array, error) {
	switch v := x.(type) {
	case Array:
		return v, nil
	case *Array:
		if v == nil {
			return Array{}, fmt.Errorf("%w: nil array", ErrNotNumeric)
		}
		return *v, nil
	case Arrayer:
		return v.Array()
	case nil:
		return Array{}, fmt.Errorf("%w: nil", ErrNotNumeric)
	}

	c := &collector{}
	if err := c.collect(reflect.ValueOf(x), 0); err != nil {
		return Array{}, err
	}
	if c.dtype == "" {
		c.dtype = staticDType(reflect.TypeOf(x))
	}
	if c.shape == nil {
		c.shape = []int{}
	}
	return Array{data: c.data, shape: c.shape, dtype: c.dtype}, nil
}

type collector struct {
	data      []float64
	shape     []int
	dtype     string
	leafDepth int
	leafSeen  bool
}

func (c *collector) collect(rv reflect.Value, depth int) error {
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("%w: nil element", ErrNotNumeric)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if c.leafSeen && depth >= c.leafDepth {
			return ErrRagged
		}
		n := rv.Len()
		switch {
		case depth == len(c.shape):
			c.shape = append(c.shape, n)
		case c.shape[depth] != n:
			return fmt.Errorf("%w: axis %d has lengths %d and %d", ErrRagged, depth, c.shape[depth], n)
		}
		for i := range n {
			if err := c.collect(rv.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	v, dtype, ok := scalar(rv)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotNumeric, rv.Type())
	}
	if !c.leafSeen {
		c.leafSeen = true
		c.leafDepth = depth
		c.dtype = dtype
	} else if depth != c.leafDepth || depth != len(c.shape) {
		return ErrRagged
	}
	if c.dtype != dtype {
		c.dtype = "float64"
	}
	c.data = append(c.data, v)
	return nil
}

func scalar(rv reflect.Value) (float64, string, bool) {
	dtype, ok := kindDType(rv.Kind())
	if !ok {
		return 0, "", false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), dtype, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), dtype, true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), dtype, true
	case reflect.Bool:
		if rv.Bool() {
			return 1, dtype, true
		}
		return 0, dtype, true
	}
	return 0, "", false
}

func kindDType(k reflect.Kind) (string, bool) {
	switch k {
	case reflect.Int, reflect.Int64:
		return "int64", true
	case reflect.Int8:
		return "int8", true
	case reflect.Int16:
		return "int16", true
	case reflect.Int32:
		return "int32", true
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return "uint64", true
	case reflect.Uint8:
		return "uint8", true
	case reflect.Uint16:
		return "uint16", true
	case reflect.Uint32:
		return "uint32", true
	case reflect.Float32:
		return "float32", true
	case reflect.Float64:
		return "float64", true
	case reflect.Bool:
		return "bool", true
	}
	return "", false
}

// staticDType derives the dtype of an empty container from its element type.
func staticDType(t reflect.Type) string {
	for t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Pointer) {
		t = t.Elem()
	}
	if t != nil {
		if dtype, ok := kindDType(t.Kind()); ok {
			return dtype
		}
	}
	return "float64"
}
