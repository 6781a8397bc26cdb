package array_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/imdm/pkg/array"
)

func TestFrom(t *testing.T) {
	t.Parallel()

	t.Run("scalar is rank zero", func(t *testing.T) {
		t.Parallel()
		a, err := array.From(int16(7))
		require.NoError(t, err)
		assert.Empty(t, a.Shape())
		assert.Equal(t, "int16", a.DType())
		assert.Equal(t, []float64{7}, a.Data())
		assert.Equal(t, 0, a.Len())
	})

	t.Run("nested slices", func(t *testing.T) {
		t.Parallel()
		a, err := array.From([][]int{{1, 2, 3}, {4, 5, 6}})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, a.Shape())
		assert.Equal(t, "int64", a.DType())
		assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.Data())
		assert.Equal(t, 2, a.Len())
		assert.Equal(t, 6, a.Size())
	})

	t.Run("fixed size arrays", func(t *testing.T) {
		t.Parallel()
		a, err := array.From([2][3]float32{})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, a.Shape())
		assert.Equal(t, "float32", a.DType())
	})

	t.Run("mixed kinds become float64", func(t *testing.T) {
		t.Parallel()
		a, err := array.From([]any{1, 2.5, uint8(3)})
		require.NoError(t, err)
		assert.Equal(t, "float64", a.DType())
		assert.Equal(t, []float64{1, 2.5, 3}, a.Data())
	})

	t.Run("booleans", func(t *testing.T) {
		t.Parallel()
		a, err := array.From([]bool{true, false})
		require.NoError(t, err)
		assert.Equal(t, "bool", a.DType())
		assert.Equal(t, []float64{1, 0}, a.Data())
	})

	t.Run("empty slice keeps static dtype", func(t *testing.T) {
		t.Parallel()
		a, err := array.From([]uint16{})
		require.NoError(t, err)
		assert.Equal(t, []int{0}, a.Shape())
		assert.Equal(t, "uint16", a.DType())
	})

	t.Run("ragged input", func(t *testing.T) {
		t.Parallel()
		_, err := array.From([][]int{{1, 2}, {3}})
		assert.ErrorIs(t, err, array.ErrRagged)

		_, err = array.From([]any{1, []int{2, 3}})
		assert.ErrorIs(t, err, array.ErrRagged)

		_, err = array.From([]any{[]int{2, 3}, 1})
		assert.ErrorIs(t, err, array.ErrRagged)
	})

	t.Run("non numeric input", func(t *testing.T) {
		t.Parallel()
		for _, x := range []any{nil, "text", []string{"a"}, map[string]int{"a": 1}, []any{nil}} {
			_, err := array.From(x)
			assert.ErrorIs(t, err, array.ErrNotNumeric, "%#v", x)
		}
	})

	t.Run("array passes through", func(t *testing.T) {
		t.Parallel()
		src, err := array.New([]float64{1, 2}, []int{2}, "uint8")
		require.NoError(t, err)
		a, err := array.From(src)
		require.NoError(t, err)
		assert.Equal(t, src, a)
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("shape must match data", func(t *testing.T) {
		t.Parallel()
		_, err := array.New([]float64{1, 2, 3}, []int{2, 2}, "")
		assert.ErrorIs(t, err, array.ErrShapeMismatch)

		_, err = array.New(nil, []int{-1}, "")
		assert.ErrorIs(t, err, array.ErrShapeMismatch)
	})

	t.Run("default dtype", func(t *testing.T) {
		t.Parallel()
		a, err := array.New([]float64{1, 2, 3, 4}, []int{2, 2}, "")
		require.NoError(t, err)
		assert.Equal(t, "float64", a.DType())
		assert.Equal(t, 2, a.Rank())
	})

	t.Run("shape is copied", func(t *testing.T) {
		t.Parallel()
		shape := []int{2}
		a, err := array.New([]float64{1, 2}, shape, "")
		require.NoError(t, err)
		shape[0] = 9
		got := a.Shape()
		got[0] = 7
		assert.Equal(t, []int{2}, a.Shape())
	})
}

func TestBounds(t *testing.T) {
	t.Parallel()

	t.Run("min and max", func(t *testing.T) {
		t.Parallel()
		a, err := array.From([][]int{{3, -4}, {10, 0}})
		require.NoError(t, err)

		lo, hi, err := a.Bounds()
		require.NoError(t, err)
		assert.Equal(t, -4.0, lo)
		assert.Equal(t, 10.0, hi)

		lo, err = a.Min()
		require.NoError(t, err)
		assert.Equal(t, -4.0, lo)
		hi, err = a.Max()
		require.NoError(t, err)
		assert.Equal(t, 10.0, hi)
	})

	t.Run("empty array", func(t *testing.T) {
		t.Parallel()
		a, err := array.From([]float64{})
		require.NoError(t, err)
		_, _, err = a.Bounds()
		assert.ErrorIs(t, err, array.ErrEmpty)
	})

	t.Run("nan", func(t *testing.T) {
		t.Parallel()
		a, err := array.From([]float64{1, math.NaN()})
		require.NoError(t, err)
		_, err = a.Max()
		assert.ErrorIs(t, err, array.ErrNaN)
	})
}

type shaped struct{}

func (shaped) Shape() []int { return []int{4, 5} }

func TestShapeOf(t *testing.T) {
	t.Parallel()

	shape, err := array.ShapeOf(shaped{})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, shape)

	shape, err = array.ShapeOf([][]int{{1}, {2}, {3}})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, shape)

	_, err = array.ShapeOf("nope")
	assert.ErrorIs(t, err, array.ErrNotNumeric)
}
