package check_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/imdm/pkg/array"
	"github.com/dmitrymomot/imdm/pkg/check"
	"github.com/dmitrymomot/imdm/pkg/result"
)

// countingCheck records hook calls.
type countingCheck struct {
	applicable bool
	unpacked   int
	compared   int
}

func (c *countingCheck) Applicable() bool { return c.applicable }
func (c *countingCheck) Unpack(x any) (any, error) {
	c.unpacked++
	return x, nil
}
func (c *countingCheck) Compare(any) bool {
	c.compared++
	return true
}

type equalCheck struct{ target any }

func (c equalCheck) Unpack(x any) (any, error) { return x, nil }
func (c equalCheck) Compare(v any) bool        { return v == c.target }

type panicCheck struct{}

func (panicCheck) Unpack(any) (any, error) { panic("boom") }
func (panicCheck) Compare(any) bool        { return true }

type failingUnpack struct{}

func (failingUnpack) Unpack(any) (any, error) { return nil, errors.New("cannot read") }
func (failingUnpack) Compare(any) bool        { return true }
func (failingUnpack) Messages() (string, string) {
	return "readable", "unreadable"
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	t.Run("unset target short circuits", func(t *testing.T) {
		t.Parallel()
		c := &countingCheck{}
		for _, x := range []any{nil, 1, "x", []int{1}} {
			assert.Equal(t, result.Skipped(), check.Evaluate(c, x))
		}
		assert.Zero(t, c.unpacked)
		assert.Zero(t, c.compared)
	})

	t.Run("not applicable sentinel", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, result.NotApplicable, check.Evaluate(check.NotApplicable, 42).Status)
		assert.Equal(t, result.NotApplicable, check.Evaluate(nil, 42).Status)
		assert.False(t, check.IsApplicable(check.NotApplicable))
	})

	t.Run("default messages", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, result.Passed("check passed"), check.Evaluate(equalCheck{target: 3}, 3))
		assert.Equal(t, result.Failed("check failed"), check.Evaluate(equalCheck{target: 3}, 4))
	})

	t.Run("unpack error becomes failure", func(t *testing.T) {
		t.Parallel()
		out := check.Evaluate(failingUnpack{}, "x")
		assert.Equal(t, result.Fail, out.Status)
		assert.Equal(t, "unreadable: cannot read", out.Message)
	})

	t.Run("panic becomes failure", func(t *testing.T) {
		t.Parallel()
		out := check.Evaluate(panicCheck{}, "x")
		assert.Equal(t, result.Fail, out.Status)
		assert.Contains(t, out.Message, "panic: boom")
	})

	t.Run("evaluation keeps no state", func(t *testing.T) {
		t.Parallel()
		c := check.Between(-10, 10)
		first := check.Evaluate(c, 11)
		check.Evaluate(c, 5)
		assert.Equal(t, first, check.Evaluate(c, 11))
	})
}

func TestType(t *testing.T) {
	t.Parallel()

	t.Run("membership", func(t *testing.T) {
		t.Parallel()
		c := check.Type(reflect.TypeFor[string](), reflect.TypeFor[int]())
		assert.Equal(t, result.Pass, check.Evaluate(c, "test_string").Status)
		assert.Equal(t, result.Pass, check.Evaluate(c, 3).Status)

		out := check.Evaluate(c, 3.5)
		assert.Equal(t, result.Fail, out.Status)
		assert.Contains(t, out.Message, "got float64")
		assert.Equal(t, result.Fail, check.Evaluate(c, nil).Status)
	})

	t.Run("interface target", func(t *testing.T) {
		t.Parallel()
		c := check.TypeOf[fmt.Stringer]()
		assert.Equal(t, result.Pass, check.Evaluate(c, reflect.TypeFor[int]()).Status)
		assert.Equal(t, result.Fail, check.Evaluate(c, 1).Status)
	})

	t.Run("no types is not applicable", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, result.NotApplicable, check.Evaluate(check.Type(nil), 1).Status)
	})
}

type sized struct{ n int }

func (s sized) Len() int { return s.n }

func TestLength(t *testing.T) {
	t.Parallel()

	c := check.Length(3)
	for _, x := range []any{"abc", "héé", []int{1, 2, 3}, [3]bool{}, map[int]int{1: 1, 2: 2, 3: 3}, sized{3}} {
		assert.Equal(t, result.Pass, check.Evaluate(c, x).Status, "%#v", x)
	}
	assert.Equal(t, result.Fail, check.Evaluate(c, "abcd").Status)

	out := check.Evaluate(c, 12)
	assert.Equal(t, result.Fail, out.Status)
	assert.Contains(t, out.Message, check.ErrNoLength.Error())

	assert.PanicsWithError(t, "invalid check target: negative length -1", func() { check.Length(-1) })
}

func TestDType(t *testing.T) {
	t.Parallel()

	c := check.DType("uint8")
	assert.Equal(t, result.Pass, check.Evaluate(c, []uint8{1, 2}).Status)
	assert.Equal(t, result.Fail, check.Evaluate(c, []float32{1}).Status)
	assert.Equal(t, result.Fail, check.Evaluate(c, "text").Status)
	assert.Equal(t, result.NotApplicable, check.Evaluate(check.DType(""), []uint8{1}).Status)

	a, err := array.New([]float64{1}, []int{1}, "int16")
	require.NoError(t, err)
	assert.Equal(t, result.Pass, check.Evaluate(check.DType("int16"), a).Status)
}

func zeros(dims ...int) array.Array {
	n := 1
	for _, d := range dims {
		n *= d
	}
	a, err := array.New(make([]float64, n), dims, "")
	if err != nil {
		panic(err)
	}
	return a
}

func TestShape(t *testing.T) {
	t.Parallel()

	t.Run("wildcard axis", func(t *testing.T) {
		t.Parallel()
		c := check.Shape(3, check.AnyDim, 5)
		assert.Equal(t, result.Pass, check.Evaluate(c, zeros(3, 99, 5)).Status)

		out := check.Evaluate(c, zeros(3, 99, 6))
		assert.Equal(t, result.Fail, out.Status)
		assert.Equal(t, "shape does not match (3, *, 5): got (3, 99, 6)", out.Message)
	})

	t.Run("nested slices", func(t *testing.T) {
		t.Parallel()
		c := check.Shape(2, 3)
		assert.Equal(t, result.Pass, check.Evaluate(c, [][]int{{1, 2, 3}, {4, 5, 6}}).Status)
		assert.Equal(t, result.Fail, check.Evaluate(c, [][]int{{1, 2}, {3}}).Status)
	})

	t.Run("no dims is not applicable", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, result.NotApplicable, check.Evaluate(check.Shape(), zeros(1)).Status)
	})

	t.Run("invalid dim panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { check.Shape(3, -7) })
	})
}

func TestMatchShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern []int
		shape   []int
		want    bool
	}{
		{"exact", []int{3, 4}, []int{3, 4}, true},
		{"rank differs", []int{3, 4}, []int{3, 4, 1}, false},
		{"any dim", []int{check.AnyDim, 4}, []int{7, 4}, true},
		{"any dim needs an axis", []int{check.AnyDim}, []int{}, false},
		{"any dims empty run", []int{check.AnyDims, 3}, []int{3}, true},
		{"any dims long run", []int{check.AnyDims, 3}, []int{1, 2, 3}, true},
		{"any dims middle", []int{1, check.AnyDims, 3}, []int{1, 9, 9, 3}, true},
		{"any dims tail mismatch", []int{1, check.AnyDims, 3}, []int{1, 9, 4}, false},
		{"only any dims", []int{check.AnyDims}, []int{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, check.MatchShape(tt.pattern, tt.shape))
		})
	}
}

func TestRange(t *testing.T) {
	t.Parallel()

	t.Run("inclusive bounds", func(t *testing.T) {
		t.Parallel()
		c := check.Between(-10, 10)
		assert.Equal(t, result.Pass, check.Evaluate(c, 5).Status)
		assert.Equal(t, result.Fail, check.Evaluate(c, 11).Status)
		assert.Equal(t, result.Pass, check.Evaluate(c, -10).Status)
		assert.Equal(t, result.Pass, check.Evaluate(c, []float64{-10, 0, 10}).Status)
	})

	t.Run("open bounds", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, result.Pass, check.Evaluate(check.AtLeast(0), []int{0, 1e6}).Status)
		assert.Equal(t, result.Fail, check.Evaluate(check.AtLeast(0), []int{-1, 1}).Status)
		assert.Equal(t, result.Pass, check.Evaluate(check.AtMost(1), []float64{-5, 1}).Status)
		assert.Equal(t, result.NotApplicable, check.Evaluate(check.Range(check.Bounds{}), 1).Status)
	})

	t.Run("empty and non numeric input fail", func(t *testing.T) {
		t.Parallel()
		c := check.Between(0, 1)

		out := check.Evaluate(c, []float64{})
		assert.Equal(t, result.Fail, out.Status)
		assert.Contains(t, out.Message, array.ErrEmpty.Error())

		out = check.Evaluate(c, "abc")
		assert.Equal(t, result.Fail, out.Status)
		assert.Contains(t, out.Message, array.ErrNotNumeric.Error())
	})

	t.Run("failure names the extremes", func(t *testing.T) {
		t.Parallel()
		out := check.Evaluate(check.Between(-10, 10), []int{-3, 11})
		assert.Equal(t, "values are not within [-10, 10]: got min -3, max 11", out.Message)
	})

	t.Run("invalid bounds panic", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { check.Between(2, 1) })
	})
}

func TestPathExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "scan.dcm")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o600))

	c := check.PathExists(nil)
	assert.Equal(t, result.Pass, check.Evaluate(c, existing).Status)
	assert.Equal(t, result.Fail, check.Evaluate(c, filepath.Join(dir, "missing.dcm")).Status)
	assert.Equal(t, result.Fail, check.Evaluate(c, "").Status)

	out := check.Evaluate(c, 42)
	assert.Equal(t, result.Fail, out.Status)
	assert.Contains(t, out.Message, check.ErrNotPath.Error())
}

func TestPredicate(t *testing.T) {
	t.Parallel()

	t.Run("untyped", func(t *testing.T) {
		t.Parallel()
		c := check.Predicate("non-nil", func(x any) bool { return x != nil })
		assert.Equal(t, result.Passed("non-nil holds"), check.Evaluate(c, 1))
		assert.Equal(t, result.Failed("non-nil does not hold"), check.Evaluate(c, nil))
		assert.Equal(t, result.NotApplicable, check.Evaluate(check.Predicate("nil", nil), 1).Status)
	})

	t.Run("typed", func(t *testing.T) {
		t.Parallel()
		c := check.PredicateOf("even", func(n int) bool { return n%2 == 0 })
		assert.Equal(t, result.Pass, check.Evaluate(c, 4).Status)
		assert.Equal(t, result.Fail, check.Evaluate(c, 3).Status)

		out := check.Evaluate(c, "4")
		assert.Equal(t, result.Fail, out.Status)
		assert.Contains(t, out.Message, check.ErrUnexpectedType.Error())
	})

	t.Run("assert", func(t *testing.T) {
		t.Parallel()
		c := check.Assert("positive", func(x any) error {
			if n, _ := x.(int); n <= 0 {
				return fmt.Errorf("%v is not positive", x)
			}
			return nil
		})
		assert.Equal(t, result.Pass, check.Evaluate(c, 1).Status)
		assert.Equal(t, result.Failed("positive does not hold: -1 is not positive"), check.Evaluate(c, -1))
	})
}

func TestExpr(t *testing.T) {
	t.Parallel()

	t.Run("array environment", func(t *testing.T) {
		t.Parallel()
		c := check.MustExpr("size == 6 && shape[0] == 2 && all(data, # <= 6)")
		assert.Equal(t, result.Pass, check.Evaluate(c, [][]int{{1, 2, 3}, {4, 5, 6}}).Status)
		assert.Equal(t, result.Fail, check.Evaluate(c, [][]int{{1, 2, 3}, {4, 5, 7}}).Status)
	})

	t.Run("scalar value", func(t *testing.T) {
		t.Parallel()
		c := check.MustExpr(`value startsWith "CT"`)
		assert.Equal(t, result.Pass, check.Evaluate(c, "CT_0001").Status)
		assert.Equal(t, result.Fail, check.Evaluate(c, "MR_0001").Status)
	})

	t.Run("compile error", func(t *testing.T) {
		t.Parallel()
		_, err := check.Expr("unknown_var > 1")
		assert.ErrorIs(t, err, check.ErrInvalidExpression)

		_, err = check.Expr("1 + 1")
		assert.ErrorIs(t, err, check.ErrInvalidExpression)
	})
}

type tags map[string]string

func (t tags) Lookup(key string) (string, bool) {
	v, ok := t[key]
	return v, ok
}

func TestMetadata(t *testing.T) {
	t.Parallel()

	c := check.Metadata(map[string]string{"Modality": "CT", "PatientID": "42"})
	assert.Equal(t, result.Pass, check.Evaluate(c, tags{"Modality": "CT", "PatientID": "42", "Extra": "x"}).Status)
	assert.Equal(t, result.Pass, check.Evaluate(c, map[string]any{"Modality": "CT", "PatientID": 42}).Status)

	out := check.Evaluate(c, tags{"Modality": "MR"})
	assert.Equal(t, result.Fail, out.Status)
	assert.Equal(t, `metadata does not match: Modality is "MR", want "CT"; PatientID is missing`, out.Message)

	out = check.Evaluate(c, 3)
	assert.Equal(t, result.Fail, out.Status)
	assert.Contains(t, out.Message, check.ErrNoMetadata.Error())

	assert.Equal(t, result.NotApplicable, check.Evaluate(check.Metadata(nil), tags{}).Status)
}
