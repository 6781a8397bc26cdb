package validator_test

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/imdm/pkg/check"
	"github.com/dmitrymomot/imdm/pkg/result"
	"github.com/dmitrymomot/imdm/pkg/validator"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("built-ins are always registered", func(t *testing.T) {
		t.Parallel()
		v := validator.New()
		assert.Equal(t, []string{"type", "length", "shape", "range"}, v.Names())

		res := v.Validate("anything")
		for _, name := range v.Names() {
			assert.Equal(t, result.NotApplicable, res.Status(name), name)
		}
	})

	t.Run("dtype only when configured", func(t *testing.T) {
		t.Parallel()
		v := validator.New(validator.WithDType("uint8"))
		assert.Equal(t, []string{"type", "length", "shape", "range", "dtype"}, v.Names())
	})

	t.Run("default stages", func(t *testing.T) {
		t.Parallel()
		v := validator.New(validator.WithDType("uint8"))
		for name, want := range validator.DefaultStages() {
			got, ok := v.Stage(name)
			require.True(t, ok, name)
			assert.Equal(t, want, got, name)
		}
		stage, _ := v.Stage("type")
		assert.Equal(t, validator.Preprocessed, stage)
		stage, _ = v.Stage("range")
		assert.Equal(t, validator.Value, stage)
	})

	t.Run("with check panics on duplicates", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			validator.New(validator.WithCheck("type", check.Length(1), validator.Raw))
		})
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("string validator", func(t *testing.T) {
		t.Parallel()
		v := validator.New(validator.WithTypeOf[string](), validator.WithLength(11))
		res := v.Validate("test_string")

		assert.Equal(t, map[string]result.Status{
			"type":   result.Pass,
			"length": result.Pass,
			"shape":  result.NotApplicable,
			"range":  result.NotApplicable,
		}, res.Statuses())
	})

	t.Run("raw path check", func(t *testing.T) {
		t.Parallel()
		v := validator.New(validator.WithTypeOf[string](), validator.WithLength(11))
		require.NoError(t, v.AddCheck("path", check.PathExists(nil), validator.Raw))

		res := v.Validate(filepath.Join(t.TempDir(), "test_string"))
		assert.Equal(t, result.Fail, res.Status("path"))
		assert.Equal(t, []string{"type", "length", "shape", "range", "path"}, res.Names())
	})

	t.Run("value function error fails value checks", func(t *testing.T) {
		t.Parallel()
		v := validator.New(
			validator.WithTypeOf[string](),
			validator.WithShape(2, 2),
			validator.WithRange(check.Bound(0), nil),
			validator.WithValue(func(any) (any, error) { return nil, errors.New("corrupt header") }),
		)
		res := v.Validate("scan.dcm")

		assert.Equal(t, result.Pass, res.Status("type"))
		assert.Equal(t, result.Fail, res.Status("shape"))
		assert.Equal(t, result.Fail, res.Status("range"))
		assert.Equal(t, "value extraction failed: corrupt header", res.Message("shape"))
		assert.Equal(t, result.NotApplicable, res.Status("length"))
	})

	t.Run("preprocess panic fails dependent stages", func(t *testing.T) {
		t.Parallel()
		valueCalled := false
		v := validator.New(
			validator.WithTypeOf[[]byte](),
			validator.WithShape(check.AnyDims),
			validator.WithPreprocess(func(any) (any, error) { panic("decoder exploded") }),
			validator.WithValue(func(x any) (any, error) {
				valueCalled = true
				return x, nil
			}),
		)
		require.NoError(t, v.AddFunc("non-empty", func(x any) bool { return x != nil }, validator.Raw))

		var res *result.Checks
		require.NotPanics(t, func() { res = v.Validate("broken.png") })

		assert.Equal(t, result.Pass, res.Status("non-empty"))
		assert.Equal(t, result.Fail, res.Status("type"))
		assert.Equal(t, result.Fail, res.Status("shape"))
		assert.Equal(t, "preprocess failed: panic: decoder exploded", res.Message("type"))
		assert.Equal(t, "preprocess failed: panic: decoder exploded", res.Message("shape"))
		assert.False(t, valueCalled)
	})

	t.Run("stages are computed lazily and once", func(t *testing.T) {
		t.Parallel()
		calls := 0
		v := validator.New(
			validator.WithShape(3),
			validator.WithRange(check.Bound(0), check.Bound(10)),
			validator.WithValue(func(x any) (any, error) {
				calls++
				return x, nil
			}),
		)
		res := v.Validate([]int{1, 2, 3})
		assert.True(t, res.OK())
		assert.Equal(t, 1, calls)

		calls = 0
		unused := validator.New(validator.WithValue(func(x any) (any, error) {
			calls++
			return x, nil
		}))
		unused.Validate([]int{1})
		assert.Zero(t, calls)
	})

	t.Run("result order follows registration", func(t *testing.T) {
		t.Parallel()
		v := validator.New()
		require.NoError(t, v.AddFunc("z-value", func(any) bool { return true }, validator.Value))
		require.NoError(t, v.AddFunc("a-raw", func(any) bool { return true }, validator.Raw))
		assert.Equal(t, []string{"type", "length", "shape", "range", "z-value", "a-raw"}, v.Validate(1).Names())
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		v := validator.New(validator.WithRange(check.Bound(-10), check.Bound(10)))
		first := v.Validate([]int{5, 11})
		second := v.Validate([]int{5, 11})
		assert.Equal(t, first, second)
	})
}

func TestStrict(t *testing.T) {
	t.Parallel()

	decoded := false
	v := validator.New(
		validator.WithStrict(),
		validator.WithTypeOf[int](),
		validator.WithRange(check.Bound(0), nil),
		validator.WithValue(func(x any) (any, error) {
			decoded = true
			return x, nil
		}),
	)
	require.NoError(t, v.AddFunc("has-suffix", func(x any) bool {
		s, _ := x.(string)
		return strings.HasSuffix(s, ".npy")
	}, validator.Raw))

	res := v.Validate("volume.dcm")
	assert.Equal(t, result.Fail, res.Status("has-suffix"))
	assert.Equal(t, result.NotApplicable, res.Status("type"))
	assert.Equal(t, result.NotApplicable, res.Status("range"))
	assert.Equal(t, "skipped: an earlier stage failed", res.Message("range"))
	assert.Equal(t, result.NotApplicable, res.Status("length"))
	assert.Empty(t, res.Message("length"))
	assert.False(t, decoded)
}

func TestMissing(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithTypeOf[string]())
	require.NoError(t, v.AddFunc("custom", func(any) bool { return true }, validator.Raw))

	res := v.Missing("field is missing")
	assert.Equal(t, result.Failed("field is missing"), mustGet(t, res, "type"))
	assert.Equal(t, result.Failed("field is missing"), mustGet(t, res, "custom"))
	assert.Equal(t, result.NotApplicable, res.Status("shape"))
	assert.Equal(t, v.Names(), res.Names())
}

func TestSkipped(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithTypeOf[string]())
	res := v.Skipped("structure check failed")
	assert.Equal(t, result.SkippedWith("structure check failed"), mustGet(t, res, "type"))
	assert.Equal(t, result.Skipped(), mustGet(t, res, "shape"))
	assert.True(t, res.OK())
}

func mustGet(t *testing.T, c *result.Checks, name string) result.Outcome {
	t.Helper()
	o, ok := c.Get(name)
	require.True(t, ok, name)
	return o
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("add check errors", func(t *testing.T) {
		t.Parallel()
		v := validator.New()
		assert.ErrorIs(t, v.AddCheck("", check.Length(1), validator.Raw), validator.ErrEmptyName)
		assert.ErrorIs(t, v.AddCheck("x", nil, validator.Raw), validator.ErrNilCheck)
		assert.ErrorIs(t, v.AddCheck("x", check.Length(1), validator.Stage(9)), validator.ErrInvalidStage)
		assert.ErrorIs(t, v.AddCheck("range", check.Length(1), validator.Raw), validator.ErrDuplicateCheck)
		assert.ErrorIs(t, v.AddFunc("f", nil, validator.Raw), validator.ErrNilCheck)
	})

	t.Run("remove and lookup", func(t *testing.T) {
		t.Parallel()
		v := validator.New()
		require.NoError(t, v.AddCheck("len", check.Length(2), validator.Raw))

		c, ok := v.Check("len")
		require.True(t, ok)
		assert.Equal(t, check.Length(2), c)

		assert.True(t, v.RemoveCheck("len"))
		assert.False(t, v.RemoveCheck("len"))
		_, ok = v.Check("len")
		assert.False(t, ok)

		assert.True(t, v.RemoveCheck("type"))
		assert.Equal(t, []string{"length", "shape", "range"}, v.Names())
		assert.Equal(t, 3, v.Len())
	})
}

func TestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	v := validator.New(
		validator.WithLogger(log),
		validator.WithShape(1),
		validator.WithPreprocess(func(any) (any, error) { return nil, errors.New("unreadable") }),
	)
	v.Validate("x")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "stage failed"))
	assert.Contains(t, out, "stage=preprocessed")
	assert.Contains(t, out, "component=validator")
	assert.Contains(t, out, "unreadable")
}
