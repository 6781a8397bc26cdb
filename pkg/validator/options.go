package validator

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/dmitrymomot/imdm/pkg/check"
	"github.com/dmitrymomot/imdm/pkg/logger"
)

// Func transforms the data of one stage into the data of the next.
type Func func(any) (any, error)

// Option configures a Validator.
type Option func(*config)

type extraCheck struct {
	name  string
	check check.Check
	stage Stage
}

type config struct {
	typ        check.Check
	length     check.Check
	shape      check.Check
	rng        check.Check
	dtype      check.Check
	preprocess Func
	value      Func
	extra      []extraCheck
	strict     bool
	logger     *slog.Logger
}

// WithType sets the accepted types of the preprocessed data.
func WithType(types ...reflect.Type) Option {
	return func(c *config) {
		c.typ = check.Type(types...)
	}
}

// WithTypeOf is WithType for a single static type.
func WithTypeOf[T any]() Option {
	return func(c *config) {
		c.typ = check.TypeOf[T]()
	}
}

// WithLength sets the exact length of the preprocessed data.
// It panics if n is negative.
func WithLength(n int) Option {
	return func(c *config) {
		c.length = check.Length(n)
	}
}

// WithShape sets the shape pattern of the value. See check.Shape.
func WithShape(dims ...int) Option {
	return func(c *config) {
		c.shape = check.Shape(dims...)
	}
}

// WithRange sets inclusive bounds on the value; nil leaves a side open.
func WithRange(lo, hi *float64) Option {
	return func(c *config) {
		c.rng = check.Range(check.Bounds{Min: lo, Max: hi})
	}
}

// WithDType sets the element type of the value and registers the dtype check.
func WithDType(name string) Option {
	return func(c *config) {
		c.dtype = check.DType(name)
	}
}

// WithPreprocess sets the raw to preprocessed transformation.
func WithPreprocess(fn Func) Option {
	return func(c *config) {
		c.preprocess = fn
	}
}

// WithValue sets the preprocessed to value transformation.
func WithValue(fn Func) Option {
	return func(c *config) {
		c.value = fn
	}
}

// WithCheck registers an additional check after the built-ins. New panics if
// the registration is invalid; use AddCheck to handle the error.
func WithCheck(name string, ch check.Check, stage Stage) Option {
	return func(c *config) {
		c.extra = append(c.extra, extraCheck{name: name, check: ch, stage: stage})
	}
}

// WithStrict stops the pipeline at the first stage with a failing check.
func WithStrict() Option {
	return func(c *config) {
		c.strict = true
	}
}

// WithLogger sets the logger used to report stage failures at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		typ:    check.NotApplicable,
		length: check.NotApplicable,
		shape:  check.NotApplicable,
		rng:    check.NotApplicable,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func mustRegister(v *Validator, extra []extraCheck) {
	for _, e := range extra {
		if err := v.AddCheck(e.name, e.check, e.stage); err != nil {
			panic(fmt.Errorf("validator: %w", err))
		}
	}
}
