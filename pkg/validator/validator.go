package validator

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/imdm/pkg/check"
	"github.com/dmitrymomot/imdm/pkg/logger"
	"github.com/dmitrymomot/imdm/pkg/result"
)

type entry struct {
	name  string
	check check.Check
	stage Stage
}

// Validator applies named checks to a single field value.
type Validator struct {
	entries    []entry
	preprocess Func
	value      Func
	strict     bool
	logger     *slog.Logger
}

// New builds a field validator. The built-in type, length, shape and range
// checks are always registered, in that order.
func New(opts ...Option) *Validator {
	c := newConfig(opts)
	v := &Validator{
		preprocess: c.preprocess,
		value:      c.value,
		strict:     c.strict,
		logger:     c.logger.With(logger.Component("validator")),
	}

	v.register(CheckType, c.typ)
	v.register(CheckLength, c.length)
	v.register(CheckShape, c.shape)
	v.register(CheckRange, c.rng)
	if c.dtype != nil {
		v.register(CheckDType, c.dtype)
	}
	mustRegister(v, c.extra)
	return v
}

func (v *Validator) register(name string, c check.Check) {
	v.entries = append(v.entries, entry{name: name, check: c, stage: defaultStages[name]})
}

// AddCheck registers a named check at stage.
func (v *Validator) AddCheck(name string, c check.Check, stage Stage) error {
	switch {
	case name == "":
		return ErrEmptyName
	case c == nil:
		return fmt.Errorf("%w: %s", ErrNilCheck, name)
	case !stage.Valid():
		return fmt.Errorf("%w: %d", ErrInvalidStage, stage)
	case v.index(name) >= 0:
		return fmt.Errorf("%w: %s", ErrDuplicateCheck, name)
	}
	v.entries = append(v.entries, entry{name: name, check: c, stage: stage})
	return nil
}

// AddFunc registers a predicate as a named check at stage.
func (v *Validator) AddFunc(name string, fn func(any) bool, stage Stage) error {
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrNilCheck, name)
	}
	return v.AddCheck(name, check.Predicate(name, fn), stage)
}

// RemoveCheck unregisters a check and reports whether it existed.
func (v *Validator) RemoveCheck(name string) bool {
	i := v.index(name)
	if i < 0 {
		return false
	}
	v.entries = slices.Delete(v.entries, i, i+1)
	return true
}

// Names returns check names in registration order.
func (v *Validator) Names() []string {
	names := make([]string, len(v.entries))
	for i, e := range v.entries {
		names[i] = e.name
	}
	return names
}

// Stage returns the stage a check is registered at.
func (v *Validator) Stage(name string) (Stage, bool) {
	if i := v.index(name); i >= 0 {
		return v.entries[i].stage, true
	}
	return 0, false
}

// Check returns the check registered under name.
func (v *Validator) Check(name string) (check.Check, bool) {
	if i := v.index(name); i >= 0 {
		return v.entries[i].check, true
	}
	return nil, false
}

func (v *Validator) Len() int {
	return len(v.entries)
}

func (v *Validator) index(name string) int {
	return slices.IndexFunc(v.entries, func(e entry) bool { return e.name == name })
}

// Validate runs every check against raw and returns the outcomes in
// registration order. It never panics.
func (v *Validator) Validate(raw any) *result.Checks {
	p := &pipeline{v: v, raw: raw}
	outcomes := make([]result.Outcome, len(v.entries))

	halted := false
	for stage := Raw; stage <= Value; stage++ {
		failed := false
		for i, e := range v.entries {
			if e.stage != stage {
				continue
			}
			switch {
			case !check.IsApplicable(e.check):
				outcomes[i] = result.Skipped()
			case halted:
				outcomes[i] = result.SkippedWith("skipped: an earlier stage failed")
			default:
				outcomes[i] = p.evaluate(e)
			}
			if outcomes[i].Status == result.Fail {
				failed = true
			}
		}
		if v.strict && failed {
			halted = true
		}
	}

	out := result.NewChecks()
	for i, e := range v.entries {
		out.Set(e.name, outcomes[i])
	}
	return out
}

// Missing returns the result reported for an absent field: every applicable
// check fails with reason, the others stay not applicable.
func (v *Validator) Missing(reason string) *result.Checks {
	out := result.NewChecks()
	for _, e := range v.entries {
		if check.IsApplicable(e.check) {
			out.Set(e.name, result.Failed(reason))
		} else {
			out.Set(e.name, result.Skipped())
		}
	}
	return out
}

// Skipped returns the result reported for a field whose checks did not run:
// every applicable check is not applicable with reason.
func (v *Validator) Skipped(reason string) *result.Checks {
	out := result.NewChecks()
	for _, e := range v.entries {
		if check.IsApplicable(e.check) {
			out.Set(e.name, result.SkippedWith(reason))
		} else {
			out.Set(e.name, result.Skipped())
		}
	}
	return out
}

// pipeline caches the data of each stage for one Validate call.
type pipeline struct {
	v      *Validator
	raw    any
	values [Value + 1]any
	errs   [Value + 1]error
	done   [Value + 1]bool
}

func (p *pipeline) evaluate(e entry) result.Outcome {
	x, err := p.at(e.stage)
	if err != nil {
		return result.Failed(err.Error())
	}
	return check.Evaluate(e.check, x)
}

func (p *pipeline) at(s Stage) (any, error) {
	if p.done[s] {
		return p.values[s], p.errs[s]
	}
	p.done[s] = true

	switch s {
	case Raw:
		p.values[s] = p.raw
	case Preprocessed:
		p.values[s], p.errs[s] = p.step(Raw, p.v.preprocess, ErrPreprocessFailed)
	case Value:
		p.values[s], p.errs[s] = p.step(Preprocessed, p.v.value, ErrValueFailed)
	}

	if p.errs[s] != nil && (s == Raw || p.errs[s-1] == nil) {
		p.v.logger.Debug("stage failed",
			slog.String("stage", s.String()),
			logger.Error(p.errs[s]),
		)
	}
	return p.values[s], p.errs[s]
}

func (p *pipeline) step(prev Stage, fn Func, sentinel error) (any, error) {
	x, err := p.at(prev)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return x, nil
	}
	out, err := call(fn, x)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel, err)
	}
	return out, nil
}

func call(fn Func, x any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(x)
}
