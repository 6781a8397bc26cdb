package check

import (
	"fmt"

	"github.com/dmitrymomot/imdm/pkg/result"
)

// Check is a unit of comparison. Unpack projects the input into the domain of
// the target, Compare decides whether the projection matches.
type Check interface {
	Unpack(x any) (any, error)
	Compare(v any) bool
}

// Optional is implemented by checks whose target may be unset.
type Optional interface {
	Applicable() bool
}

// Describer supplies the messages reported on success and on failure.
type Describer interface {
	Messages() (success, failure string)
}

// Detailer adds a description of the unpacked value to a failure message.
type Detailer interface {
	Detail(v any) string
}

// NotApplicable is a check that is never applicable. Validators use it for
// built-in checks that were not configured.
var NotApplicable Check = notApplicable{}

type notApplicable struct{}

func (notApplicable) Unpack(x any) (any, error) { return x, nil }
func (notApplicable) Compare(any) bool          { return false }
func (notApplicable) Applicable() bool          { return false }

// IsApplicable reports whether c has a target to compare against.
func IsApplicable(c Check) bool {
	if c == nil {
		return false
	}
	if o, ok := c.(Optional); ok {
		return o.Applicable()
	}
	return true
}

// Evaluate runs c against x. Inapplicable checks return result.Skipped without
// calling either hook. Unpack errors and panics are reported as failures.
func Evaluate(c Check, x any) (out result.Outcome) {
	if !IsApplicable(c) {
		return result.Skipped()
	}

	success, failure := "check passed", "check failed"
	if d, ok := c.(Describer); ok {
		success, failure = d.Messages()
	}

	defer func() {
		if r := recover(); r != nil {
			out = result.Failed(join(failure, fmt.Sprintf("panic: %v", r)))
		}
	}()

	v, err := c.Unpack(x)
	if err != nil {
		return result.Failed(join(failure, err.Error()))
	}
	if c.Compare(v) {
		return result.Passed(success)
	}
	if d, ok := c.(Detailer); ok {
		return result.Failed(join(failure, d.Detail(v)))
	}
	return result.Failed(failure)
}

func join(msg, detail string) string {
	switch {
	case detail == "":
		return msg
	case msg == "":
		return detail
	}
	return msg + ": " + detail
}
