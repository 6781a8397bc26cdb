package result

import "fmt"

// Status is the verdict of a single check.
type Status int8

const (
	// NotApplicable marks a check without a configured target.
	NotApplicable Status = iota
	// Pass marks a check whose comparison succeeded.
	Pass
	// Fail marks a check whose comparison failed or could not be performed.
	Fail
)

// FromBool converts a comparison result into a Status.
func FromBool(ok bool) Status {
	if ok {
		return Pass
	}
	return Fail
}

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case NotApplicable:
		return "n/a"
	default:
		return fmt.Sprintf("status(%d)", int8(s))
	}
}

// Bool returns the status as a boolean pointer; nil for NotApplicable.
func (s Status) Bool() *bool {
	switch s {
	case Pass:
		v := true
		return &v
	case Fail:
		v := false
		return &v
	default:
		return nil
	}
}

// MarshalJSON encodes Pass and Fail as booleans and NotApplicable as null.
func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case Pass:
		return []byte("true"), nil
	case Fail:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *Status) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*s = Pass
	case "false":
		*s = Fail
	case "null":
		*s = NotApplicable
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, data)
	}
	return nil
}

// Outcome is the result of evaluating one check.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Passed returns a passing outcome.
func Passed(msg string) Outcome {
	return Outcome{Status: Pass, Message: msg}
}

// Failed returns a failing outcome.
func Failed(msg string) Outcome {
	return Outcome{Status: Fail, Message: msg}
}

// Failedf returns a failing outcome with a formatted message.
func Failedf(format string, args ...any) Outcome {
	return Outcome{Status: Fail, Message: fmt.Sprintf(format, args...)}
}

// Skipped returns the not-applicable outcome.
func Skipped() Outcome {
	return Outcome{Status: NotApplicable}
}

// SkippedWith returns a not-applicable outcome that explains why the check
// did not run.
func SkippedWith(msg string) Outcome {
	return Outcome{Status: NotApplicable, Message: msg}
}

func (o Outcome) String() string {
	if o.Message == "" {
		return o.Status.String()
	}
	return o.Status.String() + ": " + o.Message
}
