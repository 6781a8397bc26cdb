package validator

import (
	"fmt"
	"maps"
	"strings"
)

// Stage is a step of the validation pipeline.
type Stage uint8

const (
	Raw Stage = iota
	Preprocessed
	Value
)

// Names of the built-in checks.
const (
	CheckType   = "type"
	CheckLength = "length"
	CheckShape  = "shape"
	CheckRange  = "range"
	CheckDType  = "dtype"
)

var defaultStages = map[string]Stage{
	CheckType:   Preprocessed,
	CheckLength: Preprocessed,
	CheckShape:  Value,
	CheckRange:  Value,
	CheckDType:  Value,
}

// DefaultStages returns the stage each built-in check runs at.
func DefaultStages() map[string]Stage {
	return maps.Clone(defaultStages)
}

func (s Stage) Valid() bool {
	return s <= Value
}

func (s Stage) String() string {
	switch s {
	case Raw:
		return "raw"
	case Preprocessed:
		return "preprocessed"
	case Value:
		return "value"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// ParseStage parses a stage name. "values" and "preprocessed_data" are
// accepted as aliases.
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw":
		return Raw, nil
	case "preprocessed", "preprocessed_data":
		return Preprocessed, nil
	case "value", "values":
		return Value, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStage, s)
}

func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStage, s)
	}
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	v, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
