package result

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidStatus is returned when decoding an unknown status value.
	ErrInvalidStatus = errors.New("invalid status")
)

// ValidationError is one failed check, addressed by its dotted field path.
type ValidationError struct {
	Field   string
	Check   string
	Message string
}

func (e ValidationError) String() string {
	name := e.Check
	if e.Field != "" {
		name = e.Field + "." + e.Check
	}
	if e.Message == "" {
		return name
	}
	return name + ": " + e.Message
}

// ValidationErrors collects failed checks and satisfies the error interface.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(ve))
	for i, err := range ve {
		parts[i] = err.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether any check of field failed.
func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Get returns the failure messages of field.
func (ve ValidationErrors) Get(field string) []string {
	var messages []string
	for _, err := range ve {
		if err.Field == field {
			messages = append(messages, err.Message)
		}
	}
	return messages
}

// Fields returns the failed fields in first-seen order.
func (ve ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, err := range ve {
		if !seen[err.Field] {
			fields = append(fields, err.Field)
			seen[err.Field] = true
		}
	}
	return fields
}

// ExtractValidationErrors extracts ValidationErrors from an error chain.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// Err returns the failed checks as ValidationErrors under field, or nil when
// nothing failed.
func (c *Checks) Err(field string) error {
	var ve ValidationErrors
	for name, o := range c.All() {
		if o.Status == Fail {
			ve = append(ve, ValidationError{Field: field, Check: name, Message: o.Message})
		}
	}
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// Err returns every failed check of the tree as ValidationErrors, or nil when
// nothing failed.
func (t *Tree) Err() error {
	var ve ValidationErrors
	t.Walk(func(path []string, check string, o Outcome) {
		if o.Status == Fail {
			ve = append(ve, ValidationError{Field: strings.Join(path, "."), Check: check, Message: o.Message})
		}
	})
	if len(ve) == 0 {
		return nil
	}
	return ve
}
