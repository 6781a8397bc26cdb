package schema

import "errors"

var (
	ErrInvalidSchema = errors.New("invalid schema")
	ErrLoadFailed    = errors.New("failed to load schema")
)
