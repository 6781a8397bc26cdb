package check

import "errors"

var (
	ErrInvalidTarget     = errors.New("invalid check target")
	ErrNoLength          = errors.New("value has no length")
	ErrNotPath           = errors.New("value is not a path")
	ErrUnexpectedType    = errors.New("unexpected value type")
	ErrInvalidExpression = errors.New("invalid expression")
	ErrNoMetadata        = errors.New("value has no metadata")
)
