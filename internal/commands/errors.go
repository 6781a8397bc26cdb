package commands

import "errors"

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidSample    = errors.New("invalid sample")
	ErrInvalidOutput    = errors.New("invalid output format")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrUnknownStorage   = errors.New("unknown storage")
)
