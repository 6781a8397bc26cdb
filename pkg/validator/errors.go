package validator

import "errors"

var (
	ErrEmptyName      = errors.New("check name is empty")
	ErrNilCheck       = errors.New("check is nil")
	ErrInvalidStage   = errors.New("invalid stage")
	ErrDuplicateCheck = errors.New("check already registered")

	// Pipeline errors; their text prefixes the failure messages of dependent checks.
	ErrPreprocessFailed = errors.New("preprocess failed")
	ErrValueFailed      = errors.New("value extraction failed")
)
