package model

import "errors"

var (
	ErrEmptyName      = errors.New("field name is empty")
	ErrNilNode        = errors.New("field node is nil")
	ErrDuplicateField = errors.New("field already defined")
	ErrReservedName   = errors.New("field name is reserved")
	ErrCycle          = errors.New("field structure contains a cycle")

	ErrNotMapping   = errors.New("sample is not a mapping")
	ErrNotSequence  = errors.New("value is not a sequence")
	ErrSampleAccess = errors.New("sample access failed")
)
