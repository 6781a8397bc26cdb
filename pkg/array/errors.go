package array

import "errors"

var (
	ErrNotNumeric    = errors.New("value is not numeric")
	ErrEmpty         = errors.New("array is empty")
	ErrRagged        = errors.New("nested sequences have different lengths")
	ErrShapeMismatch = errors.New("shape does not match data length")
	ErrNaN           = errors.New("array contains NaN")
)
