// Package array provides the small numeric array primitive used by shape,
// dtype and range checks: a flat row-major float64 buffer with a shape and the
// name of the element type it was decoded from.
//
// Decoders in the formats package produce Array values directly. Plain Go
// values – numbers, booleans and rectangular (nested) slices or arrays of
// numbers – are converted with From. Min and max reductions are delegated to
// gonum's floats package.
//
// # Usage
//
//	a, err := array.From([][]int16{{1, 2, 3}, {4, 5, 6}})
//	if err != nil {
//	    return err
//	}
//	a.Shape() // [2 3]
//	a.DType() // "int16"
//	lo, hi, err := a.Bounds() // 1, 6, nil
package array
