package formats

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sbinet/npyio"

	"github.com/dmitrymomot/imdm/pkg/array"
)

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

func readNumbers[T number](r *npyio.Reader) ([]float64, error) {
	var v []T
	if err := r.Read(&v); err != nil {
		return nil, err
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out, nil
}

func readBools(r *npyio.Reader) ([]float64, error) {
	var v []bool
	if err := r.Read(&v); err != nil {
		return nil, err
	}
	out := make([]float64, len(v))
	for i, b := range v {
		if b {
			out[i] = 1
		}
	}
	return out, nil
}

var npyReaders = map[string]struct {
	dtype string
	read  func(*npyio.Reader) ([]float64, error)
}{
	"b1": {"bool", readBools},
	"i1": {"int8", readNumbers[int8]},
	"i2": {"int16", readNumbers[int16]},
	"i4": {"int32", readNumbers[int32]},
	"i8": {"int64", readNumbers[int64]},
	"u1": {"uint8", readNumbers[uint8]},
	"u2": {"uint16", readNumbers[uint16]},
	"u4": {"uint32", readNumbers[uint32]},
	"u8": {"uint64", readNumbers[uint64]},
	"f4": {"float32", readNumbers[float32]},
	"f8": {"float64", readNumbers[float64]},
}

func decodeNumpy(data []byte) (array.Array, error) {
	r, err := npyio.NewReader(bytes.NewReader(data))
	if err != nil {
		return array.Array{}, fmt.Errorf("%w: npy: %v", ErrDecodeFailed, err)
	}

	descr := r.Header.Descr
	code := strings.TrimLeft(descr.Type, "<>|=")
	rd, ok := npyReaders[code]
	if !ok {
		return array.Array{}, fmt.Errorf("%w: npy dtype %q", ErrUnsupportedFormat, descr.Type)
	}

	values, err := rd.read(r)
	if err != nil {
		return array.Array{}, fmt.Errorf("%w: npy: %v", ErrDecodeFailed, err)
	}
	if descr.Fortran {
		values = rowMajor(values, descr.Shape)
	}
	a, err := array.New(values, descr.Shape, rd.dtype)
	if err != nil {
		return array.Array{}, fmt.Errorf("%w: npy: %v", ErrDecodeFailed, err)
	}
	return a, nil
}

// rowMajor reorders column-major values of the given shape into row-major
// order.
func rowMajor(values []float64, shape []int) []float64 {
	if len(shape) < 2 {
		return values
	}
	out := make([]float64, len(values))
	idx := make([]int, len(shape))
	for i := range out {
		// i is the row-major position; compute its column-major offset.
		off, stride := 0, 1
		for d := range shape {
			off += idx[d] * stride
			stride *= shape[d]
		}
		out[i] = values[off]
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out
}
