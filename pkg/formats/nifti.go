package formats

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/imdm/pkg/array"
)

// NIfTI-1 single-file header layout.
const (
	niftiHeaderSize = 348
	niftiMagicAt    = 344
)

// NIfTI datatype codes.
const (
	niftiUint8   = 2
	niftiInt16   = 4
	niftiInt32   = 8
	niftiFloat32 = 16
	niftiFloat64 = 64
	niftiRGB24   = 128
	niftiInt8    = 256
	niftiUint16  = 512
	niftiUint32  = 768
	niftiInt64   = 1024
	niftiUint64  = 1280
	niftiRGBA32  = 2304
)

type niftiType struct {
	dtype    string
	size     int // bytes per component
	channels int
}

var niftiTypes = map[int16]niftiType{
	niftiUint8:   {"uint8", 1, 1},
	niftiInt8:    {"int8", 1, 1},
	niftiInt16:   {"int16", 2, 1},
	niftiUint16:  {"uint16", 2, 1},
	niftiInt32:   {"int32", 4, 1},
	niftiUint32:  {"uint32", 4, 1},
	niftiInt64:   {"int64", 8, 1},
	niftiUint64:  {"uint64", 8, 1},
	niftiFloat32: {"float32", 4, 1},
	niftiFloat64: {"float64", 8, 1},
	niftiRGB24:   {"uint8", 1, 3},
	niftiRGBA32:  {"uint8", 1, 4},
}

// NIfTI is a decoded single-file NIfTI-1 volume (.nii or .nii.gz).
type NIfTI struct {
	Path     string
	Datatype int16
	// Dims are the voxel dimensions in file order (x, y, z, ...).
	Dims   []int
	PixDim []float64
	Slope  float64
	Inter  float64

	descrip string
	order   binary.ByteOrder
	typ     niftiType
	voxels  []byte
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

func decodeNIfTI(path string, data []byte, maxBytes int64) (*NIfTI, error) {
	if isGzip(data) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: nifti %s: %v", ErrDecodeFailed, path, err)
		}
		inflated, err := io.ReadAll(io.LimitReader(zr, maxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("%w: nifti %s: %v", ErrDecodeFailed, path, err)
		}
		if int64(len(inflated)) > maxBytes {
			return nil, fmt.Errorf("%w: nifti %s: inflated size exceeds %d bytes", ErrDecodeFailed, path, maxBytes)
		}
		data = inflated
	}

	if len(data) < niftiHeaderSize {
		return nil, fmt.Errorf("%w: nifti %s: header truncated", ErrDecodeFailed, path)
	}
	if magic := string(data[niftiMagicAt : niftiMagicAt+4]); magic != "n+1\x00" {
		return nil, fmt.Errorf("%w: nifti %s: bad magic %q", ErrDecodeFailed, path, magic)
	}

	var order binary.ByteOrder = binary.LittleEndian
	if order.Uint32(data[0:4]) != niftiHeaderSize {
		order = binary.BigEndian
		if order.Uint32(data[0:4]) != niftiHeaderSize {
			return nil, fmt.Errorf("%w: nifti %s: bad header size", ErrDecodeFailed, path)
		}
	}

	n := &NIfTI{Path: path, order: order}
	ndim := int(int16(order.Uint16(data[40:42])))
	if ndim < 1 || ndim > 7 {
		return nil, fmt.Errorf("%w: nifti %s: invalid dimension count %d", ErrDecodeFailed, path, ndim)
	}
	n.Dims = make([]int, ndim)
	n.PixDim = make([]float64, ndim)
	count := 1
	for i := range ndim {
		d := int(int16(order.Uint16(data[42+2*i:])))
		if d < 1 {
			return nil, fmt.Errorf("%w: nifti %s: dimension %d is %d", ErrDecodeFailed, path, i+1, d)
		}
		n.Dims[i] = d
		n.PixDim[i] = float64(math.Float32frombits(order.Uint32(data[76+4*(i+1):])))
		count *= d
	}

	n.Datatype = int16(order.Uint16(data[70:72]))
	typ, ok := niftiTypes[n.Datatype]
	if !ok {
		return nil, fmt.Errorf("%w: nifti %s: datatype %d", ErrUnsupportedFormat, path, n.Datatype)
	}
	n.typ = typ

	offset := int(math.Float32frombits(order.Uint32(data[108:112])))
	if offset < niftiHeaderSize {
		offset = niftiHeaderSize
	}
	size := count * typ.size * typ.channels
	if offset+size > len(data) {
		return nil, fmt.Errorf("%w: nifti %s: voxel data truncated", ErrDecodeFailed, path)
	}
	n.voxels = data[offset : offset+size]

	n.Slope = float64(math.Float32frombits(order.Uint32(data[112:116])))
	n.Inter = float64(math.Float32frombits(order.Uint32(data[116:120])))
	n.descrip = strings.TrimRight(string(data[148:228]), "\x00 ")
	return n, nil
}

// Len returns the number of voxels.
func (n *NIfTI) Len() int {
	count := 1
	for _, d := range n.Dims {
		count *= d
	}
	return count
}

// Shape returns the array shape: dimensions reversed to slowest-first, with
// a trailing channel axis for RGB volumes.
func (n *NIfTI) Shape() []int {
	shape := slices.Clone(n.Dims)
	slices.Reverse(shape)
	if n.typ.channels > 1 {
		shape = append(shape, n.typ.channels)
	}
	return shape
}

// DType returns the element type after intensity scaling.
func (n *NIfTI) DType() string {
	if n.scaled() {
		return "float64"
	}
	return n.typ.dtype
}

func (n *NIfTI) scaled() bool {
	return n.Slope != 0 && (n.Slope != 1 || n.Inter != 0)
}

// Lookup returns header fields by name: descrip, datatype, ndim, dim,
// pixdim, scl_slope and scl_inter. Lists are joined with a backslash.
func (n *NIfTI) Lookup(key string) (string, bool) {
	switch key {
	case "descrip":
		return n.descrip, true
	case "datatype":
		return strconv.Itoa(int(n.Datatype)), true
	case "ndim":
		return strconv.Itoa(len(n.Dims)), true
	case "dim":
		parts := make([]string, len(n.Dims))
		for i, d := range n.Dims {
			parts[i] = strconv.Itoa(d)
		}
		return strings.Join(parts, `\`), true
	case "pixdim":
		parts := make([]string, len(n.PixDim))
		for i, d := range n.PixDim {
			parts[i] = strconv.FormatFloat(d, 'g', -1, 64)
		}
		return strings.Join(parts, `\`), true
	case "scl_slope":
		return strconv.FormatFloat(n.Slope, 'g', -1, 64), true
	case "scl_inter":
		return strconv.FormatFloat(n.Inter, 'g', -1, 64), true
	}
	return "", false
}

// Array returns the voxels with scl_slope and scl_inter applied. Voxels are
// stored x-fastest, so the data is already row-major for the reversed shape.
func (n *NIfTI) Array() (array.Array, error) {
	width := n.typ.size
	data := make([]float64, len(n.voxels)/width)
	for i := range data {
		data[i] = n.component(n.voxels[i*width : (i+1)*width])
	}
	if n.scaled() {
		for i, v := range data {
			data[i] = v*n.Slope + n.Inter
		}
	}
	return array.New(data, n.Shape(), n.DType())
}

func (n *NIfTI) component(b []byte) float64 {
	switch n.typ.dtype {
	case "uint8":
		return float64(b[0])
	case "int8":
		return float64(int8(b[0]))
	case "int16":
		return float64(int16(n.order.Uint16(b)))
	case "uint16":
		return float64(n.order.Uint16(b))
	case "int32":
		return float64(int32(n.order.Uint32(b)))
	case "uint32":
		return float64(n.order.Uint32(b))
	case "int64":
		return float64(int64(n.order.Uint64(b)))
	case "uint64":
		return float64(n.order.Uint64(b))
	case "float32":
		return float64(math.Float32frombits(n.order.Uint32(b)))
	case "float64":
		return math.Float64frombits(n.order.Uint64(b))
	}
	return math.NaN()
}
