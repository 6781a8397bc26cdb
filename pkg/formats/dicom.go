package formats

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/dmitrymomot/imdm/pkg/array"
)

// DICOM is a decoded DICOM part 10 file.
type DICOM struct {
	Path    string
	dataset dicom.Dataset
	values  map[string]string
}

func decodeDICOM(path string, data []byte) (*DICOM, error) {
	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dicom %s: %v", ErrDecodeFailed, path, err)
	}

	d := &DICOM{Path: path, dataset: ds, values: make(map[string]string, len(ds.Elements))}
	for _, el := range ds.Elements {
		v, ok := elementString(el)
		if !ok {
			continue
		}
		d.values[tagKey(el.Tag)] = v
		if info, err := tag.Find(el.Tag); err == nil && info.Name != "" {
			d.values[info.Name] = v
		}
	}
	return d, nil
}

func elementString(el *dicom.Element) (string, bool) {
	if el == nil || el.Value == nil {
		return "", false
	}
	switch v := el.Value.GetValue().(type) {
	case []string:
		return strings.Join(v, `\`), true
	case []int:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, `\`), true
	case []float64:
		parts := make([]string, len(v))
		for i, f := range v {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, `\`), true
	}
	return "", false
}

func tagKey(t tag.Tag) string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

// Dataset returns the parsed dataset.
func (d *DICOM) Dataset() dicom.Dataset {
	return d.dataset
}

// Len returns the number of top-level data elements.
func (d *DICOM) Len() int {
	return len(d.dataset.Elements)
}

// Lookup returns the value of a string, integer or float element by keyword
// (e.g. "PatientID") or by tag in "(gggg,eeee)" form. Multi-valued elements
// are joined with a backslash.
func (d *DICOM) Lookup(key string) (string, bool) {
	if strings.HasPrefix(key, "(") {
		key = strings.ToLower(key)
	}
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the known lookup keys in sorted order.
func (d *DICOM) Keys() []string {
	return slices.Sorted(maps.Keys(d.values))
}

// Array decodes the pixel data. A single frame has shape [rows, cols] or
// [rows, cols, samples]; multi-frame files get a leading frame axis. Native
// samples keep their sign (PixelRepresentation) and stored bit depth;
// encapsulated frames go through the codec's image decoder.
func (d *DICOM) Array() (array.Array, error) {
	el, err := d.dataset.FindElementByTag(tag.PixelData)
	if err != nil {
		return array.Array{}, fmt.Errorf("%w: %s", ErrNoPixelData, d.Path)
	}

	var info dicom.PixelDataInfo
	switch v := el.Value.GetValue().(type) {
	case dicom.PixelDataInfo:
		info = v
	case *dicom.PixelDataInfo:
		info = *v
	default:
		return array.Array{}, fmt.Errorf("%w: %s", ErrNoPixelData, d.Path)
	}
	if len(info.Frames) == 0 {
		return array.Array{}, fmt.Errorf("%w: %s", ErrNoPixelData, d.Path)
	}

	px := d.pixelFormat()
	frames := make([]array.Array, 0, len(info.Frames))
	for i, f := range info.Frames {
		a, err := frameArray(f, px)
		if err != nil {
			return array.Array{}, fmt.Errorf("%w: dicom %s frame %d: %v", ErrDecodeFailed, d.Path, i, err)
		}
		frames = append(frames, a)
	}
	return stackFrames(frames)
}

// pixelFormat describes how native samples are stored.
type pixelFormat struct {
	bitsAllocated int
	bitsStored    int
	signed        bool
}

func (d *DICOM) pixelFormat() pixelFormat {
	px := pixelFormat{
		bitsAllocated: d.intValue(tag.BitsAllocated, 0),
		signed:        d.intValue(tag.PixelRepresentation, 0) == 1,
	}
	px.bitsStored = d.intValue(tag.BitsStored, px.bitsAllocated)
	return px
}

func (d *DICOM) intValue(t tag.Tag, def int) int {
	el, err := d.dataset.FindElementByTag(t)
	if err != nil || el.Value == nil {
		return def
	}
	if v, ok := el.Value.GetValue().([]int); ok && len(v) > 0 {
		return v[0]
	}
	return def
}

// dtype returns the array dtype matching the allocated sample width.
func (px pixelFormat) dtype() string {
	bits := px.bitsAllocated
	switch {
	case bits <= 8:
		bits = 8
	case bits <= 16:
		bits = 16
	default:
		bits = 32
	}
	if px.signed {
		return "int" + strconv.Itoa(bits)
	}
	return "uint" + strconv.Itoa(bits)
}

// value interprets a raw sample read as an unsigned integer.
func (px pixelFormat) value(raw int) float64 {
	bits := px.bitsStored
	if bits <= 0 || bits > 32 {
		return float64(raw)
	}
	v := int64(raw) & (1<<bits - 1)
	if px.signed && v&(1<<(bits-1)) != 0 {
		v -= 1 << bits
	}
	return float64(v)
}

func frameArray(f *frame.Frame, px pixelFormat) (array.Array, error) {
	if f.IsEncapsulated() {
		img, err := f.GetImage()
		if err != nil {
			return array.Array{}, err
		}
		return imageArray(img)
	}

	nf, err := f.GetNativeFrame()
	if err != nil {
		return array.Array{}, err
	}
	if px.bitsAllocated == 0 {
		px.bitsAllocated = nf.BitsPerSample
		px.bitsStored = nf.BitsPerSample
	}

	samples := 1
	if len(nf.Data) > 0 {
		samples = len(nf.Data[0])
	}
	data := make([]float64, 0, len(nf.Data)*samples)
	for i, pixel := range nf.Data {
		if len(pixel) != samples {
			return array.Array{}, fmt.Errorf("%w: pixel %d has %d samples, want %d", ErrFrameMismatch, i, len(pixel), samples)
		}
		for _, raw := range pixel {
			data = append(data, px.value(raw))
		}
	}

	shape := []int{nf.Rows, nf.Cols}
	if samples > 1 {
		shape = append(shape, samples)
	}
	return array.New(data, shape, px.dtype())
}

// stackFrames joins frames into one array, adding a leading frame axis when
// there is more than one.
func stackFrames(frames []array.Array) (array.Array, error) {
	first := frames[0]
	if len(frames) == 1 {
		return first, nil
	}

	shape := first.Shape()
	data := make([]float64, 0, first.Size()*len(frames))
	for i, a := range frames {
		if !slices.Equal(a.Shape(), shape) {
			return array.Array{}, fmt.Errorf("%w: frame %d has shape %v, want %v", ErrFrameMismatch, i, a.Shape(), shape)
		}
		data = append(data, a.Data()...)
	}
	return array.New(data, append([]int{len(frames)}, shape...), first.DType())
}
