package formats

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/imdm/pkg/array"
	"github.com/dmitrymomot/imdm/pkg/check"
	"github.com/dmitrymomot/imdm/pkg/file"
	"github.com/dmitrymomot/imdm/pkg/validator"
)

// DefaultMaxBytes is the largest file the readers load into memory.
const DefaultMaxBytes int64 = 1 << 30

type reader struct {
	src      file.Source
	maxBytes int64
}

func newReader(src file.Source, maxBytes int64) reader {
	if src == nil {
		src = file.Local()
	}
	return reader{src: src, maxBytes: maxBytes}
}

func (r reader) load(x any) (string, []byte, error) {
	path, err := check.PathOf(x)
	if err != nil {
		return "", nil, err
	}
	data, err := file.ReadAll(context.Background(), r.src, path, r.maxBytes)
	if err != nil {
		return path, nil, err
	}
	return path, data, nil
}

func (r reader) dicom(x any) (any, error) {
	path, data, err := r.load(x)
	if err != nil {
		return nil, err
	}
	return decodeDICOM(path, data)
}

func (r reader) image(x any) (any, error) {
	path, data, err := r.load(x)
	if err != nil {
		return nil, err
	}
	return decodeImage(path, data)
}

func (r reader) numpy(x any) (any, error) {
	_, data, err := r.load(x)
	if err != nil {
		return nil, err
	}
	return decodeNumpy(data)
}

func (r reader) nifti(x any) (any, error) {
	path, data, err := r.load(x)
	if err != nil {
		return nil, err
	}
	return decodeNIfTI(path, data, r.maxBytes)
}

func (r reader) auto(x any) (any, error) {
	path, data, err := r.load(x)
	if err != nil {
		return nil, err
	}
	mime := file.SniffMIMEType(data)
	switch {
	case mime == file.MIMETypeDICOM:
		return decodeDICOM(path, data)
	case mime == file.MIMETypeNumpy:
		return decodeNumpy(data)
	case mime == file.MIMETypeNIfTI, isGzip(data):
		return decodeNIfTI(path, data, r.maxBytes)
	case file.IsImage(mime):
		return decodeImage(path, data)
	}
	return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, path, mime)
}

// ReadDICOM returns a preprocess function that loads a DICOM file from src.
// A nil src reads from the local filesystem.
func ReadDICOM(src file.Source) validator.Func {
	return newReader(src, DefaultMaxBytes).dicom
}

// ReadImage returns a preprocess function that loads a raster image.
func ReadImage(src file.Source) validator.Func {
	return newReader(src, DefaultMaxBytes).image
}

// ReadNumpy returns a preprocess function that loads a .npy array.
func ReadNumpy(src file.Source) validator.Func {
	return newReader(src, DefaultMaxBytes).numpy
}

// ReadNIfTI returns a preprocess function that loads a NIfTI-1 volume,
// gzip-compressed or not.
func ReadNIfTI(src file.Source) validator.Func {
	return newReader(src, DefaultMaxBytes).nifti
}

// ReadAuto returns a preprocess function that sniffs the file content and
// decodes it as DICOM, NIfTI, NumPy or raster image. Gzip content is tried
// as NIfTI.
func ReadAuto(src file.Source) validator.Func {
	return newReader(src, DefaultMaxBytes).auto
}

// DICOMPixels extracts the pixel array of a decoded DICOM file.
func DICOMPixels(x any) (any, error) {
	d, ok := x.(*DICOM)
	if !ok {
		return nil, fmt.Errorf("%w: want *formats.DICOM, got %T", ErrUnexpectedInput, x)
	}
	return d.Array()
}

// ImagePixels extracts the pixel array of a decoded image.
func ImagePixels(x any) (any, error) {
	img, ok := x.(*Image)
	if !ok {
		return nil, fmt.Errorf("%w: want *formats.Image, got %T", ErrUnexpectedInput, x)
	}
	return img.Array()
}

// Pixels converts any decoded object, or a plain numeric value, to an array.
func Pixels(x any) (any, error) {
	return array.From(x)
}
