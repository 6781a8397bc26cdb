package formats

import (
	"reflect"

	"github.com/dmitrymomot/imdm/pkg/array"
	"github.com/dmitrymomot/imdm/pkg/check"
	"github.com/dmitrymomot/imdm/pkg/file"
	"github.com/dmitrymomot/imdm/pkg/validator"
)

// Check names registered by the presets.
const (
	CheckPath     = "path"
	CheckMetadata = "metadata"
)

// Option configures a preset validator.
type Option func(*presetConfig)

type presetConfig struct {
	src      file.Source
	maxBytes int64
	metadata map[string]string
	extra    []validator.Option
}

// WithSource sets the file source paths are resolved against.
func WithSource(src file.Source) Option {
	return func(c *presetConfig) {
		c.src = src
	}
}

// WithMaxBytes limits the size of files loaded into memory.
func WithMaxBytes(n int64) Option {
	return func(c *presetConfig) {
		c.maxBytes = n
	}
}

// WithMetadata adds a preprocessed-stage metadata check. Only decoded objects
// that expose Lookup, such as DICOM and NIfTI files, can pass it.
func WithMetadata(want map[string]string) Option {
	return func(c *presetConfig) {
		c.metadata = want
	}
}

// WithValidatorOptions appends options to the underlying field validator.
func WithValidatorOptions(opts ...validator.Option) Option {
	return func(c *presetConfig) {
		c.extra = append(c.extra, opts...)
	}
}

func preset(opts []Option, read func(reader) validator.Func, value validator.Func, types ...reflect.Type) *validator.Validator {
	c := &presetConfig{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(c)
	}
	r := newReader(c.src, c.maxBytes)

	vopts := []validator.Option{
		validator.WithType(types...),
		validator.WithPreprocess(read(r)),
		validator.WithValue(value),
		validator.WithCheck(CheckPath, check.PathExists(r.src), validator.Raw),
	}
	if len(c.metadata) > 0 {
		vopts = append(vopts, validator.WithCheck(CheckMetadata, check.Metadata(c.metadata), validator.Preprocessed))
	}
	return validator.New(append(vopts, c.extra...)...)
}

// DICOMFile returns a validator for paths of DICOM files.
func DICOMFile(opts ...Option) *validator.Validator {
	return preset(opts, func(r reader) validator.Func { return r.dicom }, DICOMPixels,
		reflect.TypeFor[*DICOM]())
}

// ImageFile returns a validator for paths of raster images.
func ImageFile(opts ...Option) *validator.Validator {
	return preset(opts, func(r reader) validator.Func { return r.image }, ImagePixels,
		reflect.TypeFor[*Image]())
}

// NumpyFile returns a validator for paths of .npy arrays.
func NumpyFile(opts ...Option) *validator.Validator {
	return preset(opts, func(r reader) validator.Func { return r.numpy }, Pixels,
		reflect.TypeFor[array.Array]())
}

// NIfTIFile returns a validator for paths of NIfTI-1 volumes.
func NIfTIFile(opts ...Option) *validator.Validator {
	return preset(opts, func(r reader) validator.Func { return r.nifti }, Pixels,
		reflect.TypeFor[*NIfTI]())
}

// AutoFile returns a validator that accepts any supported file format.
func AutoFile(opts ...Option) *validator.Validator {
	return preset(opts, func(r reader) validator.Func { return r.auto }, Pixels,
		reflect.TypeFor[*DICOM](), reflect.TypeFor[*NIfTI](), reflect.TypeFor[*Image](), reflect.TypeFor[array.Array]())
}
