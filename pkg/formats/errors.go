package formats

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrDecodeFailed      = errors.New("failed to decode file")
	ErrNoPixelData       = errors.New("file has no pixel data")
	ErrUnexpectedInput   = errors.New("unexpected input")
	ErrFrameMismatch     = errors.New("frames have different shapes")
)
