package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Entry describes a file or directory in a Source.
type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Source is read access to stored files.
type Source interface {
	// Exists reports whether a file or directory exists at path.
	Exists(ctx context.Context, path string) bool
	// Open returns a reader for the file at path. Callers must close it.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Stat returns metadata for the file or directory at path.
	Stat(ctx context.Context, path string) (*Entry, error)
	// List returns the entries of a directory (non-recursive).
	List(ctx context.Context, dir string) ([]Entry, error)
}

// sniffLen is the number of bytes SniffMIMEType inspects.
const sniffLen = 512

// Content types not known to net/http.
const (
	MIMETypeDICOM = "application/dicom"
	MIMETypeNumpy = "application/x-npy"
	MIMETypeNIfTI = "application/x-nifti"
	MIMETypeTIFF  = "image/tiff"
)

var imageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	MIMETypeTIFF: true,
}

// IsImage reports whether mimeType is a raster image type this module decodes.
func IsImage(mimeType string) bool {
	return imageMIMETypes[mimeType]
}

// SniffMIMEType detects the content type from the leading bytes of a file.
// DICOM part 10 files carry "DICM" after a 128-byte preamble, NumPy arrays
// start with "\x93NUMPY" and single-file NIfTI-1 volumes carry "n+1" at
// offset 344; everything else is left to http.DetectContentType.
func SniffMIMEType(header []byte) string {
	switch {
	case len(header) >= 132 && string(header[128:132]) == "DICM":
		return MIMETypeDICOM
	case bytes.HasPrefix(header, []byte("\x93NUMPY")):
		return MIMETypeNumpy
	case len(header) >= 348 && string(header[344:348]) == "n+1\x00":
		return MIMETypeNIfTI
	case bytes.HasPrefix(header, []byte("II*\x00")), bytes.HasPrefix(header, []byte("MM\x00*")):
		return MIMETypeTIFF
	}
	return http.DetectContentType(header)
}

// DetectMIMEType opens path and sniffs its content type.
func DetectMIMEType(ctx context.Context, src Source, path string) (string, error) {
	rc, err := src.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	return SniffMIMEType(buf[:n]), nil
}

// ReadAll reads the whole file at path. A positive maxBytes limits the size
// accepted; larger files fail with ErrFileTooLarge.
func ReadAll(ctx context.Context, src Source, path string, maxBytes int64) ([]byte, error) {
	rc, err := src.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	var r io.Reader = rc
	if maxBytes > 0 {
		r = io.LimitReader(rc, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, path, maxBytes)
	}
	return data, nil
}
