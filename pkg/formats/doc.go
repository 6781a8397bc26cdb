// Package formats provides the file-format collaborators of the validation
// pipeline and preset field validators built on top of them.
//
// Every format follows the same two steps, matching the validator stages:
//
//   - a reader (ReadDICOM, ReadNIfTI, ReadImage, ReadNumpy, ReadAuto) turns
//     a raw path into a decoded object and is used as the preprocess
//     function;
//   - a pixel extractor (DICOMPixels, ImagePixels, Pixels) turns the decoded
//     object into an array.Array and is used as the value function.
//
// Files are read through a file.Source, so the same validator works against
// a local directory or an S3 bucket. DICOM decoding uses
// github.com/suyashkumar/dicom, NumPy arrays are read with
// github.com/sbinet/npyio and raster images use the standard image decoders
// plus BMP, TIFF and WebP from golang.org/x/image. NIfTI-1 volumes (.nii and
// .nii.gz) are parsed from their fixed 348-byte header; like SimpleITK, the
// array shape lists axes slowest first (z, y, x).
//
// Decoded objects implement the optional interfaces the built-in checks look
// for: Len() for the length check, Lookup() for the metadata check, Shape()
// and Array() for shape, dtype and range checks.
//
// # Presets
//
// DICOMFile, NIfTIFile, ImageFile, NumpyFile and AutoFile return field validators with a
// raw-stage "path" check, a preprocessed-stage type check on the decoded
// object and the pixel extractor as value function. Further validator options
// are appended with WithValidatorOptions:
//
//	v := formats.DICOMFile(
//	    formats.WithSource(storage),
//	    formats.WithMetadata(map[string]string{"Modality": "MR"}),
//	    formats.WithValidatorOptions(
//	        validator.WithShape(check.AnyDim, 512, 512),
//	        validator.WithRange(check.Bound(0), check.Bound(4095)),
//	    ),
//	)
//	res := v.Validate("scans/0001.dcm")
//
// # Error Handling
//
// Readers wrap decoder failures with ErrDecodeFailed and unknown content with
// ErrUnsupportedFormat. Inside a validator these errors surface as failed
// checks, never as returned errors.
package formats
