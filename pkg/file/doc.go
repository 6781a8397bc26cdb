// Package file provides read access to stored data files on the local
// filesystem and in S3, plus content sniffing for the formats validators
// decode.
//
// # Architecture
//
// The package is built around the Source interface:
//   - Exists checks whether a path is present
//   - Open streams a file
//   - Stat returns size and modification time
//   - List enumerates a directory (non-recursive)
//
// Two implementations are provided:
//   - LocalStorage: filesystem access, optionally confined to a base directory
//   - S3Storage: AWS S3 and S3-compatible services (MinIO, Wasabi, etc.)
//
// # Usage
//
//	src, err := file.NewLocalStorage("/data/study-01")
//	if err != nil {
//		return err
//	}
//	if !src.Exists(ctx, "scans/ct-0001.dcm") {
//		// not there
//	}
//
// Using S3 storage:
//
//	src, err := file.NewS3Storage(ctx, file.S3Config{
//		Bucket: "imaging",
//		Region: "eu-west-1",
//		Prefix: "study-01",
//	}, file.WithS3Timeout(10*time.Second))
//	if err != nil {
//		return err
//	}
//	data, err := file.ReadAll(ctx, src, "scans/ct-0001.dcm", 512<<20)
//
// # Content detection
//
// SniffMIMEType recognises DICOM part 10 files, NumPy arrays and TIFF images
// in addition to the types known to net/http. DetectMIMEType applies it to
// the first 512 bytes of a stored file.
//
// # Security Considerations
//
// LocalStorage with a base directory rejects relative paths that escape it
// and absolute paths outside it. S3Storage rejects keys containing "..".
//
// # Error Handling
//
// S3-specific errors are mapped to package errors:
//   - NoSuchKey, NotFound -> ErrFileNotFound
//   - NoSuchBucket -> ErrBucketNotFound
//   - AccessDenied -> ErrAccessDenied
//   - SlowDown, ServiceUnavailable -> ErrServiceUnavailable
//
// Context deadlines map to ErrOperationTimeout and cancellation to
// ErrOperationCanceled.
package file
