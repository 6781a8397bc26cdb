package file_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/imdm/pkg/file"
)

// MockS3Client is a mock implementation of the S3Client interface
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadObjectOutput), args.Error(1)
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func newMockStorage(t *testing.T, cfg file.S3Config) (*file.S3Storage, *MockS3Client) {
	t.Helper()
	if cfg.Bucket == "" {
		cfg.Bucket = "test-bucket"
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	mockClient := new(MockS3Client)
	storage, err := file.NewS3Storage(context.Background(), cfg, file.WithS3Client(mockClient))
	require.NoError(t, err)
	return storage, mockClient
}

func keyIs(key string) any {
	return mock.MatchedBy(func(params *s3.HeadObjectInput) bool {
		return aws.ToString(params.Bucket) == "test-bucket" && aws.ToString(params.Key) == key
	})
}

func TestNewS3Storage(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		storage, err := file.NewS3Storage(context.Background(), file.S3Config{
			Bucket:      "test-bucket",
			Region:      "us-east-1",
			AccessKeyID: "test-key",
			SecretKey:   "test-secret",
		})
		require.NoError(t, err)
		require.NotNil(t, storage)
	})

	t.Run("with custom endpoint", func(t *testing.T) {
		t.Parallel()
		storage, err := file.NewS3Storage(context.Background(), file.S3Config{
			Bucket:         "test-bucket",
			Region:         "us-east-1",
			Endpoint:       "http://localhost:9000",
			ForcePathStyle: true,
		}, file.WithS3Timeout(time.Second))
		require.NoError(t, err)
		require.NotNil(t, storage)
	})

	t.Run("missing bucket", func(t *testing.T) {
		t.Parallel()
		storage, err := file.NewS3Storage(context.Background(), file.S3Config{Region: "us-east-1"})
		assert.ErrorIs(t, err, file.ErrInvalidConfig)
		assert.Nil(t, storage)
	})

	t.Run("missing region", func(t *testing.T) {
		t.Parallel()
		storage, err := file.NewS3Storage(context.Background(), file.S3Config{Bucket: "test-bucket"})
		assert.ErrorIs(t, err, file.ErrInvalidConfig)
		assert.Nil(t, storage)
	})
}

func TestS3Storage_Exists(t *testing.T) {
	t.Parallel()

	t.Run("file exists", func(t *testing.T) {
		t.Parallel()
		storage, mockClient := newMockStorage(t, file.S3Config{})
		mockClient.On("HeadObject", mock.Anything, keyIs("scans/ct.dcm"), mock.Anything).
			Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(10)}, nil)

		assert.True(t, storage.Exists(context.Background(), "scans/ct.dcm"))
		mockClient.AssertExpectations(t)
	})

	t.Run("file does not exist", func(t *testing.T) {
		t.Parallel()
		storage, mockClient := newMockStorage(t, file.S3Config{})
		mockClient.On("HeadObject", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &types.NotFound{})

		assert.False(t, storage.Exists(context.Background(), "scans/missing.dcm"))
		mockClient.AssertExpectations(t)
	})

	t.Run("prefix and uri", func(t *testing.T) {
		t.Parallel()
		storage, mockClient := newMockStorage(t, file.S3Config{Prefix: "/datasets/"})
		mockClient.On("HeadObject", mock.Anything, keyIs("datasets/scans/ct.dcm"), mock.Anything).
			Return(&s3.HeadObjectOutput{}, nil).Twice()

		assert.True(t, storage.Exists(context.Background(), "scans/ct.dcm"))
		assert.True(t, storage.Exists(context.Background(), "s3://test-bucket/scans/ct.dcm"))
		assert.False(t, storage.Exists(context.Background(), "s3://other-bucket/scans/ct.dcm"))
		mockClient.AssertExpectations(t)
	})

	t.Run("path traversal", func(t *testing.T) {
		t.Parallel()
		storage, mockClient := newMockStorage(t, file.S3Config{})
		assert.False(t, storage.Exists(context.Background(), "../../../etc/passwd"))
		mockClient.AssertNotCalled(t, "HeadObject", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestS3Storage_Stat(t *testing.T) {
	t.Parallel()

	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	storage, mockClient := newMockStorage(t, file.S3Config{})
	mockClient.On("HeadObject", mock.Anything, keyIs("volumes/brain.npy"), mock.Anything).
		Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(2048), LastModified: aws.Time(modified)}, nil)

	entry, err := storage.Stat(context.Background(), "volumes/brain.npy")
	require.NoError(t, err)
	assert.Equal(t, "brain.npy", entry.Name)
	assert.Equal(t, "volumes/brain.npy", entry.Path)
	assert.Equal(t, int64(2048), entry.Size)
	assert.Equal(t, modified, entry.ModTime)
	assert.False(t, entry.IsDir)
}

func TestS3Storage_Open(t *testing.T) {
	t.Parallel()

	t.Run("reads body", func(t *testing.T) {
		t.Parallel()
		storage, mockClient := newMockStorage(t, file.S3Config{})
		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(params *s3.GetObjectInput) bool {
			return aws.ToString(params.Key) == "labels.txt"
		}), mock.Anything).Return(&s3.GetObjectOutput{
			Body: io.NopCloser(strings.NewReader("cat\ndog\n")),
		}, nil)

		rc, err := storage.Open(context.Background(), "labels.txt")
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "cat\ndog\n", string(data))
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		storage, mockClient := newMockStorage(t, file.S3Config{})
		mockClient.On("GetObject", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &types.NoSuchKey{})

		_, err := storage.Open(context.Background(), "missing.txt")
		assert.ErrorIs(t, err, file.ErrFileNotFound)
	})

	t.Run("api errors are classified", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			code string
			want error
		}{
			{"AccessDenied", file.ErrAccessDenied},
			{"SlowDown", file.ErrServiceUnavailable},
			{"RequestTimeout", file.ErrRequestTimeout},
			{"NoSuchBucket", file.ErrBucketNotFound},
		}
		for _, tt := range tests {
			storage, mockClient := newMockStorage(t, file.S3Config{})
			mockClient.On("GetObject", mock.Anything, mock.Anything, mock.Anything).
				Return(nil, &smithy.GenericAPIError{Code: tt.code})

			_, err := storage.Open(context.Background(), "x")
			assert.ErrorIs(t, err, tt.want, tt.code)
		}
	})

	t.Run("context errors", func(t *testing.T) {
		t.Parallel()
		storage, mockClient := newMockStorage(t, file.S3Config{})
		mockClient.On("GetObject", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, context.DeadlineExceeded)

		_, err := storage.Open(context.Background(), "x")
		assert.ErrorIs(t, err, file.ErrOperationTimeout)
	})
}

func TestS3Storage_List(t *testing.T) {
	t.Parallel()

	t.Run("list files and directories", func(t *testing.T) {
		t.Parallel()
		storage, mockClient := newMockStorage(t, file.S3Config{})
		mockClient.On("ListObjectsV2",
			mock.Anything,
			mock.MatchedBy(func(params *s3.ListObjectsV2Input) bool {
				return aws.ToString(params.Bucket) == "test-bucket" &&
					aws.ToString(params.Prefix) == "scans/" &&
					aws.ToString(params.Delimiter) == "/"
			}),
			mock.Anything,
		).Return(&s3.ListObjectsV2Output{
			CommonPrefixes: []types.CommonPrefix{
				{Prefix: aws.String("scans/ct/")},
			},
			Contents: []types.Object{
				{Key: aws.String("scans/a.dcm"), Size: aws.Int64(100)},
				{Key: aws.String("scans/")},
			},
		}, nil)

		entries, err := storage.List(context.Background(), "scans")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, file.Entry{Name: "ct", Path: "scans/ct/", IsDir: true}, entries[0])
		assert.Equal(t, "a.dcm", entries[1].Name)
		assert.Equal(t, int64(100), entries[1].Size)
		mockClient.AssertExpectations(t)
	})

	t.Run("follows continuation tokens", func(t *testing.T) {
		t.Parallel()
		storage, mockClient := newMockStorage(t, file.S3Config{})
		mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(params *s3.ListObjectsV2Input) bool {
			return params.ContinuationToken == nil
		}), mock.Anything).Return(&s3.ListObjectsV2Output{
			Contents:              []types.Object{{Key: aws.String("a.npy"), Size: aws.Int64(1)}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("page-2"),
		}, nil).Once()
		mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(params *s3.ListObjectsV2Input) bool {
			return aws.ToString(params.ContinuationToken) == "page-2"
		}), mock.Anything).Return(&s3.ListObjectsV2Output{
			Contents: []types.Object{{Key: aws.String("b.npy"), Size: aws.Int64(2)}},
		}, nil).Once()

		entries, err := storage.List(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "a.npy", entries[0].Name)
		assert.Equal(t, "b.npy", entries[1].Name)
		mockClient.AssertExpectations(t)
	})

	t.Run("path traversal", func(t *testing.T) {
		t.Parallel()
		storage, _ := newMockStorage(t, file.S3Config{})
		entries, err := storage.List(context.Background(), "../../../etc")
		assert.ErrorIs(t, err, file.ErrInvalidPath)
		assert.Empty(t, entries)
	})

	t.Run("list error", func(t *testing.T) {
		t.Parallel()
		storage, mockClient := newMockStorage(t, file.S3Config{})
		mockClient.On("ListObjectsV2", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("list failed"))

		_, err := storage.List(context.Background(), "scans")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "list directory operation failed")
	})
}
