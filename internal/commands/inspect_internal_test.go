package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/imdm/pkg/file"
	"github.com/dmitrymomot/imdm/pkg/formats"
)

func TestInspectFileDecoderPanic(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "scan.dcm")
	require.NoError(t, os.WriteFile(p, []byte("not really dicom"), 0o600))

	read := func(any) (any, error) {
		panic("index out of range [3] with length 2")
	}

	var (
		r   fileReport
		err error
	)
	require.NotPanics(t, func() {
		r, err = inspectFile(context.Background(), file.Local(), read, p)
	})
	require.ErrorIs(t, err, formats.ErrDecodeFailed)
	assert.Contains(t, err.Error(), "index out of range [3] with length 2")
	assert.Equal(t, int64(16), r.Size)
	assert.Empty(t, r.Shape)
}
