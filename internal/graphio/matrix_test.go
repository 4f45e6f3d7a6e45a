package graphio

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqclust/pkg/apperror"
)

func TestMatrixRoundTrip(t *testing.T) {
	vals := []int32{
		0, 5, 1000000000,
		5, 0, 7,
		1000000000, 7, 0,
	}

	path := filepath.Join(t.TempDir(), "dist.txt")
	require.NoError(t, WriteMatrixFile(path, vals, 3, 3))

	n, got, err := ReadMatrix(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, vals, got)
}

func TestWriteMatrix_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, []int32{0, 1, 2, 3}, 2, 2))

	assert.Equal(t, "2 2\n0 1\n2 3\n", buf.String())
}

func TestReadMatrix_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    apperror.ErrorCode
	}{
		{
			name:    "non_square",
			content: "2 3\n1 2 3\n4 5 6\n",
			code:    apperror.CodeNonSquareMatrix,
		},
		{
			name:    "bad_header",
			content: "hello\n",
			code:    apperror.CodeMalformedMatrix,
		},
		{
			name:    "zero_dimension",
			content: "0 0\n",
			code:    apperror.CodeMalformedMatrix,
		},
		{
			name:    "truncated_rows",
			content: "2 2\n1 2\n",
			code:    apperror.CodeMalformedMatrix,
		},
		{
			name:    "negative_value",
			content: "2 2\n0 -4\n4 0\n",
			code:    apperror.CodeValueOutOfRange,
		},
		{
			name:    "value_beyond_int32",
			content: "2 2\n0 3000000000\n3000000000 0\n",
			code:    apperror.CodeValueOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "bad.txt", tt.content)

			_, _, err := ReadMatrix(path)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestReadMatrix_MissingFile(t *testing.T) {
	_, _, err := ReadMatrix(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeFileNotOpenable))
}
