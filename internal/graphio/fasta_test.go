package graphio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqclust/pkg/apperror"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadFASTA(t *testing.T) {
	path := writeTemp(t, "seqs.fa", `>seq1
ACGT
>seq2
AC
GA
>seq3
TTTT
`)

	corpus, err := ReadFASTA(path)
	require.NoError(t, err)

	assert.Equal(t, 3, corpus.N)
	assert.Equal(t, 4, corpus.Length)
	assert.Equal(t, []byte("ACGT"), corpus.Sequence(0))
	assert.Equal(t, []byte("ACGA"), corpus.Sequence(1))
	assert.Equal(t, []byte("TTTT"), corpus.Sequence(2))
}

func TestReadFASTA_SkipsBlankLines(t *testing.T) {
	path := writeTemp(t, "seqs.fa", "\n>a\n\nAC\n\n>b\nGT\n\n")

	corpus, err := ReadFASTA(path)
	require.NoError(t, err)
	assert.Equal(t, 2, corpus.N)
	assert.Equal(t, 2, corpus.Length)
}

func TestReadFASTA_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code apperror.ErrorCode
	}{
		{
			name: "missing_file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.fa") },
			code: apperror.CodeFileNotOpenable,
		},
		{
			name: "empty_corpus",
			path: func(t *testing.T) string { return writeTemp(t, "empty.fa", ">only a header\n") },
			code: apperror.CodeEmptyCorpus,
		},
		{
			name: "unequal_lengths",
			path: func(t *testing.T) string { return writeTemp(t, "bad.fa", ">a\nACGT\n>b\nAC\n") },
			code: apperror.CodeUnequalSequences,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFASTA(tt.path(t))
			require.Error(t, err)
			assert.True(t, apperror.Is(err, tt.code), "got %v", err)
		})
	}
}
