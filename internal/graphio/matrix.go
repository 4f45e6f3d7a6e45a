package graphio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"seqclust/pkg/apperror"
)

// ReadMatrix reads a square integer matrix from a text file. The first line
// holds the dimensions "n m" with n = m; the next n lines hold m
// whitespace-separated non-negative values. Values beyond the signed 32-bit
// range are rejected.
func ReadMatrix(path string) (int, []int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, apperror.Wrap(err, apperror.CodeFileNotOpenable, "cannot open matrix file").WithField(path)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var n, m int
	if _, err := fmt.Fscan(r, &n, &m); err != nil {
		return 0, nil, apperror.Wrap(err, apperror.CodeMalformedMatrix, "reading matrix dimensions").WithField(path)
	}
	if n != m {
		return 0, nil, apperror.Newf(apperror.CodeNonSquareMatrix, "matrix is not square: n=%d, m=%d", n, m)
	}
	if n <= 0 {
		return 0, nil, apperror.Newf(apperror.CodeMalformedMatrix, "matrix dimension must be positive, got %d", n)
	}

	vals := make([]int32, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var v int64
			if _, err := fmt.Fscan(r, &v); err != nil {
				return 0, nil, apperror.Wrap(err, apperror.CodeMalformedMatrix,
					fmt.Sprintf("reading matrix value (%d,%d)", i, j))
			}
			if v < 0 {
				return 0, nil, apperror.Newf(apperror.CodeValueOutOfRange, "negative value %d at (%d,%d)", v, i, j)
			}
			if v > math.MaxInt32 {
				return 0, nil, apperror.Newf(apperror.CodeValueOutOfRange, "value %d at (%d,%d) exceeds 32-bit range", v, i, j)
			}
			vals[i*n+j] = int32(v)
		}
	}

	return n, vals, nil
}

// WriteMatrix writes an n×m matrix in the text form ReadMatrix consumes.
func WriteMatrix(w io.Writer, vals []int32, n, m int) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%d %d\n", n, m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if j > 0 {
				fmt.Fprint(bw, " ")
			}
			fmt.Fprintf(bw, "%d", vals[i*m+j])
		}
		fmt.Fprintln(bw)
	}

	if err := bw.Flush(); err != nil {
		return apperror.Wrap(err, apperror.CodeWriteFailed, "writing matrix")
	}
	return nil
}

// WriteMatrixFile writes the matrix to a file.
func WriteMatrixFile(path string, vals []int32, n, m int) error {
	f, err := os.Create(path)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeFileNotOpenable, "cannot create matrix file").WithField(path)
	}
	defer f.Close()

	return WriteMatrix(f, vals, n, m)
}
