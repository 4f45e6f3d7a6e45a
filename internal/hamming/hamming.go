// Package hamming builds the pairwise Hamming distance matrix of an
// equal-length sequence corpus. The row space is split into contiguous
// ranges, one per participant; the coordinator reassembles the full matrix
// from everyone's rows.
package hamming

import (
	"seqclust/internal/comm"
	"seqclust/pkg/apperror"
)

// Distance counts the positions where a and b differ. Both must have the
// same length.
func Distance(a, b []byte) int32 {
	var d int32
	for i := range a {
		if i >= len(b) {
			break
		}
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

// BuildDistanceMatrix computes the n×n Hamming distance matrix of a corpus
// of n sequences of length l, flattened so that sequence i occupies
// seqs[i*l : (i+1)*l]. The corpus is replicated on every participant. The
// dense matrix is returned on the coordinator; every other rank returns nil.
func BuildDistanceMatrix(c *comm.Comm, seqs []byte, n, l int) ([]int32, error) {
	if n <= 0 {
		return nil, apperror.ErrEmptyCorpus
	}
	if len(seqs) != n*l {
		return nil, apperror.Newf(apperror.CodeSizeMismatch, "corpus of %d bytes for n=%d, l=%d", len(seqs), n, l)
	}

	start, end := comm.ChunkRange(n, c.Size(), c.Rank())
	localRows := end - start

	local := make([]int32, localRows*n)
	for i := start; i < end; i++ {
		seqI := seqs[i*l : (i+1)*l]
		row := local[(i-start)*n : (i-start+1)*n]

		for j := 0; j < n; j++ {
			if i == j {
				row[j] = 0
				continue
			}
			row[j] = Distance(seqI, seqs[j*l:(j+1)*l])
		}
	}

	// Row gather: the coordinator walks the ranks in order, reusing the
	// shared chunking so sends and receives pair up.
	var full []int32
	if c.IsCoordinator() {
		full = make([]int32, n*n)
		copy(full[start*n:], local)
	}

	for r := 1; r < c.Size(); r++ {
		rStart, rEnd := comm.ChunkRange(n, c.Size(), r)
		if rEnd == rStart {
			continue
		}

		if c.Rank() == r {
			if err := c.Send(local, 0); err != nil {
				return nil, err
			}
		}
		if c.IsCoordinator() {
			if err := c.Recv(full[rStart*n:rEnd*n], r); err != nil {
				return nil, err
			}
		}
	}

	return full, nil
}
