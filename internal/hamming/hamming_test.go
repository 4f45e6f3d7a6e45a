package hamming

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqclust/internal/comm"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int32
	}{
		{name: "identical", a: "ACGT", b: "ACGT", want: 0},
		{name: "all_different", a: "AAAA", b: "CCCC", want: 4},
		{name: "partial", a: "ACGT", b: "AGGT", want: 1},
		{name: "empty", a: "", b: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance([]byte(tt.a), []byte(tt.b)))
		})
	}
}

func flatten(seqs []string) []byte {
	var out []byte
	for _, s := range seqs {
		out = append(out, s...)
	}
	return out
}

func buildDistributed(t *testing.T, p int, seqs []string) []int32 {
	t.Helper()

	n := len(seqs)
	l := len(seqs[0])
	corpus := flatten(seqs)

	var result []int32
	err := comm.Run(context.Background(), p, func(c *comm.Comm) error {
		d, err := BuildDistanceMatrix(c, corpus, n, l)
		if err != nil {
			return err
		}
		if c.IsCoordinator() {
			result = d
		} else {
			assert.Nil(t, d)
		}
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestBuildDistanceMatrix(t *testing.T) {
	seqs := []string{
		"ACGT",
		"ACGA",
		"TTTT",
		"ACGT",
		"CCGT",
	}
	n := len(seqs)

	// Reference: direct pairwise computation.
	want := make([]int32, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				want[i*n+j] = Distance([]byte(seqs[i]), []byte(seqs[j]))
			}
		}
	}

	for _, p := range []int{1, 2, 3, 5, 8} {
		got := buildDistributed(t, p, seqs)
		assert.Equal(t, want, got, "p=%d", p)
	}
}

func TestBuildDistanceMatrix_SymmetricZeroDiagonal(t *testing.T) {
	seqs := []string{"AACC", "AGCC", "AGGC", "TGGC"}
	n := len(seqs)

	d := buildDistributed(t, 2, seqs)

	for i := 0; i < n; i++ {
		assert.Equal(t, int32(0), d[i*n+i])
		for j := 0; j < n; j++ {
			assert.Equal(t, d[i*n+j], d[j*n+i])
		}
	}
}

func TestBuildDistanceMatrix_SingleSequence(t *testing.T) {
	d := buildDistributed(t, 3, []string{"ACGT"})
	assert.Equal(t, []int32{0}, d)
}

func TestBuildDistanceMatrix_Validation(t *testing.T) {
	err := comm.Run(context.Background(), 2, func(c *comm.Comm) error {
		_, err := BuildDistanceMatrix(c, nil, 0, 0)
		return err
	})
	require.Error(t, err)

	err = comm.Run(context.Background(), 2, func(c *comm.Comm) error {
		_, err := BuildDistanceMatrix(c, []byte("ACG"), 2, 2)
		return err
	})
	require.Error(t, err)
}
