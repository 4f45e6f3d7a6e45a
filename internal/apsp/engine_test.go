package apsp

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqclust/internal/comm"
)

// runDistributed executes the engine over p participants and returns the
// coordinator's result.
func runDistributed(t *testing.T, p, n int, adj []int32, opts Options) []int32 {
	t.Helper()

	var result []int32
	err := comm.Run(context.Background(), p, func(c *comm.Comm) error {
		d, err := Run(context.Background(), c, n, adj, opts)
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

func TestRun_Triangle(t *testing.T) {
	adj := []int32{
		0, 1, 4,
		1, 0, 2,
		4, 2, 0,
	}
	want := []int32{
		0, 1, 3,
		1, 0, 2,
		3, 2, 0,
	}

	for _, p := range []int{1, 2, 4} {
		got := runDistributed(t, p, 3, adj, Options{})
		assert.Equal(t, want, got, "p=%d", p)
	}
}

func TestRun_DisconnectedPair(t *testing.T) {
	// Edges (0,1,w=5) and (2,3,w=7) only; the components stay at Inf from
	// each other.
	adj := make([]int32, 16)
	adj[0*4+1], adj[1*4+0] = 5, 5
	adj[2*4+3], adj[3*4+2] = 7, 7

	d := runDistributed(t, 4, 4, adj, Options{})

	assert.Equal(t, int32(5), d[0*4+1])
	assert.Equal(t, int32(7), d[2*4+3])
	for _, pair := range [][2]int{{0, 2}, {0, 3}, {1, 2}, {1, 3}} {
		assert.Equal(t, Inf, d[pair[0]*4+pair[1]])
		assert.Equal(t, Inf, d[pair[1]*4+pair[0]])
	}
}

func TestRun_PathOfFive(t *testing.T) {
	// Path 0-1-2-3-4 with weights 1,2,3,4.
	const n = 5
	adj := make([]int32, n*n)
	for i := 0; i < n-1; i++ {
		w := int32(i + 1)
		adj[i*n+i+1] = w
		adj[(i+1)*n+i] = w
	}

	d := runDistributed(t, 2, n, adj, Options{})

	assert.Equal(t, int32(10), d[0*n+4])
	assert.Equal(t, int32(5), d[1*n+3])
	assert.Equal(t, Sequential(n, adj), d)
}

func TestRun_PaddingDoesNotLeak(t *testing.T) {
	// Same path graph, forced block size 2: nb=3 and the trailing block
	// row/column is padding. The result must be identical.
	const n = 5
	adj := make([]int32, n*n)
	for i := 0; i < n-1; i++ {
		w := int32(i + 1)
		adj[i*n+i+1] = w
		adj[(i+1)*n+i] = w
	}

	want := Sequential(n, adj)
	for _, p := range []int{1, 2, 3, 4} {
		got := runDistributed(t, p, n, adj, Options{BlockSize: 2})
		assert.Equal(t, want, got, "p=%d", p)
	}
}

func randomSymmetric(n int, density float64, rng *rand.Rand) []int32 {
	adj := make([]int32, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < density {
				w := int32(rng.IntN(50) + 1)
				adj[i*n+j] = w
				adj[j*n+i] = w
			}
		}
	}
	return adj
}

func TestRun_MatchesSequentialAcrossLayouts(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	cases := []struct {
		n         int
		density   float64
		ps        []int
		blockSize int
	}{
		{n: 1, density: 0, ps: []int{1, 2}},
		{n: 8, density: 0.4, ps: []int{1, 2, 4, 6}},
		{n: 17, density: 0.3, ps: []int{1, 3, 4}},
		{n: 17, density: 0.3, ps: []int{4}, blockSize: 3},
		{n: 32, density: 0.2, ps: []int{4, 5, 9}},
		{n: 32, density: 0.2, ps: []int{4}, blockSize: 8},
	}

	for _, tc := range cases {
		adj := randomSymmetric(tc.n, tc.density, rng)
		want := Sequential(tc.n, adj)

		for _, p := range tc.ps {
			got := runDistributed(t, p, tc.n, adj, Options{BlockSize: tc.blockSize})
			assert.Equal(t, want, got, "n=%d p=%d b=%d", tc.n, p, tc.blockSize)
		}
	}
}

func TestRun_SymmetryAndTriangleInequality(t *testing.T) {
	const n = 32
	rng := rand.New(rand.NewPCG(7, 7))
	adj := randomSymmetric(n, 0.25, rng)

	d := runDistributed(t, 4, n, adj, Options{})

	for i := 0; i < n; i++ {
		assert.Equal(t, int32(0), d[i*n+i])
		for j := 0; j < n; j++ {
			assert.Equal(t, d[i*n+j], d[j*n+i], "symmetry at (%d,%d)", i, j)
			assert.GreaterOrEqual(t, d[i*n+j], int32(0))
		}
	}

	for m := 0; m < n; m++ {
		for i := 0; i < n; i++ {
			dim := d[i*n+m]
			if dim == Inf {
				continue
			}
			for j := 0; j < n; j++ {
				dmj := d[m*n+j]
				if dmj == Inf {
					continue
				}
				assert.LessOrEqual(t, d[i*n+j], dim+dmj,
					"triangle inequality at (%d,%d) via %d", i, j, m)
			}
		}
	}
}

func TestRun_FixedPoint(t *testing.T) {
	// Feeding the output back in yields the same matrix. Inf entries re-enter
	// as edges of weight Inf, which the initialization keeps at Inf.
	const n = 8
	rng := rand.New(rand.NewPCG(3, 9))
	adj := randomSymmetric(n, 0.9, rng)

	first := runDistributed(t, 4, n, adj, Options{})
	second := runDistributed(t, 4, n, first, Options{})

	assert.Equal(t, first, second)
}

func TestRun_PermutationInvariance(t *testing.T) {
	const n = 10
	rng := rand.New(rand.NewPCG(11, 4))
	adj := randomSymmetric(n, 0.4, rng)

	perm := rng.Perm(n)
	permuted := make([]int32, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			permuted[perm[i]*n+perm[j]] = adj[i*n+j]
		}
	}

	d := runDistributed(t, 4, n, adj, Options{})
	dp := runDistributed(t, 4, n, permuted, Options{})

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			assert.Equal(t, d[i*n+j], dp[perm[i]*n+perm[j]], "cell (%d,%d)", i, j)
		}
	}
}

func TestRun_InputValidation(t *testing.T) {
	err := comm.Run(context.Background(), 2, func(c *comm.Comm) error {
		_, err := Run(context.Background(), c, 0, nil, Options{})
		return err
	})
	require.Error(t, err)

	err = comm.Run(context.Background(), 2, func(c *comm.Comm) error {
		_, err := Run(context.Background(), c, 3, make([]int32, 4), Options{})
		return err
	})
	require.Error(t, err)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adj := make([]int32, 9)
	err := comm.Run(context.Background(), 1, func(c *comm.Comm) error {
		_, err := Run(ctx, c, 3, adj, Options{})
		return err
	})
	require.Error(t, err)
}
