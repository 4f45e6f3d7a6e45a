package dist

import "math"

const (
	// Fallback block-size bounds when the matrix does not tile cleanly.
	minBlockSize = 32
	maxBlockSize = 256
)

// Layout is the block size and process grid chosen for one APSP run.
type Layout struct {
	BlockSize int
	GridRows  int
	GridCols  int
	// Clean reports whether the canonical square-grid case applied:
	// P a perfect square and n divisible by √P.
	Clean bool
}

// ChooseLayout selects the block edge length and the Pr×Pc grid for an n×n
// matrix over p participants. When p is a perfect square s² and n divides
// evenly by s, blocks tile the matrix exactly on an s×s grid. Otherwise the
// block size falls back to ceil(n/s) clamped to [32, 256] and the grid to a
// balanced factorization of p. The choice affects performance only: any
// (b ≥ 1, Pr·Pc = p) pair yields identical results.
func ChooseLayout(n, p int) Layout {
	s := int(math.Round(math.Sqrt(float64(p))))
	if s < 1 {
		s = 1
	}

	if s*s == p && n%s == 0 {
		return Layout{
			BlockSize: n / s,
			GridRows:  s,
			GridCols:  s,
			Clean:     true,
		}
	}

	b := (n + s - 1) / s
	if b < minBlockSize {
		b = minBlockSize
	}
	if b > maxBlockSize {
		b = maxBlockSize
	}

	pr, pc := BalancedGrid(p)
	return Layout{
		BlockSize: b,
		GridRows:  pr,
		GridCols:  pc,
		Clean:     false,
	}
}

// BalancedGrid factors p into the most nearly square Pr×Pc pair with
// Pr ≤ Pc.
func BalancedGrid(p int) (int, int) {
	pr := 1
	for d := 1; d*d <= p; d++ {
		if p%d == 0 {
			pr = d
		}
	}
	return pr, p / pr
}
