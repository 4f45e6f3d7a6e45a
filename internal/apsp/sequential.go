package apsp

// InitDistances expands an adjacency matrix into the initial distance matrix:
// 0 on the diagonal, Inf where the input holds the absent-edge sentinel 0,
// the edge weight elsewhere. A genuine zero-weight edge is indistinguishable
// from an absent edge in this encoding; both are treated as absent.
func InitDistances(n int, adj []int32) []int32 {
	d := make([]int32, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			switch {
			case i == j:
				d[i*n+j] = 0
			case adj[i*n+j] == 0:
				d[i*n+j] = Inf
			default:
				d[i*n+j] = adj[i*n+j]
			}
		}
	}
	return d
}

// Sequential computes all-pairs shortest paths with the textbook
// Floyd–Warshall. The distributed engine must match it cell for cell.
func Sequential(n int, adj []int32) []int32 {
	d := InitDistances(n, adj)

	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			dik := d[i*n+k]
			if dik == Inf {
				continue
			}
			for j := 0; j < n; j++ {
				dkj := d[k*n+j]
				if dkj == Inf {
					continue
				}
				if via := dik + dkj; via < d[i*n+j] {
					d[i*n+j] = via
				}
			}
		}
	}

	return d
}
