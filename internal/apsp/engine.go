// Package apsp computes the all-pairs shortest-path matrix of a weighted
// undirected graph with a blocked 2-D Floyd–Warshall over a process grid.
//
// The matrix is partitioned into b×b blocks distributed block-cyclically
// over a Pr×Pc grid of participants. For every pivot block the engine runs
// four phases: the pivot owner relaxes the pivot block and broadcasts it;
// the owners of the pivot's row and column strips relax their blocks and
// broadcast them with non-blocking broadcasts; every participant then
// relaxes its remaining local blocks against the received strips. After the
// last pivot the coordinator reassembles the dense matrix from every rank's
// blocks.
package apsp

import (
	"context"
	"log/slog"

	"seqclust/internal/comm"
	"seqclust/internal/dist"
	"seqclust/pkg/apperror"
	"seqclust/pkg/metrics"
)

// Options tunes one engine run.
type Options struct {
	// BlockSize forces the block edge length; 0 lets the engine choose
	// from n and the participant count.
	BlockSize int
	// Logger receives coordinator-side progress logs. Nil disables them.
	Logger *slog.Logger
	// Metrics receives engine counters. Nil disables them.
	Metrics *metrics.Metrics
}

// Run computes the distance matrix of the n×n adjacency matrix adj,
// replicated on every participant. The dense result is returned on the
// coordinator; every other rank returns nil. All participants must call Run
// with identical (n, adj, opts).
func Run(ctx context.Context, c *comm.Comm, n int, adj []int32, opts Options) ([]int32, error) {
	if n <= 0 {
		return nil, apperror.ErrEmptyGraph
	}
	if len(adj) != n*n {
		return nil, apperror.Newf(apperror.CodeSizeMismatch, "adjacency of %d cells for n=%d", len(adj), n)
	}

	rank := c.Rank()
	size := c.Size()

	layout := chooseLayout(n, size, opts)
	b := layout.BlockSize
	pr, pc := layout.GridRows, layout.GridCols
	nb := dist.NumBlocks(n, b)
	blockArea := b * b

	if opts.Logger != nil && c.IsCoordinator() {
		if !layout.Clean && opts.BlockSize == 0 {
			opts.Logger.Warn("matrix does not tile cleanly, using fallback layout",
				"n", n, "participants", size, "block_size", b, "grid_rows", pr, "grid_cols", pc)
		} else {
			opts.Logger.Debug("layout chosen",
				"n", n, "block_size", b, "blocks", nb, "grid_rows", pr, "grid_cols", pc)
		}
	}
	if opts.Metrics != nil && c.IsCoordinator() {
		opts.Metrics.APSPBlockSize.Set(float64(b))
		opts.Metrics.GraphVertices.WithLabelValues("apsp").Observe(float64(n))
	}

	st := newState(n, b, pr, pc, rank, adj)

	// Strip scratch: rowBlocks[jb] holds block (kk, jb) of the current
	// pivot row, colBlocks[ib] holds block (ib, kk) of the pivot column.
	rowBlocks := make([][]int32, nb)
	colBlocks := make([][]int32, nb)
	for i := 0; i < nb; i++ {
		rowBlocks[i] = make([]int32, blockArea)
		colBlocks[i] = make([]int32, blockArea)
	}

	pivotBuf := make([]int32, blockArea)
	reqs := make([]*comm.Request, 0, nb)

	for kk := 0; kk < nb; kk++ {
		bs := liveExtent(n, b, kk)
		pivotOwner := dist.OwnerOf(kk, kk, pr, pc)

		// Phase A: the pivot owner relaxes the pivot block, then everyone
		// receives it.
		if rank == pivotOwner {
			if blk := st.block(kk, kk); blk != nil {
				fwBlock(blk, bs, b)
				copy(pivotBuf, blk)
			}
		}
		if err := c.Bcast(pivotBuf, pivotOwner); err != nil {
			return nil, err
		}
		copy(rowBlocks[kk], pivotBuf)
		copy(colBlocks[kk], pivotBuf)
		if opts.Metrics != nil && c.IsCoordinator() {
			opts.Metrics.PivotRoundsTotal.Inc()
			opts.Metrics.BlockBroadcastsTotal.WithLabelValues("pivot").Inc()
		}

		// Phase B1: pivot row strip. Owners relax in place and stage into
		// the strip scratch; the broadcasts for different jb overlap.
		reqs = reqs[:0]
		for jb := 0; jb < nb; jb++ {
			if jb == kk {
				continue
			}
			owner := dist.OwnerOf(kk, jb, pr, pc)
			wJ := liveExtent(n, b, jb)

			if rank == owner {
				if blk := st.block(kk, jb); blk != nil {
					fwRow(pivotBuf, blk, bs, wJ, b)
					copy(rowBlocks[jb], blk)
				}
			}

			req, err := c.Ibcast(rowBlocks[jb], owner)
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, req)
		}
		// Phase C for this pivot needs the whole strip: join everything.
		if err := comm.Waitall(reqs); err != nil {
			return nil, err
		}
		if opts.Metrics != nil && c.IsCoordinator() {
			opts.Metrics.BlockBroadcastsTotal.WithLabelValues("row").Add(float64(len(reqs)))
		}

		// Phase B2: pivot column strip, symmetric to B1.
		reqs = reqs[:0]
		for ib := 0; ib < nb; ib++ {
			if ib == kk {
				continue
			}
			owner := dist.OwnerOf(ib, kk, pr, pc)
			hI := liveExtent(n, b, ib)

			if rank == owner {
				if blk := st.block(ib, kk); blk != nil {
					fwCol(blk, pivotBuf, hI, bs, b)
					copy(colBlocks[ib], blk)
				}
			}

			req, err := c.Ibcast(colBlocks[ib], owner)
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, req)
		}
		if err := comm.Waitall(reqs); err != nil {
			return nil, err
		}
		if opts.Metrics != nil && c.IsCoordinator() {
			opts.Metrics.BlockBroadcastsTotal.WithLabelValues("col").Add(float64(len(reqs)))
		}

		// Phase C: relax every remaining local block against the strips.
		for idx, info := range st.blocks {
			if info.BI == kk || info.BJ == kk {
				continue
			}
			hI := liveExtent(n, b, info.BI)
			wJ := liveExtent(n, b, info.BJ)
			dij := st.data[idx*blockArea : (idx+1)*blockArea]
			fwInner(colBlocks[info.BI], rowBlocks[info.BJ], dij, hI, wJ, bs, b)
		}

		if err := ctx.Err(); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeGroupAborted, "run canceled")
		}
	}

	return gather(c, n, b, pr, pc, st, opts)
}

// chooseLayout applies the block-size override when present, otherwise
// defers to the shared selection.
func chooseLayout(n, p int, opts Options) dist.Layout {
	if opts.BlockSize > 0 {
		pr, pc := dist.BalancedGrid(p)
		return dist.Layout{BlockSize: opts.BlockSize, GridRows: pr, GridCols: pc, Clean: false}
	}
	return dist.ChooseLayout(n, p)
}

// liveExtent returns the live edge length of block index bi: b except on the
// trailing block of an indivisible matrix.
func liveExtent(n, b, bi int) int {
	if rest := n - bi*b; rest < b {
		return rest
	}
	return b
}

// state is one participant's share of the distributed matrix.
type state struct {
	blocks []dist.BlockInfo
	index  []int   // (bi*nb + bj) -> slot in data, or -1
	data   []int32 // owned blocks, blockArea cells each
	nb     int
	area   int
}

// newState enumerates the rank's blocks and fills them from the adjacency
// matrix: Inf outside the live matrix (padding), 0 on the diagonal, Inf for
// the absent-edge sentinel, the weight otherwise.
func newState(n, b, pr, pc, rank int, adj []int32) *state {
	nb := dist.NumBlocks(n, b)
	blocks := dist.LocalBlocks(n, b, pr, pc, rank)
	area := b * b

	st := &state{
		blocks: blocks,
		index:  make([]int, nb*nb),
		data:   make([]int32, len(blocks)*area),
		nb:     nb,
		area:   area,
	}
	for i := range st.index {
		st.index[i] = -1
	}

	for idx, info := range blocks {
		st.index[info.BI*nb+info.BJ] = idx
		blk := st.data[idx*area : (idx+1)*area]

		for ii := 0; ii < b; ii++ {
			gi := info.OffsetI + ii
			for jj := 0; jj < b; jj++ {
				gj := info.OffsetJ + jj

				var val int32
				switch {
				case gi >= n || gj >= n:
					val = Inf
				case gi == gj:
					val = 0
				case adj[gi*n+gj] == 0:
					val = Inf
				default:
					val = adj[gi*n+gj]
				}
				blk[ii*b+jj] = val
			}
		}
	}

	return st
}

// block returns the storage of block (bi, bj), or nil when this rank does
// not own it.
func (st *state) block(bi, bj int) []int32 {
	idx := st.index[bi*st.nb+bj]
	if idx < 0 {
		return nil
	}
	return st.data[idx*st.area : (idx+1)*st.area]
}

// gather reassembles the dense matrix on the coordinator. Every rank walks
// the same deterministic (rank, block) order, so sends and receives pair up
// with a single implicit tag.
func gather(c *comm.Comm, n, b, pr, pc int, st *state, opts Options) ([]int32, error) {
	rank := c.Rank()
	blockArea := b * b

	var out []int32
	if c.IsCoordinator() {
		out = make([]int32, n*n)
		for i := range out {
			out[i] = Inf
		}
	}

	buf := make([]int32, blockArea)
	for r := 0; r < c.Size(); r++ {
		for _, info := range dist.LocalBlocks(n, b, pr, pc, r) {
			if rank == r {
				if blk := st.block(info.BI, info.BJ); blk != nil {
					copy(buf, blk)
				}
			}

			if r != 0 {
				if rank == r {
					if err := c.Send(buf, 0); err != nil {
						return nil, err
					}
				}
				if c.IsCoordinator() {
					if err := c.Recv(buf, r); err != nil {
						return nil, err
					}
				}
			}

			if c.IsCoordinator() {
				for ii := 0; ii < b; ii++ {
					gi := info.OffsetI + ii
					if gi >= n {
						break
					}
					for jj := 0; jj < b; jj++ {
						gj := info.OffsetJ + jj
						if gj >= n {
							break
						}
						out[gi*n+gj] = buf[ii*b+jj]
					}
				}
				if opts.Metrics != nil {
					opts.Metrics.BlocksGatheredTotal.Inc()
				}
			}
		}
	}

	return out, nil
}
