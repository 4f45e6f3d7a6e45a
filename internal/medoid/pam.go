// Package medoid partitions vertices around k medoids (PAM) with a
// distributed cost evaluator.
//
// The coordinator owns the search: it seeds the medoid set, enumerates swap
// candidates, and keeps the best improvement of each pass. Every candidate's
// cost is evaluated collectively: each rank sums the nearest-medoid
// distances of a contiguous vertex range and an all-reduce produces the
// global cost. The coordinator-only decision never bypasses a collective:
// every rank evaluates every candidate, then learns through a broadcast flag
// whether another pass starts.
package medoid

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"seqclust/internal/comm"
	"seqclust/pkg/apperror"
	"seqclust/pkg/metrics"
)

// Inf bounds distances in the cost computation. Kept well under the int32
// ceiling so 2·Inf cannot overflow.
const Inf int32 = 100_000

// Options tunes one clustering run.
type Options struct {
	// Seed seeds the medoid initialization; 0 draws from the wall clock.
	Seed uint64
	// Logger receives coordinator-side progress logs. Nil disables them.
	Logger *slog.Logger
	// Metrics receives engine counters. Nil disables them.
	Metrics *metrics.Metrics
}

// Result is the clustering outcome, populated on the coordinator only.
type Result struct {
	Medoids      []int   // k medoid vertex ids
	ClusterOf    []int   // vertex -> medoid slot in Medoids
	DistToMedoid []int32 // vertex -> distance to its medoid
	TotalCost    int64
	Passes       int // completed improvement passes
}

// Run clusters the n vertices of the replicated distance matrix dist around
// k medoids. The result is returned on the coordinator; every other rank
// returns nil. All participants must call Run with identical inputs.
func Run(c *comm.Comm, dist []int32, n, k int, opts Options) (*Result, error) {
	if n <= 0 {
		return nil, apperror.ErrEmptyGraph
	}
	if len(dist) != n*n {
		return nil, apperror.Newf(apperror.CodeSizeMismatch, "distance matrix of %d cells for n=%d", len(dist), n)
	}
	if k < 1 || k > n {
		return nil, apperror.NewWithField(apperror.CodeKOutOfRange,
			"cluster count must be in [1, n]", "k")
	}

	medoids := make([]int32, k)

	// The coordinator draws k distinct vertices: shuffle [0, n), take the
	// first k. Single random restart per run, so the sample quality matters.
	if c.IsCoordinator() {
		seed := opts.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		for i, v := range rng.Perm(n)[:k] {
			medoids[i] = int32(v)
		}
		if opts.Logger != nil {
			opts.Logger.Debug("medoids initialized", "k", k, "seed", seed)
		}
	}
	if err := c.Bcast(medoids, 0); err != nil {
		return nil, err
	}

	bestCost, err := evalCost(c, dist, n, medoids)
	if err != nil {
		return nil, err
	}

	candidate := make([]int32, k)
	flag := make([]int32, 1)
	passes := 0

	for {
		improved := false
		bestCostThisPass := bestCost
		bestMedoidsThisPass := append([]int32(nil), medoids...)

		// Try every swap (slot m, vertex h) with h not currently a medoid.
		// The evaluation is collective, so every rank enumerates the exact
		// same candidates in the exact same order.
		for m := 0; m < k; m++ {
			for h := 0; h < n; h++ {
				if isMedoid(medoids, int32(h)) {
					continue
				}

				copy(candidate, medoids)
				candidate[m] = int32(h)

				cost, err := evalCost(c, dist, n, candidate)
				if err != nil {
					return nil, err
				}
				if opts.Metrics != nil && c.IsCoordinator() {
					opts.Metrics.SwapEvaluationsTotal.Inc()
				}

				// Best improvement: the pass commits the single best swap.
				if c.IsCoordinator() && cost < bestCostThisPass {
					bestCostThisPass = cost
					copy(bestMedoidsThisPass, candidate)
					improved = true
				}
			}
		}

		passes++
		if opts.Metrics != nil && c.IsCoordinator() {
			opts.Metrics.ImprovementPasses.Inc()
		}

		flag[0] = 0
		if improved {
			flag[0] = 1
		}
		if err := c.Bcast(flag, 0); err != nil {
			return nil, err
		}
		if flag[0] == 0 {
			break
		}

		if c.IsCoordinator() {
			copy(medoids, bestMedoidsThisPass)
			bestCost = bestCostThisPass
			if opts.Logger != nil {
				opts.Logger.Debug("improvement pass committed", "pass", passes, "cost", bestCost)
			}
		}
		if err := c.Bcast(medoids, 0); err != nil {
			return nil, err
		}
	}

	if !c.IsCoordinator() {
		return nil, nil
	}

	res := assign(dist, n, medoids)
	res.Passes = passes
	if opts.Metrics != nil {
		opts.Metrics.ClusterCost.Set(float64(res.TotalCost))
	}
	return res, nil
}

// evalCost computes the global cost of a candidate medoid set: each rank
// handles a contiguous vertex range and the partial sums meet in an
// all-reduce. Collective: every rank must call it for every candidate.
func evalCost(c *comm.Comm, dist []int32, n int, medoids []int32) (int64, error) {
	start, end := comm.ChunkRange(n, c.Size(), c.Rank())

	var local int64
	for i := start; i < end; i++ {
		best := Inf
		for _, med := range medoids {
			if d := dist[i*n+int(med)]; d < best {
				best = d
			}
		}
		local += int64(best)
	}

	return c.AllreduceSum(local)
}

// assign recomputes the final partition on the coordinator: for every vertex
// the nearest medoid slot, ties broken by the smallest slot.
func assign(dist []int32, n int, medoids []int32) *Result {
	k := len(medoids)
	res := &Result{
		Medoids:      make([]int, k),
		ClusterOf:    make([]int, n),
		DistToMedoid: make([]int32, n),
	}
	for m, med := range medoids {
		res.Medoids[m] = int(med)
	}

	for i := 0; i < n; i++ {
		bestSlot := 0
		best := Inf
		for m := 0; m < k; m++ {
			if d := dist[i*n+res.Medoids[m]]; d < best {
				best = d
				bestSlot = m
			}
		}
		res.ClusterOf[i] = bestSlot
		res.DistToMedoid[i] = best
		res.TotalCost += int64(best)
	}

	return res
}

func isMedoid(medoids []int32, v int32) bool {
	for _, m := range medoids {
		if m == v {
			return true
		}
	}
	return false
}
