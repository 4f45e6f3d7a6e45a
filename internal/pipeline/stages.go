package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"seqclust/internal/apsp"
	"seqclust/internal/comm"
	"seqclust/internal/graphio"
	"seqclust/internal/hamming"
	"seqclust/internal/medoid"
	"seqclust/pkg/apperror"
	"seqclust/pkg/logger"
	"seqclust/pkg/telemetry"
)

// BuildMatrix reads a FASTA corpus, computes the pairwise Hamming distance
// matrix across the participant group and writes the thresholded weighted
// graph in DOT form.
func (rt *Runtime) BuildMatrix(ctx context.Context, fastaPath string) error {
	ctx, span := telemetry.StartSpan(ctx, "pipeline.build_matrix")
	defer span.End()

	log := logger.WithStage("build_matrix").With("run_id", rt.RunID)

	// Input handling happens before the group starts: a bad corpus aborts
	// the run, not the engine.
	corpus, err := graphio.ReadFASTA(fastaPath)
	if err != nil {
		telemetry.SetError(ctx, err)
		return err
	}

	epsilon := int32(rt.Cfg.Matrix.Epsilon)
	telemetry.SetAttributes(ctx, telemetry.CorpusAttributes(corpus.N, corpus.Length, int(epsilon))...)
	log.Info("corpus loaded", "sequences", corpus.N, "length", corpus.Length, "epsilon", epsilon)

	var (
		dist    []int32
		elapsed time.Duration
	)
	err = comm.Run(ctx, rt.Cfg.Engine.Participants, func(c *comm.Comm) error {
		if err := c.Barrier(); err != nil {
			return err
		}
		start := time.Now()

		d, err := hamming.BuildDistanceMatrix(c, corpus.Data, corpus.N, corpus.Length)
		if err != nil {
			return err
		}

		if err := c.Barrier(); err != nil {
			return err
		}
		if c.IsCoordinator() {
			dist = d
			elapsed = time.Since(start)
		}
		return nil
	})
	rt.recordStage("build_matrix", elapsed, err)
	if err != nil {
		telemetry.SetError(ctx, err)
		return err
	}
	if rt.Metrics != nil {
		rt.Metrics.GraphVertices.WithLabelValues("build_matrix").Observe(float64(corpus.N))
	}

	if err := graphio.WriteDOTFile(rt.Cfg.Matrix.Output, dist, corpus.N, epsilon); err != nil {
		telemetry.SetError(ctx, err)
		return err
	}

	summary("distance computation + gather took %d ms", elapsed.Milliseconds())
	summary("%d sequences of length %d, epsilon %d", corpus.N, corpus.Length, epsilon)
	summary("weighted graph written to %s", rt.Cfg.Matrix.Output)
	return nil
}

// APSP reads a weighted DOT graph, computes all-pairs shortest paths on the
// participant group and writes the distance matrix text file.
func (rt *Runtime) APSP(ctx context.Context, dotPath string) error {
	ctx, span := telemetry.StartSpan(ctx, "pipeline.apsp")
	defer span.End()

	log := logger.WithStage("apsp").With("run_id", rt.RunID)

	n, adj, err := graphio.ReadDOT(dotPath)
	if err != nil {
		telemetry.SetError(ctx, err)
		return err
	}
	log.Info("graph loaded", "vertices", n)
	telemetry.SetAttributes(ctx, attribute.Int(telemetry.AttrGraphVertices, n))

	opts := apsp.Options{
		BlockSize: rt.Cfg.APSP.BlockSize,
		Logger:    log,
		Metrics:   rt.Metrics,
	}

	var (
		dist    []int32
		elapsed time.Duration
	)
	err = comm.Run(ctx, rt.Cfg.Engine.Participants, func(c *comm.Comm) error {
		if err := c.Barrier(); err != nil {
			return err
		}
		start := time.Now()

		d, err := apsp.Run(ctx, c, n, adj, opts)
		if err != nil {
			return err
		}

		if err := c.Barrier(); err != nil {
			return err
		}
		if c.IsCoordinator() {
			dist = d
			elapsed = time.Since(start)
		}
		return nil
	})
	rt.recordStage("apsp", elapsed, err)
	if err != nil {
		telemetry.SetError(ctx, err)
		return err
	}

	if err := graphio.WriteMatrixFile(rt.Cfg.APSP.Output, dist, n, n); err != nil {
		telemetry.SetError(ctx, err)
		return err
	}

	summary("parallel shortest paths took %d ms", elapsed.Milliseconds())
	summary("%dx%d distance matrix written to %s", n, n, rt.Cfg.APSP.Output)
	return nil
}

// PAM reads a distance matrix, clusters the vertices around k medoids on
// the participant group and writes the partition file.
func (rt *Runtime) PAM(ctx context.Context, distPath string) error {
	ctx, span := telemetry.StartSpan(ctx, "pipeline.pam")
	defer span.End()

	log := logger.WithStage("pam").With("run_id", rt.RunID)

	n, dist, err := graphio.ReadMatrix(distPath)
	if err != nil {
		telemetry.SetError(ctx, err)
		return err
	}

	k := rt.Cfg.PAM.K
	if k < 1 || k > n {
		err := apperror.NewWithField(apperror.CodeKOutOfRange, "cluster count must be in [1, n]", "k").
			WithDetails("k", k).WithDetails("n", n)
		telemetry.SetError(ctx, err)
		return err
	}
	log.Info("distance matrix loaded", "vertices", n, "k", k)

	opts := medoid.Options{
		Seed:    rt.Cfg.PAM.Seed,
		Logger:  log,
		Metrics: rt.Metrics,
	}

	var (
		res     *medoid.Result
		elapsed time.Duration
	)
	err = comm.Run(ctx, rt.Cfg.Engine.Participants, func(c *comm.Comm) error {
		if err := c.Barrier(); err != nil {
			return err
		}
		start := time.Now()

		r, err := medoid.Run(c, dist, n, k, opts)
		if err != nil {
			return err
		}

		if err := c.Barrier(); err != nil {
			return err
		}
		if c.IsCoordinator() {
			res = r
			elapsed = time.Since(start)
		}
		return nil
	})
	rt.recordStage("pam", elapsed, err)
	if err != nil {
		telemetry.SetError(ctx, err)
		return err
	}

	telemetry.SetAttributes(ctx, telemetry.ClusteringAttributes(k, res.TotalCost, res.Passes)...)

	if err := graphio.WritePAMResultFile(rt.Cfg.PAM.Output, res); err != nil {
		telemetry.SetError(ctx, err)
		return err
	}

	summary("clustering took %d ms", elapsed.Milliseconds())
	summary("total cost = %d", res.TotalCost)
	summary("medoids: %v", res.Medoids)
	summary("partition written to %s", rt.Cfg.PAM.Output)
	return nil
}
