// Package main is the entry point of pipeline_apsp.
//
// The program reads a weighted undirected graph in DOT form, computes the
// all-pairs shortest-path matrix with the blocked 2-D Floyd–Warshall engine
// over the configured participant group, and writes the distance matrix text
// file for the clustering stage:
//
//	pipeline_apsp [flags] <dot_path>
//
// Configuration comes from defaults, an optional config.yaml and SEQCLUST_*
// environment variables; flags override all three. Exit status is 0 on
// success, 2 on input or configuration errors, 3 on missing files, 1
// otherwise.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seqclust/internal/pipeline"
	"seqclust/pkg/apperror"
	"seqclust/pkg/config"
)

func main() {
	var (
		blockSize    int
		output       string
		participants int
	)

	cmd := &cobra.Command{
		Use:          "pipeline_apsp <dot_path>",
		Short:        "Compute all-pairs shortest paths of a weighted graph",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return apperror.Wrap(err, apperror.CodeInvalidConfiguration, "loading configuration")
			}
			if cmd.Flags().Changed("block-size") {
				cfg.APSP.BlockSize = blockSize
			}
			if cmd.Flags().Changed("out") {
				cfg.APSP.Output = output
			}
			if cmd.Flags().Changed("participants") {
				cfg.Engine.Participants = participants
			}
			if err := cfg.Validate(); err != nil {
				return apperror.Wrap(err, apperror.CodeInvalidConfiguration, "validating configuration")
			}

			ctx := context.Background()
			rt, err := pipeline.NewRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			return rt.APSP(ctx, args[0])
		},
	}

	cmd.Flags().IntVar(&blockSize, "block-size", 0, "block edge length (0 = choose from n and the participant count)")
	cmd.Flags().StringVar(&output, "out", "distances.txt", "output distance matrix file")
	cmd.Flags().IntVar(&participants, "participants", 4, "number of participants in the compute group")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(apperror.ExitCode(err))
	}
}
