// Package main is the entry point of pipeline_build_matrix.
//
// The program reads a FASTA corpus, computes the pairwise Hamming distance
// matrix over the configured participant group, and writes the thresholded
// weighted graph in DOT form for the shortest-path stage:
//
//	pipeline_build_matrix [flags] <fasta_path>
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
		epsilon      int
		output       string
		participants int
	)

	cmd := &cobra.Command{
		Use:          "pipeline_build_matrix <fasta_path>",
		Short:        "Build the Hamming distance graph of a sequence corpus",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return apperror.Wrap(err, apperror.CodeInvalidConfiguration, "loading configuration")
			}
			if cmd.Flags().Changed("epsilon") {
				cfg.Matrix.Epsilon = epsilon
			}
			if cmd.Flags().Changed("out") {
				cfg.Matrix.Output = output
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

			return rt.BuildMatrix(ctx, args[0])
		},
	}

	cmd.Flags().IntVar(&epsilon, "epsilon", 70, "edge threshold: keep pairs with Hamming distance below it")
	cmd.Flags().StringVar(&output, "out", "sequences.dot", "output DOT file")
	cmd.Flags().IntVar(&participants, "participants", 4, "number of participants in the compute group")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(apperror.ExitCode(err))
	}
}
