// Package main is the entry point of pipeline_pam.
//
// The program reads a distance matrix text file, partitions the vertices
// around k medoids with the distributed PAM engine, and writes the resulting
// partition file:
//
//	pipeline_pam [flags] <dist_path>
//
// Configuration comes from defaults, an optional config.yaml and SEQCLUST_*
// environment variables; flags override all three. The cluster count
// defaults to 4. Exit status is 0 on success, 2 on input or configuration
// errors, 3 on missing files, 1 otherwise.
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
		k            int
		seed         uint64
		output       string
		participants int
	)

	cmd := &cobra.Command{
		Use:          "pipeline_pam <dist_path>",
		Short:        "Cluster vertices around k medoids from a distance matrix",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return apperror.Wrap(err, apperror.CodeInvalidConfiguration, "loading configuration")
			}
			if cmd.Flags().Changed("k") {
				cfg.PAM.K = k
			}
			if cmd.Flags().Changed("seed") {
				cfg.PAM.Seed = seed
			}
			if cmd.Flags().Changed("out") {
				cfg.PAM.Output = output
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

			return rt.PAM(ctx, args[0])
		},
	}

	cmd.Flags().IntVar(&k, "k", 4, "number of clusters")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for medoid initialization (0 = wall clock)")
	cmd.Flags().StringVar(&output, "out", "clusters.txt", "output partition file")
	cmd.Flags().IntVar(&participants, "participants", 4, "number of participants in the compute group")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(apperror.ExitCode(err))
	}
}
