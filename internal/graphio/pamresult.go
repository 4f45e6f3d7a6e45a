package graphio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"seqclust/internal/medoid"
	"seqclust/pkg/apperror"
)

// WritePAMResult writes the clustering outcome in the pipeline's result
// format: commented header lines with n, k and the total cost, the medoid
// list, and one "vertex cluster medoid dist" row per vertex.
func WritePAMResult(w io.Writer, res *medoid.Result) error {
	bw := bufio.NewWriter(w)

	n := len(res.ClusterOf)
	k := len(res.Medoids)

	fmt.Fprintf(bw, "# PAM results\n")
	fmt.Fprintf(bw, "# n = %d\n", n)
	fmt.Fprintf(bw, "# k = %d\n", k)
	fmt.Fprintf(bw, "# total_cost = %d\n\n", res.TotalCost)

	fmt.Fprintf(bw, "# medoids:\n")
	for m, med := range res.Medoids {
		sep := " "
		if m == k-1 {
			sep = "\n"
		}
		fmt.Fprintf(bw, "%d%s", med, sep)
	}
	fmt.Fprintf(bw, "\n")

	fmt.Fprintf(bw, "# columns: vertex cluster medoid dist\n")
	for i := 0; i < n; i++ {
		cluster := res.ClusterOf[i]
		fmt.Fprintf(bw, "%d %d %d %d\n", i, cluster, res.Medoids[cluster], res.DistToMedoid[i])
	}

	if err := bw.Flush(); err != nil {
		return apperror.Wrap(err, apperror.CodeWriteFailed, "writing PAM result")
	}
	return nil
}

// WritePAMResultFile writes the clustering outcome to a file.
func WritePAMResultFile(path string, res *medoid.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeFileNotOpenable, "cannot create result file").WithField(path)
	}
	defer f.Close()

	return WritePAMResult(f, res)
}
