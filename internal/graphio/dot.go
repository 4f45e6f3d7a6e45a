package graphio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"seqclust/pkg/apperror"
)

// WriteDOT writes the weighted undirected graph of a distance matrix in DOT
// form. Vertex i is declared as node A{i+1} with label "{i}". For every
// unordered pair i < j whose distance is strictly below epsilon an edge with
// the distance as label and weight is emitted.
func WriteDOT(w io.Writer, dist []int32, n int, epsilon int32) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "graph graphe_pondere {\n")
	fmt.Fprintf(bw, "    node [shape=circle, style=filled, color=lightyellow, fontcolor=black];\n")
	fmt.Fprintf(bw, "    edge [color=black, fontcolor=blue];\n\n")

	for i := 0; i < n; i++ {
		fmt.Fprintf(bw, "    A%d [label=\"%d\"];\n", i+1, i)
	}
	fmt.Fprintf(bw, "\n")

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := dist[i*n+j]
			if d < epsilon {
				fmt.Fprintf(bw, "    A%d -- A%d [label=\"%d\", weight=%d];\n", i+1, j+1, d, d)
			}
		}
	}

	fmt.Fprintf(bw, "}\n")

	if err := bw.Flush(); err != nil {
		return apperror.Wrap(err, apperror.CodeWriteFailed, "writing DOT graph")
	}
	return nil
}

// WriteDOTFile writes the DOT graph to a file.
func WriteDOTFile(path string, dist []int32, n int, epsilon int32) error {
	f, err := os.Create(path)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeFileNotOpenable, "cannot create DOT file").WithField(path)
	}
	defer f.Close()

	return WriteDOT(f, dist, n, epsilon)
}

var (
	dotNodeRe = regexp.MustCompile(`^(\w+)\s*\[label="(\d+)"\]\s*;?$`)
	dotEdgeRe = regexp.MustCompile(`^(\w+)\s*--\s*(\w+)\s*\[label="(\d+)",\s*weight=(\d+)\]\s*;?$`)
)

// ReadDOT parses a weighted undirected graph in the dialect WriteDOT emits
// and returns the vertex count and the dense adjacency matrix with the
// absent-edge sentinel 0. Node labels assign the vertex indices; edges
// referencing undeclared nodes are an input error. Edge weights land in both
// (i, j) and (j, i).
func ReadDOT(path string) (int, []int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, apperror.Wrap(err, apperror.CodeFileNotOpenable, "cannot open DOT file").WithField(path)
	}
	defer f.Close()

	type edge struct {
		from, to string
		weight   int32
	}

	nodes := make(map[string]int)
	var edges []edge

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := trimDotLine(scanner.Text())
		if line == "" {
			continue
		}

		if m := dotEdgeRe.FindStringSubmatch(line); m != nil {
			w, err := strconv.ParseInt(m[3], 10, 32)
			if err != nil {
				return 0, nil, apperror.Newf(apperror.CodeInvalidWeight, "edge weight %q out of range", m[3])
			}
			edges = append(edges, edge{from: m[1], to: m[2], weight: int32(w)})
			continue
		}

		if m := dotNodeRe.FindStringSubmatch(line); m != nil {
			idx, err := strconv.Atoi(m[2])
			if err != nil {
				return 0, nil, apperror.Newf(apperror.CodeMalformedDot, "node label %q is not an index", m[2])
			}
			nodes[m[1]] = idx
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, nil, apperror.Wrap(err, apperror.CodeMalformedDot, "reading DOT file").WithField(path)
	}

	n := len(nodes)
	if n == 0 {
		return 0, nil, apperror.NewWithField(apperror.CodeEmptyGraph, "DOT file declares no nodes", path)
	}
	for name, idx := range nodes {
		if idx < 0 || idx >= n {
			return 0, nil, apperror.Newf(apperror.CodeMalformedDot, "node %s has label %d outside [0, %d)", name, idx, n)
		}
	}

	adj := make([]int32, n*n)
	for _, e := range edges {
		i, ok := nodes[e.from]
		if !ok {
			return 0, nil, apperror.Newf(apperror.CodeMalformedDot, "edge references undeclared node %s", e.from)
		}
		j, ok := nodes[e.to]
		if !ok {
			return 0, nil, apperror.Newf(apperror.CodeMalformedDot, "edge references undeclared node %s", e.to)
		}
		adj[i*n+j] = e.weight
		adj[j*n+i] = e.weight
	}

	return n, adj, nil
}

// trimDotLine strips surrounding whitespace, trailing comments, the graph
// braces and the attribute preamble, leaving node and edge statements intact.
func trimDotLine(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	switch {
	case line == "", line == "}":
		return ""
	case strings.HasPrefix(line, "graph"),
		strings.HasPrefix(line, "node "),
		strings.HasPrefix(line, "node["),
		strings.HasPrefix(line, "edge "),
		strings.HasPrefix(line, "edge["):
		return ""
	}
	return line
}
