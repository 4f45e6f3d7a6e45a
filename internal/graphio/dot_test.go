package graphio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqclust/pkg/apperror"
)

func TestWriteDOT(t *testing.T) {
	// 3 sequences, distances: (0,1)=2, (0,2)=9, (1,2)=4; epsilon 5 keeps
	// two edges.
	dist := []int32{
		0, 2, 9,
		2, 0, 4,
		9, 4, 0,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, dist, 3, 5))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "graph graphe_pondere {"))
	assert.Contains(t, out, `A1 [label="0"];`)
	assert.Contains(t, out, `A3 [label="2"];`)
	assert.Contains(t, out, `A1 -- A2 [label="2", weight=2];`)
	assert.Contains(t, out, `A2 -- A3 [label="4", weight=4];`)
	assert.NotContains(t, out, "A1 -- A3")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "}"))
}

func TestDOTRoundTrip(t *testing.T) {
	dist := []int32{
		0, 2, 9, 1,
		2, 0, 4, 60,
		9, 4, 0, 3,
		1, 60, 3, 0,
	}
	const n = 4
	const epsilon = 50

	path := filepath.Join(t.TempDir(), "graph.dot")
	require.NoError(t, WriteDOTFile(path, dist, n, epsilon))

	gotN, adj, err := ReadDOT(path)
	require.NoError(t, err)
	require.Equal(t, n, gotN)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := int32(0)
			if i != j && dist[i*n+j] < epsilon {
				want = dist[i*n+j]
			}
			assert.Equal(t, want, adj[i*n+j], "cell (%d,%d)", i, j)
		}
	}
}

func TestReadDOT_IgnoresPreambleAndComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.dot")
	require.NoError(t, os.WriteFile(path, []byte(`graph graphe_pondere {
    node [shape=circle, style=filled, color=lightyellow, fontcolor=black];
    edge [color=black, fontcolor=blue];

    A1 [label="0"];
    A2 [label="1"];

    // weighted edges below
    A1 -- A2 [label="7", weight=7];
}
`), 0644))

	n, adj, err := ReadDOT(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int32{0, 7, 7, 0}, adj)
}

func TestReadDOT_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    apperror.ErrorCode
	}{
		{
			name:    "no_nodes",
			content: "graph graphe_pondere {\n}\n",
			code:    apperror.CodeEmptyGraph,
		},
		{
			name:    "undeclared_node",
			content: "graph g {\nA1 [label=\"0\"];\nA1 -- A9 [label=\"3\", weight=3];\n}\n",
			code:    apperror.CodeMalformedDot,
		},
		{
			name:    "label_outside_range",
			content: "graph g {\nA1 [label=\"5\"];\n}\n",
			code:    apperror.CodeMalformedDot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.dot")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, _, err := ReadDOT(path)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestReadDOT_MissingFile(t *testing.T) {
	_, _, err := ReadDOT(filepath.Join(t.TempDir(), "absent.dot"))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeFileNotOpenable))
}
