package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard attribute keys for pipeline spans.
const (
	AttrGraphVertices = "graph.vertices"
	AttrGraphEdges    = "graph.edges"

	AttrParticipants = "engine.participants"
	AttrBlockSize    = "engine.block_size"
	AttrGridRows     = "engine.grid_rows"
	AttrGridCols     = "engine.grid_cols"

	AttrMedoidCount = "pam.k"
	AttrTotalCost   = "pam.total_cost"
	AttrPasses      = "pam.passes"

	AttrSequences      = "corpus.sequences"
	AttrSequenceLength = "corpus.sequence_length"
	AttrEpsilon        = "corpus.epsilon"
)

// EngineAttributes returns the layout attributes of an APSP run.
func EngineAttributes(participants, blockSize, gridRows, gridCols int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrParticipants, participants),
		attribute.Int(AttrBlockSize, blockSize),
		attribute.Int(AttrGridRows, gridRows),
		attribute.Int(AttrGridCols, gridCols),
	}
}

// ClusteringAttributes returns the attributes of a PAM run.
func ClusteringAttributes(k int, totalCost int64, passes int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrMedoidCount, k),
		attribute.Int64(AttrTotalCost, totalCost),
		attribute.Int(AttrPasses, passes),
	}
}

// CorpusAttributes returns the attributes of a sequence corpus.
func CorpusAttributes(sequences, length, epsilon int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrSequences, sequences),
		attribute.Int(AttrSequenceLength, length),
		attribute.Int(AttrEpsilon, epsilon),
	}
}
