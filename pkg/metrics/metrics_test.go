package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshRegistry(t *testing.T) {
	t.Helper()
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
}

func TestInitMetrics(t *testing.T) {
	freshRegistry(t)

	m := InitMetrics("test", "pipeline")
	require.NotNil(t, m)
	assert.Same(t, m, Default())

	m.PivotRoundsTotal.Inc()
	m.BlockBroadcastsTotal.WithLabelValues("row").Add(3)
	m.SwapEvaluationsTotal.Add(12)
	m.ClusterCost.Set(42)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.PivotRoundsTotal))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.BlockBroadcastsTotal.WithLabelValues("row")))
	assert.Equal(t, float64(42), testutil.ToFloat64(m.ClusterCost))
}

func TestRecordStage(t *testing.T) {
	freshRegistry(t)
	m := InitMetrics("test", "stages")

	m.RecordStage("apsp", 120*time.Millisecond, nil)
	m.RecordStage("apsp", 80*time.Millisecond, errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.StageRunsTotal.WithLabelValues("apsp", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StageRunsTotal.WithLabelValues("apsp", "error")))
}

func TestRuntimeCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewRuntimeCollector("test", "rt")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
