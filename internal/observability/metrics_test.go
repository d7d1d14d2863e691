package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := NewMetrics()

	m.ItemFailures().WithLabelValues("load").Inc()
	m.ItemFailures().WithLabelValues("load").Inc()
	m.TranslationFailures().Add(3)
	m.SelectedTests().WithLabelValues("raptor").Add(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ItemFailures().WithLabelValues("load")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TranslationFailures()))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.SelectedTests().WithLabelValues("raptor")))
}

func TestObserveAlgorithm(t *testing.T) {
	m := NewMetrics()
	m.ObserveAlgorithm("prioritization", "flint", time.Now().Add(-time.Second))
	m.ObserveAlgorithm("clustering", "coverage", time.Now())
	assert.Equal(t, 2, testutil.CollectAndCount(m.AlgorithmDuration()))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ClustersBuilt().WithLabelValues("coverage").Add(7)
	m.LastSuccess().WithLabelValues("nightly").Set(1700000000)

	path := filepath.Join(t.TempDir(), "covkit.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `covkit_clusters_total{algorithm="coverage"} 7`)
	assert.Contains(t, string(data), `covkit_job_last_success_timestamp_seconds{job="nightly"} 1.7e+09`)
}

func TestWriteTextfileBadPath(t *testing.T) {
	err := NewMetrics().WriteTextfile(filepath.Join(t.TempDir(), "missing", "covkit.prom"))
	assert.Error(t, err)
}
