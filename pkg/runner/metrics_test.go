package runner

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	start, transitions := linearFixture()

	_, err := Run(start, transitions, WithObserver(metrics.Observer("deploy")))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.nodeVisits.WithLabelValues("deploy", "start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.nodeVisits.WithLabelValues("deploy", "second")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.states.WithLabelValues("deploy", "start::success::done")))
}
