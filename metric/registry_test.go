package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/dynsynonym/errors"
)

func TestNewRegistry_CoreMetricsRegistered(t *testing.T) {
	r := NewRegistry()

	require.NotNil(t, r.CoreMetrics())
	require.NotNil(t, r.PrometheusRegistry())

	// Core metrics must be collectable without error
	r.Metrics.PollCycles.WithLabelValues("file:/tmp/syn.txt", ResultReloaded).Inc()
	r.Metrics.ActiveConsumers.Set(2)

	families, err := r.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["dynsynonym_poll_cycles_total"])
	assert.True(t, names["dynsynonym_filter_active_consumers"])
}

func TestRegistry_RegisterAndUnregister(t *testing.T) {
	r := NewRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_test_total",
		Help: "test counter",
	})

	require.NoError(t, r.RegisterCounter("scheduler", "scheduler_test_total", counter))

	// Duplicate registration is rejected and classified invalid
	err := r.RegisterCounter("scheduler", "scheduler_test_total", counter)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	assert.True(t, r.Unregister("scheduler", "scheduler_test_total"))
	assert.False(t, r.Unregister("scheduler", "scheduler_test_total"))
}

func TestRegistry_RegisterGauge(t *testing.T) {
	r := NewRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "worker_pool_queue_depth",
		Help: "test gauge",
	})
	require.NoError(t, r.RegisterGauge("worker_pool", "worker_pool_queue_depth", gauge))
}
