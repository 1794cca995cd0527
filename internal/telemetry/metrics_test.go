package telemetry

import (
	"errors"
	"testing"

	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch_CountsAttemptsAndRetries(t *testing.T) {
	m := NewMetricsRegistry()

	m.ObserveFetch("coin_details", 1, errors.New("boom"))
	m.ObserveFetch("coin_details", 2, errors.New("boom"))
	m.ObserveFetch("coin_details", 3, nil)

	dto := &io_prometheus_client.Metric{}

	c, err := m.FetchAttempts.GetMetricWithLabelValues("coin_details", "error")
	require.NoError(t, err)
	require.NoError(t, c.Write(dto))
	assert.Equal(t, 2.0, dto.GetCounter().GetValue())

	c, err = m.FetchAttempts.GetMetricWithLabelValues("coin_details", "success")
	require.NoError(t, err)
	require.NoError(t, c.Write(dto))
	assert.Equal(t, 1.0, dto.GetCounter().GetValue())

	c, err = m.FetchRetries.GetMetricWithLabelValues("coin_details")
	require.NoError(t, err)
	require.NoError(t, c.Write(dto))
	assert.Equal(t, 2.0, dto.GetCounter().GetValue())
}

func TestObserveCache_UpdatesHitRatio(t *testing.T) {
	m := NewMetricsRegistry()

	m.ObserveCache("coin_details", true)
	m.ObserveCache("coin_details", true)
	m.ObserveCache("coin_details", false)
	m.ObserveCache("holders", true)

	dto := &io_prometheus_client.Metric{}
	require.NoError(t, m.CacheHitRatio.Write(dto))
	assert.InDelta(t, 0.75, dto.GetGauge().GetValue(), 1e-9)
}

func TestRecordVerdict_AlertsOnlyHighAndCritical(t *testing.T) {
	m := NewMetricsRegistry()

	m.RecordVerdict("sell", "high", "high")
	m.RecordVerdict("hold", "medium", "low")
	m.RecordVerdict("strong_sell", "very_high", "critical")

	dto := &io_prometheus_client.Metric{}

	c, err := m.RugPullAlerts.GetMetricWithLabelValues("high")
	require.NoError(t, err)
	require.NoError(t, c.Write(dto))
	assert.Equal(t, 1.0, dto.GetCounter().GetValue())

	c, err = m.RugPullAlerts.GetMetricWithLabelValues("critical")
	require.NoError(t, err)
	require.NoError(t, c.Write(dto))
	assert.Equal(t, 1.0, dto.GetCounter().GetValue())

	c, err = m.Recommendations.GetMetricWithLabelValues("sell")
	require.NoError(t, err)
	require.NoError(t, c.Write(dto))
	assert.Equal(t, 1.0, dto.GetCounter().GetValue())
}
