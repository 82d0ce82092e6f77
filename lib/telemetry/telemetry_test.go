package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "legiscrape-test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestConfigDefaults(t *testing.T) {
	require.Equal(t, defaultMetricInterval, Config{}.metricInterval())
	require.Equal(t, time.Minute, Config{MetricIntervalSec: 60}.metricInterval())

	require.Equal(t, "AlwaysOnSampler", Config{}.sampler().Description())
	require.Contains(t, Config{TraceRatio: 0.5}.sampler().Description(), "TraceIDRatioBased{0.5}")
}

func TestScrapeCountersZeroValue(t *testing.T) {
	var counters ScrapeCounters
	counters.Record(context.Background(), "ak", "upper")
	counters.Skip(context.Background(), "ak", "upper", "vacant")
	counters.FieldWarning(context.Background(), "ak", "upper")
}
