package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersMetricsAgainstProvidedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := New("debug", "fosnet-test", reg)
	require.NoError(t, err)
	require.NotNil(t, o.Logger)
	require.NotNil(t, o.Tracer)

	o.Metrics.NetworksConstructedTotal.WithLabelValues("l2", "success").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	require.NoError(t, o.Shutdown(context.Background()))
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	require.Equal(t, parseLevel("bogus"), parseLevel("info"))
}
