package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewLogger_Levels(t *testing.T) {
	ctx := context.Background()
	require.True(t, NewLogger("debug").Enabled(ctx, slog.LevelDebug))
	require.False(t, NewLogger("warn").Enabled(ctx, slog.LevelInfo))
	require.True(t, NewLogger("bogus").Enabled(ctx, slog.LevelInfo))
	require.False(t, NewLogger("bogus").Enabled(ctx, slog.LevelDebug))
}

func TestInit_ExposesMeterReader(t *testing.T) {
	ctx := context.Background()
	instruments, shutdown, err := Init(ctx, Settings{ServiceName: "copallet-test", LogLevel: "error", OTLPInsecure: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	counter, err := instruments.Meter("test").Int64Counter("test.counter")
	require.NoError(t, err)
	counter.Add(ctx, 2)

	var rm metricdata.ResourceMetrics
	require.NoError(t, instruments.MetricReader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Equal(t, "test.counter", rm.ScopeMetrics[0].Metrics[0].Name)
}
