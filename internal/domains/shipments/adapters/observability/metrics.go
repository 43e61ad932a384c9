package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/copallet/copallet-api/internal/domains/shipments/application"
	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
)

type serviceMetrics struct {
	transitions metric.Int64Counter
	bidsPlaced  metric.Int64Counter
	failures    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	transitions, _ := m.Int64Counter("shipments.service.transitions", metric.WithDescription("Number of committed status transitions"))
	bidsPlaced, _ := m.Int64Counter("shipments.service.bids_placed", metric.WithDescription("Number of bids placed"))
	failures, _ := m.Int64Counter("shipments.service.failures", metric.WithDescription("Number of rejected lifecycle operations"))
	return serviceMetrics{
		transitions: transitions,
		bidsPlaced:  bidsPlaced,
		failures:    failures,
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, op domain.Operation, to domain.Status) {
	addCounter(ctx, m.transitions, 1,
		attribute.String("shipment.operation", string(op)),
		attribute.String("shipment.status", string(to)),
	)
}

func (m serviceMetrics) recordBid(ctx context.Context) {
	addCounter(ctx, m.bidsPlaced, 1)
}

func (m serviceMetrics) recordFailure(ctx context.Context, op domain.Operation, err error) {
	addCounter(ctx, m.failures, 1,
		attribute.String("shipment.operation", string(op)),
		attribute.String("error.kind", errorKind(err)),
	)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, application.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, application.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, application.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, application.ErrNotFound):
		return "not_found"
	case errors.Is(err, application.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

// Rejected commands are expected traffic; only unclassified errors are logged as errors.
func levelFor(err error) slog.Level {
	if errorKind(err) == "internal" {
		return slog.LevelError
	}
	return slog.LevelWarn
}
