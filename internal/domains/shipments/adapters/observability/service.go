package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/copallet/copallet-api/internal/domains/shipments/application/types"
	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
)

const tracerName = "github.com/copallet/copallet-api/internal/domains/shipments/adapters/observability/service"

// Service decorates the shipments application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CreateShipment(ctx context.Context, input types.CreateShipmentInput) (*domain.Shipment, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateShipment", actorAttrs(input.Actor)...)
	defer span.End()

	result, err := s.inner.CreateShipment(ctx, input)
	if err != nil {
		return nil, s.fail(ctx, span, domain.OpCreate, err, slog.String("actor.id", input.Actor.ID))
	}
	span.SetAttributes(attribute.String("shipment.id", result.ID))
	s.logInfo(ctx, "shipment created", slog.String("shipment.id", result.ID), slog.String("shipper.id", result.ShipperID))
	return result, nil
}

func (s *Service) Publish(ctx context.Context, input types.ShipmentCommand) (*domain.Shipment, error) {
	return s.command(ctx, domain.OpPublish, input.ShipmentID, input.Actor, func(ctx context.Context) (*domain.Shipment, error) {
		return s.inner.Publish(ctx, input)
	})
}

func (s *Service) PlaceBid(ctx context.Context, input types.PlaceBidInput) (*domain.Bid, error) {
	attrs := append(actorAttrs(input.Actor), attribute.String("shipment.id", input.ShipmentID), attribute.String("bid.price", input.Price.String()))
	ctx, span := s.startSpan(ctx, "Service.PlaceBid", attrs...)
	defer span.End()

	bid, err := s.inner.PlaceBid(ctx, input)
	if err != nil {
		return nil, s.fail(ctx, span, domain.OpPlaceBid, err, slog.String("shipment.id", input.ShipmentID), slog.String("actor.id", input.Actor.ID))
	}
	span.SetAttributes(attribute.String("bid.id", bid.ID))
	s.metrics.recordBid(ctx)
	s.logInfo(ctx, "bid placed",
		slog.String("shipment.id", bid.ShipmentID),
		slog.String("bid.id", bid.ID),
		slog.String("carrier.id", bid.CarrierID),
		slog.String("price", bid.Price.String()),
	)
	return bid, nil
}

func (s *Service) AcceptBid(ctx context.Context, input types.AcceptBidInput) (*domain.Shipment, *domain.Bid, error) {
	var accepted *domain.Bid
	shipment, err := s.command(ctx, domain.OpAcceptBid, input.ShipmentID, input.Actor, func(ctx context.Context) (*domain.Shipment, error) {
		span := trace.SpanFromContext(ctx)
		span.SetAttributes(attribute.String("bid.id", input.BidID))
		shipment, bid, err := s.inner.AcceptBid(ctx, input)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.String("carrier.id", bid.CarrierID), attribute.String("bid.price", bid.Price.String()))
		accepted = bid
		return shipment, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return shipment, accepted, nil
}

func (s *Service) StartTransit(ctx context.Context, input types.ShipmentCommand) (*domain.Shipment, error) {
	return s.command(ctx, domain.OpStartTransit, input.ShipmentID, input.Actor, func(ctx context.Context) (*domain.Shipment, error) {
		return s.inner.StartTransit(ctx, input)
	})
}

func (s *Service) MarkDelivered(ctx context.Context, input types.MarkDeliveredInput) (*domain.Shipment, error) {
	return s.command(ctx, domain.OpMarkDelivered, input.ShipmentID, input.Actor, func(ctx context.Context) (*domain.Shipment, error) {
		return s.inner.MarkDelivered(ctx, input)
	})
}

func (s *Service) Cancel(ctx context.Context, input types.ShipmentCommand) (*domain.Shipment, error) {
	return s.command(ctx, domain.OpCancel, input.ShipmentID, input.Actor, func(ctx context.Context) (*domain.Shipment, error) {
		return s.inner.Cancel(ctx, input)
	})
}

func (s *Service) GetShipment(ctx context.Context, id string) (*domain.Shipment, error) {
	ctx, span := s.startSpan(ctx, "Service.GetShipment", attribute.String("shipment.id", id))
	defer span.End()

	result, err := s.inner.GetShipment(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load shipment", slog.String("shipment.id", id))
	}
	return result, nil
}

func (s *Service) ListShipments(ctx context.Context, filter types.ShipmentFilter) ([]*domain.Shipment, error) {
	ctx, span := s.startSpan(ctx, "Service.ListShipments",
		attribute.String("filter.status", string(filter.Status)),
		attribute.Int("filter.limit", filter.Limit),
		attribute.Int("filter.offset", filter.Offset),
	)
	defer span.End()

	result, err := s.inner.ListShipments(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list shipments", slog.String("status", string(filter.Status)))
	}
	span.SetAttributes(attribute.Int("shipment.result.count", len(result)))
	return result, nil
}

func (s *Service) ListBids(ctx context.Context, shipmentID string) ([]*domain.Bid, error) {
	ctx, span := s.startSpan(ctx, "Service.ListBids", attribute.String("shipment.id", shipmentID))
	defer span.End()

	result, err := s.inner.ListBids(ctx, shipmentID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list bids", slog.String("shipment.id", shipmentID))
	}
	span.SetAttributes(attribute.Int("bid.result.count", len(result)))
	return result, nil
}

func (s *Service) History(ctx context.Context, shipmentID string) ([]domain.Transition, error) {
	ctx, span := s.startSpan(ctx, "Service.History", attribute.String("shipment.id", shipmentID))
	defer span.End()

	result, err := s.inner.History(ctx, shipmentID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load history", slog.String("shipment.id", shipmentID))
	}
	return result, nil
}

// command instruments a status-changing operation.
func (s *Service) command(ctx context.Context, op domain.Operation, shipmentID string, actor domain.Actor, call func(context.Context) (*domain.Shipment, error)) (*domain.Shipment, error) {
	attrs := append(actorAttrs(actor), attribute.String("shipment.id", shipmentID))
	ctx, span := s.startSpan(ctx, "Service."+spanName(op), attrs...)
	defer span.End()

	result, err := call(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("shipment.id", shipmentID), slog.String("actor.id", actor.ID))
	}
	span.SetAttributes(attribute.String("shipment.status", string(result.Status)))
	s.metrics.recordTransition(ctx, op, result.Status)
	s.logInfo(ctx, "shipment transitioned",
		slog.String("shipment.id", result.ID),
		slog.String("operation", string(op)),
		slog.String("status", string(result.Status)),
		slog.Int64("version", result.Version),
	)
	return result, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, op domain.Operation, err error, attrs ...slog.Attr) error {
	s.metrics.recordFailure(ctx, op, err)
	return s.handleError(ctx, span, err, "shipment operation failed", append(attrs, slog.String("operation", string(op)))...)
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, levelFor(err), msg, attrs...)
	return err
}

func actorAttrs(actor domain.Actor) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("actor.id", actor.ID),
		attribute.String("actor.role", string(actor.Role)),
	}
}

func spanName(op domain.Operation) string {
	switch op {
	case domain.OpPublish:
		return "Publish"
	case domain.OpAcceptBid:
		return "AcceptBid"
	case domain.OpStartTransit:
		return "StartTransit"
	case domain.OpMarkDelivered:
		return "MarkDelivered"
	case domain.OpCancel:
		return "Cancel"
	default:
		return string(op)
	}
}

var _ ports.Service = (*Service)(nil)
