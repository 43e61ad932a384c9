package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/copallet/copallet-api/internal/domains/shipments/adapters/http/mapper"
	"github.com/copallet/copallet-api/internal/domains/shipments/application/types"
	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
	apierrors "github.com/copallet/copallet-api/internal/shared/errors"
)

// ShipmentAPI wires HTTP transport with the shipments bounded context service.
type ShipmentAPI struct {
	service ports.Service
	retries int
	logger  *slog.Logger
}

// ShipmentAPIOption customizes the handler set.
type ShipmentAPIOption func(*ShipmentAPI)

// WithConflictRetries sets how many times a command is retried after a storage conflict.
func WithConflictRetries(n int) ShipmentAPIOption {
	return func(api *ShipmentAPI) { api.retries = n }
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) ShipmentAPIOption {
	return func(api *ShipmentAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// NewShipmentAPI creates a ShipmentAPI backed by the provided service.
func NewShipmentAPI(service ports.Service, opts ...ShipmentAPIOption) ShipmentAPI {
	api := ShipmentAPI{service: service, retries: DefaultConflictRetries, logger: slog.Default()}
	for _, opt := range opts {
		opt(&api)
	}
	return api
}

// Post /v1/shipments
// Create a draft shipment
func (api *ShipmentAPI) CreateShipment(c *gin.Context) {
	var payload mapper.CreateShipment
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	created, err := api.service.CreateShipment(c.Request.Context(), types.CreateShipmentInput{
		Actor:   actorFrom(c),
		Payload: mapper.ToPayload(payload),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromShipment(created))
}

// Get /v1/shipments
// List shipments, by default the whole marketplace
func (api *ShipmentAPI) ListShipments(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit")
	if !ok {
		return
	}
	offset, ok := parseIntQuery(c, "offset")
	if !ok {
		return
	}
	filter := types.ShipmentFilter{
		Status:    domain.Status(strings.TrimSpace(c.Query("status"))),
		ShipperID: strings.TrimSpace(c.Query("shipperId")),
		CarrierID: strings.TrimSpace(c.Query("carrierId")),
		Limit:     limit,
		Offset:    offset,
	}
	result, err := api.service.ListShipments(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromShipmentList(result))
}

// Get /v1/shipments/:shipmentId
func (api *ShipmentAPI) GetShipment(c *gin.Context) {
	shipment, err := api.service.GetShipment(c.Request.Context(), c.Param("shipmentId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromShipment(shipment))
}

// Get /v1/shipments/:shipmentId/history
func (api *ShipmentAPI) History(c *gin.Context) {
	history, err := api.service.History(c.Request.Context(), c.Param("shipmentId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromHistory(history))
}

// Post /v1/shipments/:shipmentId/publish
// Open a draft shipment for bidding
func (api *ShipmentAPI) Publish(c *gin.Context) {
	api.runShipmentCommand(c, api.service.Publish)
}

// Post /v1/shipments/:shipmentId/bids
// Place a carrier bid on an open shipment
func (api *ShipmentAPI) PlaceBid(c *gin.Context) {
	var payload mapper.PlaceBid
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := types.PlaceBidInput{ShipmentID: c.Param("shipmentId"), Actor: actorFrom(c), Price: payload.Price}
	bid, err := withConflictRetry(c.Request.Context(), api.retries, func(ctx context.Context) (*domain.Bid, error) {
		return api.service.PlaceBid(ctx, input)
	})
	if err != nil {
		api.respondCommandError(c, "PlaceBid", err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromBid(bid))
}

// Get /v1/shipments/:shipmentId/bids
func (api *ShipmentAPI) ListBids(c *gin.Context) {
	bids, err := api.service.ListBids(c.Request.Context(), c.Param("shipmentId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromBidList(bids))
}

// Post /v1/shipments/:shipmentId/bids/:bidId/accept
// Accept one pending bid and assign its carrier
func (api *ShipmentAPI) AcceptBid(c *gin.Context) {
	input := types.AcceptBidInput{ShipmentID: c.Param("shipmentId"), BidID: c.Param("bidId"), Actor: actorFrom(c)}
	result, err := withConflictRetry(c.Request.Context(), api.retries, func(ctx context.Context) (mapper.Acceptance, error) {
		shipment, bid, err := api.service.AcceptBid(ctx, input)
		if err != nil {
			return mapper.Acceptance{}, err
		}
		return mapper.FromAcceptance(shipment, bid), nil
	})
	if err != nil {
		api.respondCommandError(c, "AcceptBid", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Post /v1/shipments/:shipmentId/start-transit
func (api *ShipmentAPI) StartTransit(c *gin.Context) {
	api.runShipmentCommand(c, api.service.StartTransit)
}

// Post /v1/shipments/:shipmentId/deliver
// Record delivery with a proof-of-delivery reference
func (api *ShipmentAPI) MarkDelivered(c *gin.Context) {
	var payload mapper.Deliver
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := types.MarkDeliveredInput{ShipmentID: c.Param("shipmentId"), Actor: actorFrom(c), PODReference: payload.PODReference}
	shipment, err := withConflictRetry(c.Request.Context(), api.retries, func(ctx context.Context) (*domain.Shipment, error) {
		return api.service.MarkDelivered(ctx, input)
	})
	if err != nil {
		api.respondCommandError(c, "MarkDelivered", err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromShipment(shipment))
}

// Post /v1/shipments/:shipmentId/cancel
func (api *ShipmentAPI) Cancel(c *gin.Context) {
	api.runShipmentCommand(c, api.service.Cancel)
}

type shipmentCommand func(context.Context, types.ShipmentCommand) (*domain.Shipment, error)

func (api *ShipmentAPI) runShipmentCommand(c *gin.Context, command shipmentCommand) {
	input := types.ShipmentCommand{ShipmentID: c.Param("shipmentId"), Actor: actorFrom(c)}
	shipment, err := withConflictRetry(c.Request.Context(), api.retries, func(ctx context.Context) (*domain.Shipment, error) {
		return command(ctx, input)
	})
	if err != nil {
		api.respondCommandError(c, c.FullPath(), err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromShipment(shipment))
}

func (api *ShipmentAPI) respondCommandError(c *gin.Context, operation string, err error) {
	if problem, ok := shipmentErrorMapper(err); ok && problem.Status == http.StatusServiceUnavailable {
		api.logger.Warn("shipment command gave up after conflicts",
			slog.String("operation", operation),
			slog.String("shipment_id", c.Param("shipmentId")),
			slog.Int("retries", api.retries),
			slog.String("error", err.Error()),
		)
	}
	respondServiceError(c, err)
}

func parseIntQuery(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(name+" must be a non-negative integer"))
		return 0, false
	}
	return value, true
}
