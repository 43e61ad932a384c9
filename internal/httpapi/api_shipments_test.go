package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copallet/copallet-api/internal/domains/shipments/adapters/http/mapper"
	"github.com/copallet/copallet-api/internal/domains/shipments/adapters/memory"
	"github.com/copallet/copallet-api/internal/domains/shipments/application"
	"github.com/copallet/copallet-api/internal/domains/shipments/application/types"
	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
	apierrors "github.com/copallet/copallet-api/internal/shared/errors"
)

type actorHeaders struct {
	id   string
	role string
}

var (
	shipperHeaders  = actorHeaders{"shipper-1", "shipper"}
	carrierAHeaders = actorHeaders{"carrier-a", "carrier"}
	carrierBHeaders = actorHeaders{"carrier-b", "carrier"}
)

func newTestRouter(t *testing.T, service ports.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api := NewShipmentAPI(service)
	return NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{ShipmentAPI: api}, RouterOptions{RequestTimeout: 5 * time.Second})
}

func newMemoryService(notifier ports.Notifier) ports.Service {
	var seq atomic.Int64
	return application.NewService(memory.NewRepository(),
		application.WithNotifier(notifier),
		application.WithIDGenerator(func() string { return fmt.Sprintf("id-%d", seq.Add(1)) }),
	)
}

func do(t *testing.T, router http.Handler, method, path string, actor actorHeaders, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor.id != "" {
		req.Header.Set(HeaderActorID, actor.id)
	}
	if actor.role != "" {
		req.Header.Set(HeaderActorRole, actor.role)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createBody() map[string]any {
	start := time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)
	return map[string]any{
		"fromAddress":    "Hafenstrasse 1, Hamburg",
		"toAddress":      "Rue de Rivoli 10, Paris",
		"pickupWindow":   map[string]any{"start": start, "end": start.Add(4 * time.Hour)},
		"deliveryWindow": map[string]any{"start": start.Add(24 * time.Hour), "end": start.Add(28 * time.Hour)},
		"pallets":        6,
		"constraints":    []string{"tail-lift"},
		"priceGuidance":  "600",
	}
}

func subCentGuidanceBody() map[string]any {
	body := createBody()
	body["priceGuidance"] = "600.005"
	return body
}

func TestShipmentAPI_RoundTrip(t *testing.T) {
	notifier := memory.NewNotifier()
	router := newTestRouter(t, newMemoryService(notifier))

	rec := do(t, router, http.MethodPost, "/v1/shipments", shipperHeaders, createBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[mapper.Shipment](t, rec)
	assert.Equal(t, "draft", created.Status)
	assert.Equal(t, "600.00", created.PriceGuidance)
	base := "/v1/shipments/" + created.ID

	rec = do(t, router, http.MethodPost, base+"/publish", shipperHeaders, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "open", decode[mapper.Shipment](t, rec).Status)

	rec = do(t, router, http.MethodPost, base+"/bids", carrierAHeaders, map[string]any{"price": "0.004"})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, apierrors.TypeValidation, decode[apierrors.ProblemDetail](t, rec).Type)

	rec = do(t, router, http.MethodPost, base+"/bids", carrierAHeaders, map[string]any{"price": "500"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bidA := decode[mapper.Bid](t, rec)
	assert.Equal(t, "500.00", bidA.Price)
	assert.Equal(t, "pending", bidA.Status)

	rec = do(t, router, http.MethodPost, base+"/bids", carrierBHeaders, map[string]any{"price": 480.5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, base+"/bids/"+bidA.ID+"/accept", shipperHeaders, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	acceptance := decode[mapper.Acceptance](t, rec)
	assert.Equal(t, "assigned", acceptance.Shipment.Status)
	assert.Equal(t, "carrier-a", acceptance.Shipment.AssignedCarrierID)
	assert.Equal(t, bidA.ID, acceptance.Bid.ID)
	assert.Equal(t, "accepted", acceptance.Bid.Status)
	assert.Equal(t, "carrier-a", acceptance.Bid.CarrierID)

	rec = do(t, router, http.MethodGet, base+"/bids", carrierAHeaders, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	statuses := map[string]string{}
	for _, b := range decode[[]mapper.Bid](t, rec) {
		statuses[b.CarrierID] = b.Status
	}
	assert.Equal(t, map[string]string{"carrier-a": "accepted", "carrier-b": "declined"}, statuses)

	rec = do(t, router, http.MethodPost, base+"/start-transit", carrierAHeaders, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, router, http.MethodPost, base+"/deliver", carrierAHeaders, map[string]any{"podReference": "pod-77"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	delivered := decode[mapper.Shipment](t, rec)
	assert.Equal(t, "delivered", delivered.Status)
	assert.Equal(t, "pod-77", delivered.PODReference)

	rec = do(t, router, http.MethodGet, base+"/history", shipperHeaders, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]mapper.Transition](t, rec)
	require.Len(t, history, 4)
	assert.Equal(t, "delivered", history[3].To)

	assert.Len(t, notifier.Sent(), 3)
}

func TestShipmentAPI_ErrorMapping(t *testing.T) {
	router := newTestRouter(t, newMemoryService(nil))

	rec := do(t, router, http.MethodPost, "/v1/shipments", shipperHeaders, createBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/v1/shipments/" + decode[mapper.Shipment](t, rec).ID

	cases := []struct {
		name       string
		method     string
		path       string
		actor      actorHeaders
		body       any
		wantStatus int
		wantType   string
	}{
		{"missing actor", http.MethodGet, base, actorHeaders{}, nil, http.StatusUnauthorized, apierrors.TypeUnauthorized},
		{"unknown role", http.MethodGet, base, actorHeaders{"x", "broker"}, nil, http.StatusUnauthorized, apierrors.TypeUnauthorized},
		{"bid on draft", http.MethodPost, base + "/bids", carrierAHeaders, map[string]any{"price": "500"}, http.StatusConflict, apierrors.TypeTransition},
		{"carrier publishes", http.MethodPost, base + "/publish", carrierAHeaders, nil, http.StatusForbidden, apierrors.TypeForbidden},
		{"unknown shipment", http.MethodGet, "/v1/shipments/missing", shipperHeaders, nil, http.StatusNotFound, apierrors.TypeNotFound},
		{"carrier creates", http.MethodPost, "/v1/shipments", carrierAHeaders, createBody(), http.StatusForbidden, apierrors.TypeForbidden},
		{"zero pallets", http.MethodPost, "/v1/shipments", shipperHeaders, map[string]any{"fromAddress": "a", "toAddress": "b"}, http.StatusBadRequest, apierrors.TypeValidation},
		{"malformed price", http.MethodPost, base + "/bids", carrierAHeaders, map[string]any{"price": "cheap"}, http.StatusBadRequest, apierrors.TypeBadRequest},
		{"sub-cent price guidance", http.MethodPost, "/v1/shipments", shipperHeaders, subCentGuidanceBody(), http.StatusBadRequest, apierrors.TypeValidation},
		{"bad status filter", http.MethodGet, "/v1/shipments?status=lost", shipperHeaders, nil, http.StatusBadRequest, apierrors.TypeValidation},
		{"bad limit", http.MethodGet, "/v1/shipments?limit=-1", shipperHeaders, nil, http.StatusBadRequest, apierrors.TypeBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, tc.method, tc.path, tc.actor, tc.body)
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
			problem := decode[apierrors.ProblemDetail](t, rec)
			assert.Equal(t, tc.wantType, problem.Type)
		})
	}
}

func TestShipmentAPI_ListShipmentsFilters(t *testing.T) {
	router := newTestRouter(t, newMemoryService(nil))

	for i := 0; i < 3; i++ {
		rec := do(t, router, http.MethodPost, "/v1/shipments", shipperHeaders, createBody())
		require.Equal(t, http.StatusCreated, rec.Code)
		if i == 0 {
			id := decode[mapper.Shipment](t, rec).ID
			require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/v1/shipments/"+id+"/publish", shipperHeaders, nil).Code)
		}
	}

	rec := do(t, router, http.MethodGet, "/v1/shipments?status=open", carrierAHeaders, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]mapper.Shipment](t, rec), 1)

	rec = do(t, router, http.MethodGet, "/v1/shipments?shipperId=shipper-1&limit=2", shipperHeaders, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]mapper.Shipment](t, rec), 2)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, newMemoryService(nil))
	rec := do(t, router, http.MethodGet, "/healthz", actorHeaders{}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// conflictingService fails AcceptBid with a storage conflict a fixed number of times.
type conflictingService struct {
	ports.Service
	failures int32
	calls    atomic.Int32
}

func (s *conflictingService) AcceptBid(_ context.Context, input types.AcceptBidInput) (*domain.Shipment, *domain.Bid, error) {
	if s.calls.Add(1) <= s.failures {
		return nil, nil, fmt.Errorf("%w: %w", application.ErrConflict, ports.ErrConflict)
	}
	shipment := &domain.Shipment{ID: input.ShipmentID, Status: domain.StatusAssigned, ShipperID: input.Actor.ID, AssignedCarrierID: "carrier-a"}
	bid := &domain.Bid{ID: input.BidID, ShipmentID: input.ShipmentID, CarrierID: "carrier-a", Status: domain.BidAccepted}
	return shipment, bid, nil
}

func TestShipmentAPI_RetriesConflicts(t *testing.T) {
	t.Run("recovers within the retry budget", func(t *testing.T) {
		svc := &conflictingService{failures: 2}
		router := newTestRouter(t, svc)

		rec := do(t, router, http.MethodPost, "/v1/shipments/shp-1/bids/bid-1/accept", shipperHeaders, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, int32(3), svc.calls.Load())
	})

	t.Run("surfaces 503 once retries are spent", func(t *testing.T) {
		svc := &conflictingService{failures: 100}
		router := newTestRouter(t, svc)

		rec := do(t, router, http.MethodPost, "/v1/shipments/shp-1/bids/bid-1/accept", shipperHeaders, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
		assert.Equal(t, int32(DefaultConflictRetries+1), svc.calls.Load())
		assert.Equal(t, apierrors.TypeUnavailable, decode[apierrors.ProblemDetail](t, rec).Type)
	})
}

func TestWithConflictRetry_DoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	_, err := withConflictRetry(context.Background(), 3, func(context.Context) (int, error) {
		calls++
		return 0, application.ErrInvalidTransition
	})
	require.ErrorIs(t, err, application.ErrInvalidTransition)
	assert.Equal(t, 1, calls)
}
