//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/copallet/copallet-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type shipmentPayload struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	ShipperID string `json:"shipperId"`
	Pallets   int32  `json:"pallets"`
}

type bidPayload struct {
	ID         string `json:"id"`
	ShipmentID string `json:"shipmentId"`
	CarrierID  string `json:"carrierId"`
	Price      string `json:"price"`
	Status     string `json:"status"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status      int
	problemType string
	detail      string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.problemType, e.detail, e.status)
}

func TestCarrierPortalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemContentType := matchers.S("application/problem+json")
	shipmentMatcher := matchers.Map{
		"id":        matchers.S(pacttest.OpenShipmentID),
		"status":    matchers.Term("open", "draft|open|assigned|in-transit|delivered|cancelled"),
		"shipperId": matchers.Like(pacttest.ShipperID),
		"pallets":   matchers.Like(6),
	}
	bidMatcher := matchers.Map{
		"id":         matchers.Like("bid-0001"),
		"shipmentId": matchers.S(pacttest.OpenShipmentID),
		"carrierId":  matchers.S(pacttest.CarrierID),
		"price":      matchers.Term(pacttest.BidPrice, `^\d+\.\d{2}$`),
		"status":     matchers.S("pending"),
	}
	carrierHeaders := func(b *pactconsumer.V2RequestBuilder) {
		b.Header("X-Actor-Id", matchers.S(pacttest.CarrierID))
		b.Header("X-Actor-Role", matchers.S("carrier"))
	}

	pact.AddInteraction().
		Given(pacttest.StateOpenShipment).
		UponReceiving("a request to view an open shipment").
		WithRequest("GET", "/v1/shipments/"+pacttest.OpenShipmentID, carrierHeaders).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(shipmentMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateOpenShipment).
		UponReceiving("a carrier bid on an open shipment").
		WithRequest("POST", "/v1/shipments/"+pacttest.OpenShipmentID+"/bids", func(b *pactconsumer.V2RequestBuilder) {
			carrierHeaders(b)
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{"price": matchers.S(pacttest.BidPrice)})
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(bidMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateDraftShipment).
		UponReceiving("a carrier bid on a draft shipment").
		WithRequest("POST", "/v1/shipments/"+pacttest.DraftShipmentID+"/bids", func(b *pactconsumer.V2RequestBuilder) {
			carrierHeaders(b)
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{"price": matchers.S(pacttest.BidPrice)})
		}).
		WillRespondWith(http.StatusConflict, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/invalid-transition"),
				"title":  matchers.S("Invalid State Transition"),
				"status": matchers.Like(http.StatusConflict),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateNoShipment).
		UponReceiving("a request for a missing shipment").
		WithRequest("GET", "/v1/shipments/"+pacttest.MissingShipmentID, carrierHeaders).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newCarrierClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var shipment shipmentPayload
		if err := client.do(ctx, http.MethodGet, "/v1/shipments/"+pacttest.OpenShipmentID, nil, &shipment); err != nil {
			return fmt.Errorf("get shipment: %w", err)
		}
		if shipment.Status != "open" {
			return fmt.Errorf("expected open shipment, got %+v", shipment)
		}

		var bid bidPayload
		if err := client.do(ctx, http.MethodPost, "/v1/shipments/"+pacttest.OpenShipmentID+"/bids", map[string]string{"price": pacttest.BidPrice}, &bid); err != nil {
			return fmt.Errorf("place bid: %w", err)
		}
		if bid.ID == "" || bid.Status != "pending" || bid.Price != pacttest.BidPrice {
			return fmt.Errorf("unexpected bid %+v", bid)
		}

		err := client.do(ctx, http.MethodPost, "/v1/shipments/"+pacttest.DraftShipmentID+"/bids", map[string]string{"price": pacttest.BidPrice}, nil)
		if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusConflict {
			return fmt.Errorf("expected 409 for draft shipment, got %v", err)
		}

		err = client.do(ctx, http.MethodGet, "/v1/shipments/"+pacttest.MissingShipmentID, nil, nil)
		if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404 for missing shipment, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type carrierClient struct {
	baseURL    string
	httpClient *http.Client
}

func newCarrierClient(config pactconsumer.MockServerConfig) *carrierClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &carrierClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *carrierClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Actor-Id", pacttest.CarrierID)
	req.Header.Set("X-Actor-Role", "carrier")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var problem problemDetail
		_ = json.NewDecoder(res.Body).Decode(&problem)
		return apiError{status: res.StatusCode, problemType: problem.Type, detail: problem.Detail}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
