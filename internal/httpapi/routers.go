// Package httpapi exposes the shipment lifecycle over HTTP using gin.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers mounted by the router.
type ApiHandleFunctions struct {
	ShipmentAPI ShipmentAPI
}

// RouterOptions configures the middleware stack placed in front of the /v1 routes.
type RouterOptions struct {
	// RequestTimeout bounds each /v1 request. Zero disables the deadline.
	RequestTimeout time.Duration
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, opts)
}

// NewRouterWithGinEngine adds the shipment routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1", RequestTimeout(opts.RequestTimeout), RequireActor())
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			v1.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			v1.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			v1.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			v1.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			v1.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes whose handler has not been wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	api := &handleFunctions.ShipmentAPI
	return []Route{
		{"CreateShipment", http.MethodPost, "/shipments", api.CreateShipment},
		{"ListShipments", http.MethodGet, "/shipments", api.ListShipments},
		{"GetShipment", http.MethodGet, "/shipments/:shipmentId", api.GetShipment},
		{"History", http.MethodGet, "/shipments/:shipmentId/history", api.History},
		{"Publish", http.MethodPost, "/shipments/:shipmentId/publish", api.Publish},
		{"PlaceBid", http.MethodPost, "/shipments/:shipmentId/bids", api.PlaceBid},
		{"ListBids", http.MethodGet, "/shipments/:shipmentId/bids", api.ListBids},
		{"AcceptBid", http.MethodPost, "/shipments/:shipmentId/bids/:bidId/accept", api.AcceptBid},
		{"StartTransit", http.MethodPost, "/shipments/:shipmentId/start-transit", api.StartTransit},
		{"MarkDelivered", http.MethodPost, "/shipments/:shipmentId/deliver", api.MarkDelivered},
		{"Cancel", http.MethodPost, "/shipments/:shipmentId/cancel", api.Cancel},
	}
}
