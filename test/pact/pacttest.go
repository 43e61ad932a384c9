//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

const (
	ProviderName = "copallet-api"
	ConsumerName = "carrier-portal"

	StateOpenShipment  = "shipment shp-pact-open is open for bidding"
	StateDraftShipment = "shipment shp-pact-draft is still a draft"
	StateNoShipment    = "no shipment with id shp-pact-missing"
)

const (
	OpenShipmentID    = "shp-pact-open"
	DraftShipmentID   = "shp-pact-draft"
	MissingShipmentID = "shp-pact-missing"

	ShipperID = "shipper-pact"
	CarrierID = "carrier-pact"

	BidPrice = "500.00"
)

// PickupStart anchors the example shipment windows.
var PickupStart = time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the carrier portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
