package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	testNow  = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	shipper  = Actor{ID: "shipper-1", Role: RoleShipper}
	carrierA = Actor{ID: "carrier-a", Role: RoleCarrier}
	carrierB = Actor{ID: "carrier-b", Role: RoleCarrier}
	admin    = Actor{ID: "ops-1", Role: RoleAdmin}
)

func testPayload() Payload {
	return Payload{
		FromAddress:    "Hafenstrasse 1, Hamburg",
		ToAddress:      "Rue de Rivoli 10, Paris",
		PickupWindow:   TimeWindow{Start: testNow.Add(24 * time.Hour), End: testNow.Add(28 * time.Hour)},
		DeliveryWindow: TimeWindow{Start: testNow.Add(48 * time.Hour), End: testNow.Add(52 * time.Hour)},
		Pallets:        6,
		Constraints:    []string{"tail-lift"},
	}
}

func draftListing(t *testing.T) *Listing {
	t.Helper()
	s, err := NewShipment("shp-1", shipper, testPayload(), testNow)
	require.NoError(t, err)
	return NewListing(s, nil)
}

func openListing(t *testing.T) *Listing {
	t.Helper()
	l := draftListing(t)
	require.NoError(t, l.Publish(shipper, testNow))
	return l
}

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestNewShipment_Validation(t *testing.T) {
	cases := []struct {
		name    string
		actor   Actor
		mutate  func(*Payload)
		wantErr error
	}{
		{name: "carrier cannot create", actor: carrierA, wantErr: ErrNotShipper},
		{name: "missing actor", actor: Actor{Role: RoleShipper}, wantErr: ErrMissingActor},
		{name: "missing from address", actor: shipper, mutate: func(p *Payload) { p.FromAddress = " " }, wantErr: ErrMissingField},
		{name: "missing pickup window", actor: shipper, mutate: func(p *Payload) { p.PickupWindow = TimeWindow{} }, wantErr: ErrMissingField},
		{name: "inverted delivery window", actor: shipper, mutate: func(p *Payload) {
			p.DeliveryWindow = TimeWindow{Start: testNow.Add(2 * time.Hour), End: testNow}
		}, wantErr: ErrInvalidWindow},
		{name: "zero pallets", actor: shipper, mutate: func(p *Payload) { p.Pallets = 0 }, wantErr: ErrInvalidPallets},
		{name: "zero price guidance", actor: shipper, mutate: func(p *Payload) { g := decimal.Zero; p.PriceGuidance = &g }, wantErr: ErrNonPositivePrice},
		{name: "sub-cent price guidance", actor: shipper, mutate: func(p *Payload) { g := price("99.999"); p.PriceGuidance = &g }, wantErr: ErrPriceOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := testPayload()
			if tc.mutate != nil {
				tc.mutate(&payload)
			}
			_, err := NewShipment("shp-1", tc.actor, payload, testNow)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	s, err := NewShipment("shp-1", shipper, testPayload(), testNow)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, s.Status)
	require.Equal(t, shipper.ID, s.ShipperID)
	require.Empty(t, s.AssignedCarrierID)
}

func TestListing_HappyPath(t *testing.T) {
	l := openListing(t)

	bid, err := l.PlaceBid("bid-a", carrierA, price("500"), testNow)
	require.NoError(t, err)
	require.Equal(t, BidPending, bid.Status)

	accepted, err := l.AcceptBid("bid-a", shipper, testNow)
	require.NoError(t, err)
	require.Equal(t, BidAccepted, accepted.Status)
	require.Equal(t, StatusAssigned, l.Shipment.Status)
	require.Equal(t, carrierA.ID, l.Shipment.AssignedCarrierID)

	require.NoError(t, l.StartTransit(carrierA, testNow))
	require.NoError(t, l.MarkDelivered(carrierA, "pod-123", testNow))
	require.Equal(t, StatusDelivered, l.Shipment.Status)
	require.Equal(t, "pod-123", l.Shipment.PODReference)
	require.NoError(t, l.CheckInvariants())

	var walked []Status
	for _, tr := range l.Transitions() {
		walked = append(walked, tr.To)
	}
	require.Equal(t, []Status{StatusOpen, StatusAssigned, StatusInTransit, StatusDelivered}, walked)
}

func TestListing_PlaceBidOnDraftFails(t *testing.T) {
	l := draftListing(t)

	_, err := l.PlaceBid("bid-a", carrierA, price("500"), testNow)
	require.ErrorIs(t, err, ErrIllegalTransition)
	require.Empty(t, l.Bids)
}

func TestListing_PlaceBidChecks(t *testing.T) {
	cases := []struct {
		name    string
		actor   Actor
		price   decimal.Decimal
		wantErr error
	}{
		{name: "zero price", actor: carrierA, price: decimal.Zero, wantErr: ErrNonPositivePrice},
		{name: "negative price", actor: carrierA, price: price("-1"), wantErr: ErrNonPositivePrice},
		{name: "sub-cent price", actor: carrierA, price: price("0.004"), wantErr: ErrPriceOutOfRange},
		{name: "three decimal places", actor: carrierA, price: price("12.345"), wantErr: ErrPriceOutOfRange},
		{name: "above storage range", actor: carrierA, price: price("1000000000000"), wantErr: ErrPriceOutOfRange},
		{name: "shipper bids on own shipment", actor: Actor{ID: shipper.ID, Role: RoleCarrier}, price: price("10"), wantErr: ErrSelfBid},
		{name: "shipper role", actor: Actor{ID: "shipper-2", Role: RoleShipper}, price: price("10"), wantErr: ErrNotCarrier},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := openListing(t)
			_, err := l.PlaceBid("bid-x", tc.actor, tc.price, testNow)
			require.ErrorIs(t, err, tc.wantErr)
			require.Empty(t, l.Bids)
		})
	}
}

func TestListing_DuplicatePendingBid(t *testing.T) {
	l := openListing(t)
	_, err := l.PlaceBid("bid-1", carrierA, price("500"), testNow)
	require.NoError(t, err)

	_, err = l.PlaceBid("bid-2", carrierA, price("450"), testNow)
	require.ErrorIs(t, err, ErrDuplicateBid)
	require.Len(t, l.Bids, 1)
}

func TestListing_AcceptDeclinesCompetingBids(t *testing.T) {
	l := openListing(t)
	_, err := l.PlaceBid("bid-a", carrierA, price("500"), testNow)
	require.NoError(t, err)
	_, err = l.PlaceBid("bid-b", carrierB, price("480"), testNow)
	require.NoError(t, err)

	_, err = l.AcceptBid("bid-b", shipper, testNow)
	require.NoError(t, err)

	require.Equal(t, BidDeclined, l.FindBid("bid-a").Status)
	require.Equal(t, BidAccepted, l.FindBid("bid-b").Status)
	require.Equal(t, carrierB.ID, l.Shipment.AssignedCarrierID)

	kinds := map[NotificationKind]string{}
	for _, n := range l.Notifications() {
		kinds[n.Kind] = n.RecipientID
	}
	require.Equal(t, map[NotificationKind]string{
		NotifyBidDeclined:      carrierA.ID,
		NotifyBidAccepted:      carrierB.ID,
		NotifyShipmentAssigned: shipper.ID,
	}, kinds)

	_, err = l.AcceptBid("bid-a", shipper, testNow)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestListing_AcceptBidChecks(t *testing.T) {
	l := openListing(t)
	_, err := l.PlaceBid("bid-a", carrierA, price("500"), testNow)
	require.NoError(t, err)

	_, err = l.AcceptBid("bid-a", Actor{ID: "shipper-2", Role: RoleShipper}, testNow)
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = l.AcceptBid("bid-a", carrierA, testNow)
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = l.AcceptBid("missing", shipper, testNow)
	require.ErrorIs(t, err, ErrBidNotFound)

	require.Equal(t, StatusOpen, l.Shipment.Status)
	require.Equal(t, BidPending, l.FindBid("bid-a").Status)
	require.Empty(t, l.Notifications())
}

func TestListing_TransitAndDeliveryAuthorization(t *testing.T) {
	l := openListing(t)
	_, err := l.PlaceBid("bid-a", carrierA, price("500"), testNow)
	require.NoError(t, err)
	_, err = l.AcceptBid("bid-a", shipper, testNow)
	require.NoError(t, err)

	require.ErrorIs(t, l.StartTransit(carrierB, testNow), ErrNotAssignedCarrier)
	require.ErrorIs(t, l.StartTransit(shipper, testNow), ErrNotAssignedCarrier)
	require.ErrorIs(t, l.MarkDelivered(carrierA, "pod", testNow), ErrIllegalTransition)

	require.NoError(t, l.StartTransit(admin, testNow))
	require.ErrorIs(t, l.MarkDelivered(admin, "pod", testNow), ErrNotAssignedCarrier)
	require.ErrorIs(t, l.MarkDelivered(carrierA, "", testNow), ErrMissingPOD)
	require.Equal(t, StatusInTransit, l.Shipment.Status)
}

func TestListing_StartTransitBeforeAssignment(t *testing.T) {
	l := openListing(t)
	require.ErrorIs(t, l.StartTransit(carrierA, testNow), ErrIllegalTransition)
	require.ErrorIs(t, l.StartTransit(shipper, testNow), ErrNotAssignedCarrier)
	require.ErrorIs(t, l.MarkDelivered(shipper, "pod", testNow), ErrNotAssignedCarrier)
	require.Equal(t, StatusOpen, l.Shipment.Status)
}

func TestListing_Cancel(t *testing.T) {
	t.Run("assigned shipment declines accepted and pending bids", func(t *testing.T) {
		l := openListing(t)
		_, err := l.PlaceBid("bid-a", carrierA, price("500"), testNow)
		require.NoError(t, err)
		_, err = l.AcceptBid("bid-a", shipper, testNow)
		require.NoError(t, err)
		l.ClearEvents()

		require.NoError(t, l.Cancel(admin, testNow))
		require.Equal(t, StatusCancelled, l.Shipment.Status)
		require.Empty(t, l.Shipment.AssignedCarrierID)
		require.Equal(t, BidDeclined, l.FindBid("bid-a").Status)
		require.Len(t, l.Notifications(), 1)
		require.Equal(t, NotifyBidDeclined, l.Notifications()[0].Kind)
		require.NoError(t, l.CheckInvariants())
	})

	t.Run("non-owner shipper", func(t *testing.T) {
		l := openListing(t)
		require.ErrorIs(t, l.Cancel(Actor{ID: "shipper-2", Role: RoleShipper}, testNow), ErrNotOwner)
	})

	t.Run("delivered is terminal", func(t *testing.T) {
		l := openListing(t)
		_, err := l.PlaceBid("bid-a", carrierA, price("500"), testNow)
		require.NoError(t, err)
		_, err = l.AcceptBid("bid-a", shipper, testNow)
		require.NoError(t, err)
		require.NoError(t, l.StartTransit(carrierA, testNow))
		require.NoError(t, l.MarkDelivered(carrierA, "pod", testNow))

		require.ErrorIs(t, l.Cancel(shipper, testNow), ErrIllegalTransition)
		require.Equal(t, StatusDelivered, l.Shipment.Status)
	})
}

func TestNext_Table(t *testing.T) {
	to, err := Next(OpPublish, StatusDraft)
	require.NoError(t, err)
	require.Equal(t, StatusOpen, to)

	_, err = Next(OpPublish, StatusOpen)
	require.ErrorIs(t, err, ErrIllegalTransition)

	require.True(t, CanTransition(StatusAssigned, StatusCancelled))
	require.False(t, CanTransition(StatusInTransit, StatusCancelled))
	require.False(t, CanTransition(StatusDelivered, StatusOpen))
}
