package service

import (
	"context"
	"testing"
	"time"

	"parkbay/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Walks a booking through its whole life against one shared store: book,
// fail an overlapping book, cancel well ahead of the start time, then see
// the refund auto-approve off the cancellation timestamp the cancel wrote.
func TestBookingLifecycleThroughAutoRefund(t *testing.T) {
	store, d := newMemStore()
	gw := newFakeGateway()
	clock := bookingBase

	booking := NewBookingService(store, gw, testBookingConfig(), testLogger(), nil)
	booking.now = func() time.Time { return clock }
	refunds := NewRefundService(store, gw, testBookingConfig(), testLogger())
	refunds.now = func() time.Time { return clock }

	renterID, bayID := seedMarketplace(d)
	ctx := context.Background()

	start := bookingBase.Add(48 * time.Hour)
	end := start.Add(2 * time.Hour)
	res, pay, err := booking.BookBay(ctx, renterID, bayID, start, end, 1000, "tok_visa")
	require.NoError(t, err)
	require.Len(t, gw.captures, 1)

	// an overlapping attempt is rejected and charges nothing
	_, _, err = booking.BookBay(ctx, renterID, bayID, start.Add(time.Hour), end.Add(time.Hour), 1000, "tok_visa")
	assert.ErrorIs(t, err, domain.ErrBookingConflict)
	assert.Len(t, gw.captures, 1)

	cancelled, err := booking.Cancel(ctx, renterID, domain.RoleUser, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.True(t, cancelled.CancelledAt.Equal(clock))

	free, err := booking.IsBayAvailable(bayID, start, end)
	require.NoError(t, err)
	assert.True(t, free)

	// 48h of lead clears the 24h auto-approval window
	rf, err := refunds.Request(ctx, renterID, pay.ID, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundApproved, rf.Status)
	assert.Equal(t, domain.DecisionAutomatic, rf.Decision)
	require.NotNil(t, rf.ProcessedAt)

	require.Len(t, gw.refunded, 1)
	assert.Equal(t, pay.StripeChargeID, gw.refunded[0].ChargeID)
	assert.Equal(t, pay.AmountPence, gw.refunded[0].AmountPence)

	assert.Equal(t, domain.PaymentRefunded, d.payments[pay.ID].Status)
	assert.Equal(t, domain.ReservationRefunded, d.reservations[res.ID].Status)
}
