package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"parkbay/internal/domain"
	"parkbay/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newBookingService(t *testing.T) (*BookingService, *memData, *fakeGateway) {
	t.Helper()
	store, d := newMemStore()
	gw := newFakeGateway()
	svc := NewBookingService(store, gw, testBookingConfig(), testLogger(), nil)
	svc.now = func() time.Time { return bookingBase }
	return svc, d, gw
}

func TestBookBay(t *testing.T) {
	svc, d, gw := newBookingService(t)
	renterID, bayID := seedMarketplace(d)

	start := bookingBase
	end := start.Add(2 * time.Hour)
	res, pay, err := svc.BookBay(context.Background(), renterID, bayID, start, end, 1000, "tok_visa")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotNil(t, pay)

	assert.Equal(t, domain.ReservationReserved, res.Status)
	assert.Equal(t, int64(1000), res.CostPence)
	require.NotNil(t, res.PaymentID)
	assert.Equal(t, pay.ID, *res.PaymentID)

	// 1.5% of 1000 + 20p fixed = 35p processing; 10% = 100p platform
	assert.Equal(t, int64(35), pay.ProcessingFeePence)
	assert.Equal(t, int64(100), pay.PlatformFeePence)
	assert.Equal(t, int64(1035), pay.AmountPence)
	assert.Equal(t, domain.PaymentCompleted, pay.Status)
	require.NotNil(t, pay.PaidAt)

	require.Len(t, gw.captures, 1)
	assert.Equal(t, int64(1035), gw.captures[0].AmountPence)
	assert.Equal(t, int64(135), gw.captures[0].ApplicationFeePence)
	assert.Equal(t, "acct_owner", gw.captures[0].DestinationAccount)

	// the window covers now, so the cached flag flips
	assert.False(t, d.bays[bayID].IsAvailable)
}

func TestBookBayFutureWindowKeepsBayFree(t *testing.T) {
	svc, d, _ := newBookingService(t)
	renterID, bayID := seedMarketplace(d)

	start := bookingBase.Add(48 * time.Hour)
	_, _, err := svc.BookBay(context.Background(), renterID, bayID, start, start.Add(time.Hour), 1000, "tok")
	require.NoError(t, err)

	// the flag reflects occupancy right now, not future bookings
	assert.True(t, d.bays[bayID].IsAvailable)
}

func TestBookBayValidation(t *testing.T) {
	svc, d, _ := newBookingService(t)
	renterID, bayID := seedMarketplace(d)
	start := bookingBase.Add(time.Hour)
	end := start.Add(time.Hour)

	_, _, err := svc.BookBay(context.Background(), renterID, bayID, start, end, 0, "tok")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = svc.BookBay(context.Background(), renterID, bayID, start, end, 1000, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = svc.BookBay(context.Background(), renterID, bayID, end, start, 1000, "tok")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = svc.BookBay(context.Background(), renterID, bayID, start, start, 1000, "tok")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookBayConflict(t *testing.T) {
	svc, d, gw := newBookingService(t)
	renterID, bayID := seedMarketplace(d)
	start := bookingBase.Add(24 * time.Hour)
	end := start.Add(3 * time.Hour)

	_, _, err := svc.BookBay(context.Background(), renterID, bayID, start, end, 1000, "tok")
	require.NoError(t, err)

	// overlapping by one hour at the tail
	_, _, err = svc.BookBay(context.Background(), renterID, bayID, start.Add(2*time.Hour), end.Add(2*time.Hour), 1000, "tok")
	assert.ErrorIs(t, err, domain.ErrBookingConflict)
	assert.Len(t, gw.captures, 1, "conflicting booking must not be charged")

	// back to back is fine: intervals are half-open
	_, _, err = svc.BookBay(context.Background(), renterID, bayID, end, end.Add(time.Hour), 1000, "tok")
	require.NoError(t, err)
	assert.Len(t, gw.captures, 2)
}

func TestBookBayDeclineLeavesNothingBehind(t *testing.T) {
	svc, d, gw := newBookingService(t)
	renterID, bayID := seedMarketplace(d)
	gw.captureErr = payment.ErrDeclined

	start := bookingBase.Add(time.Hour)
	_, _, err := svc.BookBay(context.Background(), renterID, bayID, start, start.Add(time.Hour), 1000, "tok")
	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)

	assert.Empty(t, d.payments)
	assert.Empty(t, d.reservations)
	assert.True(t, d.bays[bayID].IsAvailable)

	// the slot is still free for the next caller
	gw.captureErr = nil
	_, _, err = svc.BookBay(context.Background(), renterID, bayID, start, start.Add(time.Hour), 1000, "tok")
	require.NoError(t, err)
}

func TestBookBayOwnerNotOnboarded(t *testing.T) {
	t.Run("no payout account", func(t *testing.T) {
		svc, d, gw := newBookingService(t)
		renterID, bayID := seedMarketplace(d)
		bay := d.bays[bayID]
		owner := d.users[d.carparks[bay.CarParkID].UserID]
		owner.StripeAccountID = nil

		start := bookingBase.Add(time.Hour)
		_, _, err := svc.BookBay(context.Background(), renterID, bayID, start, start.Add(time.Hour), 1000, "tok")
		assert.ErrorIs(t, err, domain.ErrPayeeNotOnboarded)
		assert.Empty(t, gw.captures)
	})

	t.Run("charges disabled", func(t *testing.T) {
		svc, d, gw := newBookingService(t)
		renterID, bayID := seedMarketplace(d)
		gw.acct.ChargesEnabled = false

		start := bookingBase.Add(time.Hour)
		_, _, err := svc.BookBay(context.Background(), renterID, bayID, start, start.Add(time.Hour), 1000, "tok")
		assert.ErrorIs(t, err, domain.ErrPayeeNotOnboarded)
		assert.Empty(t, gw.captures)
	})
}

func TestBookBayPersistenceFailureAfterCapture(t *testing.T) {
	svc, d, gw := newBookingService(t)
	renterID, bayID := seedMarketplace(d)
	d.reservationCreateErr = errors.New("connection lost")

	start := bookingBase.Add(time.Hour)
	_, _, err := svc.BookBay(context.Background(), renterID, bayID, start, start.Add(time.Hour), 1000, "tok")
	assert.ErrorIs(t, err, domain.ErrReconciliationRequired)
	require.Len(t, gw.captures, 1)
	assert.Contains(t, err.Error(), "ch_test_1", "error must carry the charge id for reconciliation")
}

func TestCancel(t *testing.T) {
	svc, d, _ := newBookingService(t)
	renterID, bayID := seedMarketplace(d)
	start := bookingBase
	res, _, err := svc.BookBay(context.Background(), renterID, bayID, start, start.Add(time.Hour), 1000, "tok")
	require.NoError(t, err)
	assert.False(t, d.bays[bayID].IsAvailable)

	out, err := svc.Cancel(context.Background(), renterID, domain.RoleUser, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, out.Status)
	require.NotNil(t, out.CancelledAt)
	assert.Equal(t, bookingBase, *out.CancelledAt)
	assert.True(t, d.bays[bayID].IsAvailable, "cancelling the only reservation frees the bay")

	// cancelling twice is rejected and the original timestamp survives
	_, err = svc.Cancel(context.Background(), renterID, domain.RoleUser, res.ID)
	assert.ErrorIs(t, err, domain.ErrReservationState)
	assert.Equal(t, bookingBase, *d.reservations[res.ID].CancelledAt)
}

func TestCancelForbiddenForStrangers(t *testing.T) {
	svc, d, _ := newBookingService(t)
	renterID, bayID := seedMarketplace(d)
	start := bookingBase.Add(time.Hour)
	res, _, err := svc.BookBay(context.Background(), renterID, bayID, start, start.Add(time.Hour), 1000, "tok")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), renterID+100, domain.RoleUser, res.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// admins may cancel on behalf of anyone
	_, err = svc.Cancel(context.Background(), renterID+100, domain.RoleAdmin, res.ID)
	require.NoError(t, err)
}

func TestIsBayAvailable(t *testing.T) {
	svc, d, _ := newBookingService(t)
	renterID, bayID := seedMarketplace(d)
	start := bookingBase.Add(24 * time.Hour)
	end := start.Add(2 * time.Hour)
	_, _, err := svc.BookBay(context.Background(), renterID, bayID, start, end, 1000, "tok")
	require.NoError(t, err)

	free, err := svc.IsBayAvailable(bayID, start.Add(time.Hour), end.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, free)

	free, err = svc.IsBayAvailable(bayID, end, end.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, free)

	_, err = svc.IsBayAvailable(bayID, end, start)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
