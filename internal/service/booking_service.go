package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"parkbay/config"
	"parkbay/internal/domain"
	"parkbay/internal/models"
	"parkbay/internal/repository"
	"parkbay/internal/ws"
	"parkbay/pkg/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookingService owns the booking lifecycle: the availability check, the
// charge, and the reservation write all happen in one database transaction so
// a failure at any step leaves nothing behind.
type BookingService struct {
	store   *repository.Store
	gateway payment.Gateway
	cfg     *config.BookingConfig
	log     *zap.Logger
	hub     *ws.Hub
	now     func() time.Time
}

func NewBookingService(store *repository.Store, gateway payment.Gateway, cfg *config.BookingConfig, log *zap.Logger, hub *ws.Hub) *BookingService {
	return &BookingService{
		store:   store,
		gateway: gateway,
		cfg:     cfg,
		log:     log,
		hub:     hub,
		now:     time.Now,
	}
}

// Fees returns the processing fee added on top of the bay cost and the
// platform fee withheld from the owner's payout.
func (s *BookingService) Fees(costPence int64) (processing, platform int64) {
	processing = int64(math.Round(float64(costPence)*s.cfg.ProcessingFeePercent/100)) + s.cfg.ProcessingFeePence
	platform = int64(math.Round(float64(costPence) * s.cfg.PlatformFeePercent / 100))
	return processing, platform
}

// IsBayAvailable is the read-only availability probe. Booking itself re-runs
// the check inside its transaction; this result is advisory only.
func (s *BookingService) IsBayAvailable(bayID uint, start, end time.Time) (bool, error) {
	if !start.Before(end) {
		return false, fmt.Errorf("%w: start time must be before end time", domain.ErrValidation)
	}
	n, err := s.store.Reservations.CountOverlapping(bayID, start, end)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// BookBay books a bay for [start, end) and captures the payment, atomically.
func (s *BookingService) BookBay(ctx context.Context, userID, bayID uint, start, end time.Time, costPence int64, paymentToken string) (*models.Reservation, *models.Payment, error) {
	if costPence <= 0 {
		return nil, nil, fmt.Errorf("%w: cost must be positive", domain.ErrValidation)
	}
	if paymentToken == "" {
		return nil, nil, fmt.Errorf("%w: payment token is required", domain.ErrValidation)
	}
	if !start.Before(end) {
		return nil, nil, fmt.Errorf("%w: start time must be before end time", domain.ErrValidation)
	}

	var (
		res          *models.Reservation
		pay          *models.Payment
		chargeID     string
		totalPence   int64
		carparkID    uint
		bayAvailable bool
	)
	err := s.store.Transaction(func(tx *repository.Store) error {
		// Re-check under row locks; two concurrent bookings on the same bay
		// serialize here instead of both passing a stale read.
		overlap, err := tx.Reservations.CountOverlappingForUpdate(bayID, start, end)
		if err != nil {
			return err
		}
		if overlap > 0 {
			return domain.ErrBookingConflict
		}

		bay, err := tx.Bays.GetByID(bayID)
		if err != nil {
			return notFound(err, "bay")
		}
		cp, err := tx.CarParks.GetByID(bay.CarParkID)
		if err != nil {
			return notFound(err, "car park")
		}
		owner, err := tx.Users.GetByID(cp.UserID)
		if err != nil {
			return notFound(err, "car park owner")
		}
		if !owner.HasPayoutAccount() {
			return domain.ErrPayeeNotOnboarded
		}
		acct, err := s.gateway.AccountStatus(ctx, *owner.StripeAccountID)
		if err != nil {
			if errors.Is(err, payment.ErrInvalidAccount) {
				return domain.ErrPayeeNotOnboarded
			}
			return err
		}
		if !acct.ChargesEnabled {
			return domain.ErrPayeeNotOnboarded
		}

		processing, platform := s.Fees(costPence)
		totalPence = costPence + processing
		charge, err := s.gateway.Capture(ctx, payment.ChargeRequest{
			AmountPence:        totalPence,
			Currency:           "gbp",
			SourceToken:        paymentToken,
			DestinationAccount: *owner.StripeAccountID,
			// the platform keeps its cut plus the processing fee
			ApplicationFeePence: platform + processing,
			Description:         fmt.Sprintf("Bay %d at %s, %s", bay.BayNumber, cp.AddressLine1, cp.Postcode),
			IdempotencyKey:      uuid.NewString(),
		})
		if err != nil {
			if errors.Is(err, payment.ErrDeclined) {
				return fmt.Errorf("%w: %v", domain.ErrPaymentDeclined, err)
			}
			return err
		}
		if !charge.Paid {
			return fmt.Errorf("%w: charge %s reported unpaid", domain.ErrPaymentDeclined, charge.ID)
		}
		// Money has moved. Any failure past this point is a reconciliation case,
		// not a quiet rollback.
		chargeID = charge.ID

		now := s.now()
		pay = &models.Payment{
			UserID:             userID,
			AmountPence:        totalPence,
			ProcessingFeePence: processing,
			PlatformFeePence:   platform,
			Currency:           "GBP",
			StripeChargeID:     charge.ID,
			ReceiptURL:         charge.ReceiptURL,
			Status:             domain.PaymentCompleted,
			PaidAt:             &now,
		}
		if err := tx.Payments.Create(pay); err != nil {
			return err
		}
		res = &models.Reservation{
			BayID:     bayID,
			CarParkID: cp.ID,
			UserID:    userID,
			PaymentID: &pay.ID,
			StartTime: start,
			EndTime:   end,
			CostPence: costPence,
			Status:    domain.ReservationReserved,
		}
		if err := tx.Reservations.Create(res); err != nil {
			return err
		}

		active, err := tx.Reservations.CountActive(bayID, now)
		if err != nil {
			return err
		}
		bayAvailable = active == 0
		carparkID = cp.ID
		return tx.Bays.SetAvailability(bayID, bayAvailable)
	})
	if err != nil {
		if chargeID != "" {
			// captured but not recorded: surface loudly, never swallow
			s.log.Error("charge captured but booking persistence failed; reconcile manually",
				zap.String("charge_id", chargeID),
				zap.Int64("amount_pence", totalPence),
				zap.Uint("user_id", userID),
				zap.Uint("bay_id", bayID),
				zap.Error(err))
			return nil, nil, fmt.Errorf("%w: charge %s", domain.ErrReconciliationRequired, chargeID)
		}
		return nil, nil, err
	}
	if s.hub != nil {
		s.hub.BayChanged(bayID, carparkID, bayAvailable)
	}
	return res, pay, nil
}

// Cancel moves a reservation to cancelled and stamps CancelledAt exactly once.
// Only the booking's renter (or an admin) may cancel, and only from
// reserved or active.
func (s *BookingService) Cancel(ctx context.Context, userID uint, role string, reservationID uint) (*models.Reservation, error) {
	var (
		res          *models.Reservation
		bayAvailable bool
	)
	err := s.store.Transaction(func(tx *repository.Store) error {
		var err error
		res, err = tx.Reservations.GetByIDForUpdate(reservationID)
		if err != nil {
			return notFound(err, "reservation")
		}
		if res.UserID != userID && role != domain.RoleAdmin {
			return domain.ErrForbidden
		}
		if res.Status != domain.ReservationReserved && res.Status != domain.ReservationActive {
			return fmt.Errorf("%w: cannot cancel a %s reservation", domain.ErrReservationState, res.Status)
		}
		now := s.now()
		res.Status = domain.ReservationCancelled
		if res.CancelledAt == nil {
			res.CancelledAt = &now
		}
		if err := tx.Reservations.Update(res); err != nil {
			return err
		}
		active, err := tx.Reservations.CountActive(res.BayID, now)
		if err != nil {
			return err
		}
		bayAvailable = active == 0
		return tx.Bays.SetAvailability(res.BayID, bayAvailable)
	})
	if err != nil {
		return nil, err
	}
	if s.hub != nil {
		s.hub.BayChanged(res.BayID, res.CarParkID, bayAvailable)
	}
	return res, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	return err
}
