package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkbay/config"
	"parkbay/internal/domain"
	"parkbay/internal/models"
	"parkbay/internal/repository"
	"parkbay/pkg/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RefundService runs the refund workflow. A request against a cancellation
// made far enough ahead of the booking start is refunded immediately; anything
// later queues for an admin decision.
type RefundService struct {
	store   *repository.Store
	gateway payment.Gateway
	cfg     *config.BookingConfig
	log     *zap.Logger
	now     func() time.Time
}

func NewRefundService(store *repository.Store, gateway payment.Gateway, cfg *config.BookingConfig, log *zap.Logger) *RefundService {
	return &RefundService{
		store:   store,
		gateway: gateway,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// Request opens a refund for a payment the caller made. The reservation must
// already be cancelled, the payment not yet refunded, and no other refund
// open against it.
func (s *RefundService) Request(ctx context.Context, userID, paymentID uint, reason string) (*models.Refund, error) {
	var out *models.Refund
	err := s.store.Transaction(func(tx *repository.Store) error {
		pay, err := tx.Payments.GetByIDForUpdate(paymentID)
		if err != nil {
			return notFound(err, "payment")
		}
		if pay.UserID != userID {
			return domain.ErrForbidden
		}
		if pay.Status == domain.PaymentRefunded {
			return fmt.Errorf("%w: payment already refunded", domain.ErrRefundState)
		}
		res, err := tx.Reservations.GetByPaymentID(paymentID)
		if err != nil {
			return notFound(err, "reservation")
		}
		if res.Status != domain.ReservationCancelled || res.CancelledAt == nil {
			return fmt.Errorf("%w: reservation must be cancelled before requesting a refund", domain.ErrRefundState)
		}
		if _, err := tx.Refunds.GetOpenByPayment(paymentID); err == nil {
			return fmt.Errorf("%w: a refund is already open for this payment", domain.ErrRefundState)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Cancelled with at least the configured lead time before the booking
		// started: refund without waiting for a human.
		if res.StartTime.Sub(*res.CancelledAt) >= s.cfg.AutoRefundWindow {
			acct, err := s.ownerAccount(tx, res.CarParkID)
			if err != nil {
				return err
			}
			result, err := s.gateway.Refund(ctx, payment.RefundRequest{
				ChargeID:           pay.StripeChargeID,
				AmountPence:        pay.AmountPence,
				DestinationAccount: acct,
				IdempotencyKey:     uuid.NewString(),
			})
			if err != nil {
				return err
			}
			now := s.now()
			out = &models.Refund{
				PaymentID:      pay.ID,
				ReservationID:  res.ID,
				AmountPence:    pay.AmountPence,
				StripeRefundID: result.ID,
				ReceiptURL:     result.ReceiptURL,
				Status:         domain.RefundApproved,
				Reason:         reason,
				Decision:       domain.DecisionAutomatic,
				CreatedBy:      userID,
				ProcessedAt:    &now,
			}
			if err := tx.Refunds.Create(out); err != nil {
				return err
			}
			return s.markRefunded(tx, pay, res)
		}

		out = &models.Refund{
			PaymentID:     pay.ID,
			ReservationID: res.ID,
			AmountPence:   pay.AmountPence,
			Status:        domain.RefundRequested,
			Reason:        reason,
			CreatedBy:     userID,
		}
		return tx.Refunds.Create(out)
	})
	if err != nil {
		return nil, err
	}
	if out.Decision == domain.DecisionAutomatic {
		s.log.Info("refund auto-approved",
			zap.Uint("refund_id", out.ID),
			zap.Uint("payment_id", out.PaymentID),
			zap.Int64("amount_pence", out.AmountPence))
	}
	return out, nil
}

// Approve issues the refund through the gateway, then marks the refund,
// payment and reservation refunded in one transaction. A gateway failure
// leaves every record untouched so the admin can retry.
func (s *RefundService) Approve(ctx context.Context, adminID, refundID uint, decision string) (*models.Refund, error) {
	var out *models.Refund
	err := s.store.Transaction(func(tx *repository.Store) error {
		rf, err := tx.Refunds.GetByIDForUpdate(refundID)
		if err != nil {
			return notFound(err, "refund")
		}
		switch rf.Status {
		case domain.RefundRequested, domain.RefundReviewing, domain.RefundDenied:
		default:
			return fmt.Errorf("%w: refund is already %s", domain.ErrRefundState, rf.Status)
		}
		pay, err := tx.Payments.GetByID(rf.PaymentID)
		if err != nil {
			return notFound(err, "payment")
		}
		res, err := tx.Reservations.GetByID(rf.ReservationID)
		if err != nil {
			return notFound(err, "reservation")
		}
		acct, err := s.ownerAccount(tx, res.CarParkID)
		if err != nil {
			return err
		}
		result, err := s.gateway.Refund(ctx, payment.RefundRequest{
			ChargeID:           pay.StripeChargeID,
			AmountPence:        rf.AmountPence,
			DestinationAccount: acct,
			IdempotencyKey:     uuid.NewString(),
		})
		if err != nil {
			return err
		}
		now := s.now()
		rf.Status = domain.RefundApproved
		rf.Decision = decision
		rf.StripeRefundID = result.ID
		rf.ReceiptURL = result.ReceiptURL
		rf.UpdatedBy = &adminID
		rf.ProcessedAt = &now
		if err := tx.Refunds.Update(rf); err != nil {
			return err
		}
		if err := s.markRefunded(tx, pay, res); err != nil {
			return err
		}
		out = rf
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Deny rejects an open refund request. Denying twice, or denying an already
// approved refund, is an error.
func (s *RefundService) Deny(adminID, refundID uint, decision string) (*models.Refund, error) {
	var out *models.Refund
	err := s.store.Transaction(func(tx *repository.Store) error {
		rf, err := tx.Refunds.GetByIDForUpdate(refundID)
		if err != nil {
			return notFound(err, "refund")
		}
		switch rf.Status {
		case domain.RefundRequested, domain.RefundReviewing:
		case domain.RefundDenied:
			return fmt.Errorf("%w: refund already denied", domain.ErrRefundState)
		default:
			return fmt.Errorf("%w: refund is already %s", domain.ErrRefundState, rf.Status)
		}
		rf.Status = domain.RefundDenied
		rf.Decision = decision
		rf.UpdatedBy = &adminID
		if err := tx.Refunds.Update(rf); err != nil {
			return err
		}
		out = rf
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Resubmit reopens a denied refund with a new reason. Only the original
// requester may resubmit, and the requester on record never changes.
func (s *RefundService) Resubmit(userID, refundID uint, reason string) (*models.Refund, error) {
	var out *models.Refund
	err := s.store.Transaction(func(tx *repository.Store) error {
		rf, err := tx.Refunds.GetByIDForUpdate(refundID)
		if err != nil {
			return notFound(err, "refund")
		}
		if rf.CreatedBy != userID {
			return domain.ErrForbidden
		}
		if rf.Status != domain.RefundDenied {
			return fmt.Errorf("%w: only a denied refund can be resubmitted", domain.ErrRefundState)
		}
		rf.Status = domain.RefundRequested
		rf.Reason = reason
		rf.UpdatedBy = &userID
		if err := tx.Refunds.Update(rf); err != nil {
			return err
		}
		out = rf
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkReviewing claims a requested refund for review.
func (s *RefundService) MarkReviewing(adminID, refundID uint) (*models.Refund, error) {
	var out *models.Refund
	err := s.store.Transaction(func(tx *repository.Store) error {
		rf, err := tx.Refunds.GetByIDForUpdate(refundID)
		if err != nil {
			return notFound(err, "refund")
		}
		if rf.Status != domain.RefundRequested {
			return fmt.Errorf("%w: refund is %s, not requested", domain.ErrRefundState, rf.Status)
		}
		rf.Status = domain.RefundReviewing
		rf.UpdatedBy = &adminID
		if err := tx.Refunds.Update(rf); err != nil {
			return err
		}
		out = rf
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RefundService) markRefunded(tx *repository.Store, pay *models.Payment, res *models.Reservation) error {
	pay.Status = domain.PaymentRefunded
	if err := tx.Payments.Update(pay); err != nil {
		return err
	}
	res.Status = domain.ReservationRefunded
	return tx.Reservations.Update(res)
}

func (s *RefundService) ownerAccount(tx *repository.Store, carparkID uint) (string, error) {
	cp, err := tx.CarParks.GetByID(carparkID)
	if err != nil {
		return "", notFound(err, "car park")
	}
	owner, err := tx.Users.GetByID(cp.UserID)
	if err != nil {
		return "", notFound(err, "car park owner")
	}
	if !owner.HasPayoutAccount() {
		return "", domain.ErrPayeeNotOnboarded
	}
	return *owner.StripeAccountID, nil
}
