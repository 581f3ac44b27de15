package domain

import "errors"

// Core error kinds. Callers wrap with fmt.Errorf("%w: detail", ...) and handlers
// match with errors.Is to pick the HTTP status.
var (
	ErrValidation             = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrBookingConflict        = errors.New("bay is not available for the requested time")
	ErrPayeeNotOnboarded      = errors.New("car park owner has no active payout account")
	ErrPaymentDeclined        = errors.New("payment declined")
	ErrReconciliationRequired = errors.New("charge captured but booking not recorded; manual reconciliation required")
	ErrRefundState            = errors.New("refund is not in an allowed state for this operation")
	ErrReservationState       = errors.New("reservation is not in an allowed state for this operation")
)
