package payment

import (
	"context"
	"errors"
)

// Gateway failure kinds. The Stripe implementation maps processor error codes
// onto these so callers never have to inspect provider-specific errors.
var (
	ErrDeclined       = errors.New("charge declined by processor")
	ErrInvalidAccount = errors.New("unknown or unusable gateway account")
	ErrUnavailable    = errors.New("payment gateway unavailable")
)

type ChargeRequest struct {
	AmountPence         int64
	Currency            string
	SourceToken         string // payment method supplied by the client
	DestinationAccount  string // owner's connected sub-account
	ApplicationFeePence int64  // platform cut withheld from the destination
	Description         string
	IdempotencyKey      string
}

type ChargeResult struct {
	ID         string // charge reference, used for later refunds
	Paid       bool
	ReceiptURL string
}

type RefundRequest struct {
	ChargeID           string
	AmountPence        int64
	DestinationAccount string // sub-account the original transfer went to
	IdempotencyKey     string
}

type RefundResult struct {
	ID         string
	ReceiptURL string
}

type AccountStatus struct {
	DetailsSubmitted bool
	ChargesEnabled   bool
	PayoutsEnabled   bool
}

type Gateway interface {
	Capture(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
	AccountStatus(ctx context.Context, accountID string) (*AccountStatus, error)
}
