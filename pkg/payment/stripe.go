package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/account"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/refund"
)

// StripeGateway captures destination charges on connected accounts with the
// platform fee withheld, and reverses them on refund.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) Capture(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = "gbp"
	}
	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(req.AmountPence),
		Currency:             stripe.String(currency),
		PaymentMethod:        stripe.String(req.SourceToken),
		Confirm:              stripe.Bool(true),
		Description:          stripe.String(req.Description),
		ApplicationFeeAmount: stripe.Int64(req.ApplicationFeePence),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(req.DestinationAccount),
		},
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.AddExpand("latest_charge")
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, mapStripeErr(err)
	}
	res := &ChargeResult{Paid: pi.Status == stripe.PaymentIntentStatusSucceeded}
	if pi.LatestCharge != nil {
		res.ID = pi.LatestCharge.ID
		res.ReceiptURL = pi.LatestCharge.ReceiptURL
	}
	if res.ID == "" {
		res.ID = pi.ID
	}
	return res, nil
}

func (g *StripeGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	params := &stripe.RefundParams{
		Charge:               stripe.String(req.ChargeID),
		Amount:               stripe.Int64(req.AmountPence),
		ReverseTransfer:      stripe.Bool(true),
		RefundApplicationFee: stripe.Bool(true),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	r, err := refund.New(params)
	if err != nil {
		return nil, mapStripeErr(err)
	}
	// Stripe refunds carry a receipt number, not a hosted receipt URL.
	return &RefundResult{ID: r.ID}, nil
}

func (g *StripeGateway) AccountStatus(ctx context.Context, accountID string) (*AccountStatus, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx
	acct, err := account.GetByID(accountID, params)
	if err != nil {
		return nil, mapStripeErr(err)
	}
	return &AccountStatus{
		DetailsSubmitted: acct.DetailsSubmitted,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
	}, nil
}

func mapStripeErr(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch {
	case se.Type == stripe.ErrorTypeCard:
		return fmt.Errorf("%w: %s", ErrDeclined, se.Code)
	case se.Code == stripe.ErrorCodeAccountInvalid:
		return fmt.Errorf("%w: %s", ErrInvalidAccount, se.Code)
	case se.Type == stripe.ErrorTypeAPI:
		// processor-side failure, retryable from the caller's view
		return fmt.Errorf("%w: %v", ErrUnavailable, se.Msg)
	default:
		return err
	}
}
