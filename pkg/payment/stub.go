package payment

import (
	"context"
	"fmt"
	"time"
)

// StubGateway approves everything without touching a processor. Used in
// development when no Stripe key is configured.
type StubGateway struct{}

func (s *StubGateway) Capture(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	return &ChargeResult{
		ID:   fmt.Sprintf("stub_ch_%d", time.Now().UnixNano()),
		Paid: true,
	}, nil
}

func (s *StubGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	return &RefundResult{ID: fmt.Sprintf("stub_re_%d", time.Now().UnixNano())}, nil
}

func (s *StubGateway) AccountStatus(ctx context.Context, accountID string) (*AccountStatus, error) {
	return &AccountStatus{DetailsSubmitted: true, ChargesEnabled: true, PayoutsEnabled: true}, nil
}
