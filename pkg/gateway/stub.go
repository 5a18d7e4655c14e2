package gateway

import (
	"context"
	"fmt"
	"time"
)

// StubProvider is a no-op provider for development; charges are accepted
// locally and never settle.
type StubProvider struct{}

func (s *StubProvider) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	return &ChargeResponse{
		ChargeID: fmt.Sprintf("stub_%d", time.Now().UnixNano()),
		Status:   "waiting_payment",
		LinkURL:  "https://pay.example.invalid/" + req.OrderNumber,
	}, nil
}

func (s *StubProvider) GetChargeStatus(ctx context.Context, orderNumber string) (string, error) {
	return "waiting_payment", nil
}
