package gateway

import "context"

// ChargeRequest describes one charge to open at the payment provider.
// OrderNumber is the caller's idempotency key; submitting the same order
// number twice must not open a second charge.
type ChargeRequest struct {
	OrderNumber    string
	AmountCents    int64
	Description    string
	PaymentMethods []string
}

// ChargeResponse is the provider's answer to a new charge.
type ChargeResponse struct {
	ChargeID string
	Status   string
	LinkURL  string
}

// Provider is the boundary with the external payment gateway. Status strings
// are free text owned by the provider; callers normalize them.
type Provider interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error)
	GetChargeStatus(ctx context.Context, orderNumber string) (string, error)
}
