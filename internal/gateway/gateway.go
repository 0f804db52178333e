// Package gateway abstracts the payment provider used for refunds. The core
// never charges cards itself; checkout records the provider's reference for
// the original charge and this package refunds against it.
package gateway

import (
	"context"
)

// RefundParams describes a partial or full refund against an earlier charge.
type RefundParams struct {
	// PaymentReference is the provider's id for the original charge
	// (a payment intent id for Stripe).
	PaymentReference string

	AmountCents int64
	Currency    string

	// IdempotencyKey makes retried refund calls safe. Callers derive it
	// from the return request id so a crash between the provider call and
	// the status update cannot double-refund.
	IdempotencyKey string

	Reason string
}

// Refund is the provider's record of an issued refund.
type Refund struct {
	ID     string
	Status string
}

// Provider issues refunds against a payment provider.
type Provider interface {
	RefundByAmount(ctx context.Context, params RefundParams) (*Refund, error)
}
