package gateway

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/refund"

	"github.com/dukerupert/sindri/internal/domain"
)

// StripeProvider issues refunds through the Stripe API.
type StripeProvider struct {
	logger zerolog.Logger
}

// NewStripeProvider configures the global Stripe client key and returns a
// provider. secretKey must be a restricted or secret API key.
func NewStripeProvider(secretKey string, logger zerolog.Logger) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{logger: logger.With().Str("component", "stripe").Logger()}
}

func (p *StripeProvider) RefundByAmount(ctx context.Context, params RefundParams) (*Refund, error) {
	const op = "gateway.refund_by_amount"

	rp := &stripe.RefundParams{
		PaymentIntent: stripe.String(params.PaymentReference),
		Amount:        stripe.Int64(params.AmountCents),
	}
	rp.Context = ctx
	if params.IdempotencyKey != "" {
		rp.SetIdempotencyKey(params.IdempotencyKey)
	}
	if params.Reason != "" {
		rp.Metadata = map[string]string{"reason": params.Reason}
	}

	r, err := refund.New(rp)
	if err != nil {
		p.logger.Error().Err(err).
			Str("payment_reference", params.PaymentReference).
			Int64("amount_cents", params.AmountCents).
			Msg("stripe refund failed")
		return nil, domain.External(err, op, "Payment provider could not process the refund")
	}

	p.logger.Info().
		Str("refund_id", r.ID).
		Str("payment_reference", params.PaymentReference).
		Int64("amount_cents", params.AmountCents).
		Msg("refund issued")

	return &Refund{ID: r.ID, Status: string(r.Status)}, nil
}
