package service

import (
	"context"
	"strings"
	"time"

	"github.com/dukerupert/sindri/internal/domain"
	"github.com/dukerupert/sindri/internal/promotion"
	"github.com/dukerupert/sindri/internal/telemetry"
)

// CouponService validates coupon codes against a cart. Validation is a dry
// run: it never consumes a use. The usage counter moves only inside the
// order transaction, so a coupon can validate here and still lose the race
// at checkout.
type CouponService interface {
	Validate(ctx context.Context, code string, items []CartItem) (*domain.CouponResult, error)
}

type couponService struct {
	store   Store
	metrics *telemetry.BusinessMetrics
	now     func() time.Time
}

func NewCouponService(store Store, metrics *telemetry.BusinessMetrics) CouponService {
	return &couponService{store: store, metrics: metrics, now: time.Now}
}

func (s *couponService) Validate(ctx context.Context, code string, items []CartItem) (*domain.CouponResult, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	cart, err := priceCart(ctx, s.store, items)
	if err != nil {
		return nil, err
	}

	coupon, err := s.store.GetCouponByCode(ctx, normalizeCouponCode(code))
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			s.metrics.CouponOutcomes.WithLabelValues(domain.CouponInvalidCode).Inc()
			return &domain.CouponResult{
				FailureCode: domain.CouponInvalidCode,
				Message:     "Invalid coupon code",
				TotalCents:  domain.Subtotal(cart),
			}, nil
		}
		return nil, err
	}

	result, _, err := validateCoupon(coupon, cart, s.now())
	if err != nil {
		return nil, err
	}

	if result.Valid {
		s.metrics.CouponOutcomes.WithLabelValues("valid").Inc()
	} else {
		s.metrics.CouponOutcomes.WithLabelValues(result.FailureCode).Inc()
	}
	return result, nil
}

// normalizeCouponCode matches codes case-insensitively; storage keeps them
// uppercase.
func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// validateCoupon checks a coupon against a priced cart and computes its
// discount. Coupon-level failures come back as data on the result; only
// store or engine failures are errors. The quote is returned alongside so
// checkout can prorate across its affected lines.
func validateCoupon(c *domain.Coupon, cart []domain.CartLine, now time.Time) (*domain.CouponResult, *promotion.Quote, error) {
	subtotal := domain.Subtotal(cart)

	fail := func(code, message string) (*domain.CouponResult, *promotion.Quote, error) {
		return &domain.CouponResult{
			FailureCode: code,
			Message:     message,
			CouponID:    c.ID,
			TotalCents:  subtotal,
		}, nil, nil
	}

	if !c.Promotion.IsActive {
		return fail(domain.CouponInactive, "This coupon is no longer active")
	}
	if !c.Promotion.ValidFrom.IsZero() && now.Before(c.Promotion.ValidFrom) {
		return fail(domain.CouponNotYetValid, "This coupon is not valid yet")
	}
	if !c.Promotion.ValidUntil.IsZero() && now.After(c.Promotion.ValidUntil) {
		return fail(domain.CouponExpired, "This coupon has expired")
	}
	if !c.UsesRemaining() {
		return fail(domain.CouponLimitReached, "This coupon has been fully redeemed")
	}

	quote, err := promotion.Evaluate(c.Promotion, cart, now)
	if err != nil {
		return nil, nil, err
	}
	if quote.ShortfallCents > 0 {
		return fail(domain.CouponMinOrderUnmet, quote.Reason)
	}

	return &domain.CouponResult{
		Valid:         true,
		CouponID:      c.ID,
		Message:       quote.Reason,
		DiscountCents: quote.DiscountCents,
		TotalCents:    subtotal - quote.DiscountCents,
	}, quote, nil
}
