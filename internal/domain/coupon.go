package domain

import (
	"github.com/google/uuid"
)

// Coupon failure codes, returned as data rather than thrown: the UI phrases
// "coupon itself invalid" differently from "coupon valid but below minimum
// order".
const (
	CouponInvalidCode   = "INVALID_CODE"
	CouponInactive      = "INACTIVE"
	CouponNotYetValid   = "NOT_YET_VALID"
	CouponExpired       = "EXPIRED"
	CouponLimitReached  = "LIMIT_REACHED"
	CouponMinOrderUnmet = "MIN_ORDER_NOT_MET"
)

// Coupon is a named, single-code promotion with a bounded usage counter.
// UsageCount is incremented exactly once per successful order via a
// conditional increment in the order transaction, and must never exceed
// UsageLimit. Alongside stock it is the primary concurrency hazard here.
type Coupon struct {
	ID        uuid.UUID
	Code      string // stored uppercase, matched case-insensitively
	Promotion Promotion

	// UsageLimit of zero means unlimited.
	UsageLimit int32
	UsageCount int32
}

// UsesRemaining reports whether the coupon can still be redeemed.
func (c *Coupon) UsesRemaining() bool {
	return c.UsageLimit == 0 || c.UsageCount < c.UsageLimit
}

// CouponResult is the outcome of validating a coupon against a cart.
// Coupon-level failures are data, not errors: Valid=false with a
// FailureCode. Store or engine failures still surface as errors.
type CouponResult struct {
	Valid         bool
	FailureCode   string
	Message       string
	CouponID      uuid.UUID
	DiscountCents int64
	TotalCents    int64
}
