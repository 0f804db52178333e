package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/sindri/internal/domain"
)

func newCouponFixture(t *testing.T) (*memStore, *couponService) {
	t.Helper()
	st := newMemStore()
	svc := &couponService{
		store:   st,
		metrics: testMetrics(),
		now:     func() time.Time { return fixedNow },
	}
	return st, svc
}

func seedCoupon(st *memStore, code string, mutate func(*domain.Coupon)) *domain.Coupon {
	c := &domain.Coupon{
		ID:   uuid.New(),
		Code: code,
		Promotion: domain.Promotion{
			ID:       uuid.New(),
			Type:     domain.PromotionPercentage,
			Percent:  20,
			Scope:    domain.Scope{Kind: domain.ScopeAll},
			IsActive: true,
		},
	}
	if mutate != nil {
		mutate(c)
	}
	st.addCoupon(c)
	return c
}

func TestValidateCouponOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		seed        func(st *memStore)
		wantValid   bool
		wantFailure string
	}{
		{
			name:        "unknown code",
			code:        "NOPE",
			seed:        func(st *memStore) {},
			wantFailure: domain.CouponInvalidCode,
		},
		{
			name: "inactive",
			code: "OFF",
			seed: func(st *memStore) {
				seedCoupon(st, "OFF", func(c *domain.Coupon) { c.Promotion.IsActive = false })
			},
			wantFailure: domain.CouponInactive,
		},
		{
			name: "not yet valid",
			code: "SOON",
			seed: func(st *memStore) {
				seedCoupon(st, "SOON", func(c *domain.Coupon) {
					c.Promotion.ValidFrom = fixedNow.Add(time.Hour)
				})
			},
			wantFailure: domain.CouponNotYetValid,
		},
		{
			name: "expired",
			code: "LATE",
			seed: func(st *memStore) {
				seedCoupon(st, "LATE", func(c *domain.Coupon) {
					c.Promotion.ValidUntil = fixedNow.Add(-time.Hour)
				})
			},
			wantFailure: domain.CouponExpired,
		},
		{
			name: "limit reached",
			code: "USED",
			seed: func(st *memStore) {
				seedCoupon(st, "USED", func(c *domain.Coupon) {
					c.UsageLimit = 5
					c.UsageCount = 5
				})
			},
			wantFailure: domain.CouponLimitReached,
		},
		{
			name: "minimum order unmet",
			code: "BIG",
			seed: func(st *memStore) {
				seedCoupon(st, "BIG", func(c *domain.Coupon) {
					c.Promotion.MinOrderCents = 5000
				})
			},
			wantFailure: domain.CouponMinOrderUnmet,
		},
		{
			name:      "valid",
			code:      "save20",
			seed:      func(st *memStore) { seedCoupon(st, "SAVE20", nil) },
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, svc := newCouponFixture(t)
			p := seedProduct(st, 1000, 10)
			tt.seed(st)

			result, err := svc.Validate(context.Background(), tt.code, []CartItem{{ProductID: p.ID, Quantity: 1}})
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Equal(t, tt.wantFailure, result.FailureCode)
			if tt.wantValid {
				assert.EqualValues(t, 200, result.DiscountCents)
				assert.EqualValues(t, 800, result.TotalCents)
			}
		})
	}
}

func TestValidateNeverConsumesUsage(t *testing.T) {
	st, svc := newCouponFixture(t)
	p := seedProduct(st, 1000, 10)
	c := seedCoupon(st, "SAVE20", func(c *domain.Coupon) { c.UsageLimit = 1 })

	for i := 0; i < 3; i++ {
		result, err := svc.Validate(context.Background(), "SAVE20", []CartItem{{ProductID: p.ID, Quantity: 1}})
		require.NoError(t, err)
		assert.True(t, result.Valid)
	}
	assert.EqualValues(t, 0, st.couponUsage(c.ID))
}

func TestValidateMinOrderMessageNamesShortfall(t *testing.T) {
	st, svc := newCouponFixture(t)
	p := seedProduct(st, 1000, 10)
	seedCoupon(st, "BIG", func(c *domain.Coupon) { c.Promotion.MinOrderCents = 1500 })

	result, err := svc.Validate(context.Background(), "BIG", []CartItem{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, domain.CouponMinOrderUnmet, result.FailureCode)
	assert.Contains(t, result.Message, "₹5.00")
}
