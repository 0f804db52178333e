package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/sindri/internal/domain"
)

func (q *queries) GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	const op = "postgres.get_coupon_by_code"

	var (
		c          domain.Coupon
		validFrom  *time.Time
		validUntil *time.Time
	)
	err := q.db.QueryRow(ctx, `
		SELECT c.id, c.code, c.usage_limit, c.usage_count,
		       p.id, p.name, p.kind, p.percent, p.amount_cents, p.bundle, p.bogo, p.tiers, p.scope,
		       p.min_order_cents, p.max_discount_cents, p.priority, p.valid_from, p.valid_until, p.is_active
		FROM coupons c
		JOIN promotions p ON p.id = c.promotion_id
		WHERE c.code = $1`,
		code).Scan(
		&c.ID, &c.Code, &c.UsageLimit, &c.UsageCount,
		&c.Promotion.ID, &c.Promotion.Name, &c.Promotion.Type, &c.Promotion.Percent,
		&c.Promotion.AmountCents, &c.Promotion.Bundle, &c.Promotion.BOGO,
		&c.Promotion.Tiers, &c.Promotion.Scope,
		&c.Promotion.MinOrderCents, &c.Promotion.MaxDiscountCents, &c.Promotion.Priority,
		&validFrom, &validUntil, &c.Promotion.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "coupon", code)
		}
		return nil, domain.Internal(err, op, "Unable to read coupon")
	}
	if validFrom != nil {
		c.Promotion.ValidFrom = *validFrom
	}
	if validUntil != nil {
		c.Promotion.ValidUntil = *validUntil
	}
	return &c, nil
}

// IncrementCouponUsage bumps the counter only while uses remain (a zero
// limit means unlimited). The guarded update is what makes concurrent
// redemptions at the limit safe: exactly one caller sees a row change.
func (q *queries) IncrementCouponUsage(ctx context.Context, couponID uuid.UUID) (bool, error) {
	const op = "postgres.increment_coupon_usage"

	tag, err := q.db.Exec(ctx, `
		UPDATE coupons
		SET usage_count = usage_count + 1
		WHERE id = $1 AND (usage_limit = 0 OR usage_count < usage_limit)`,
		couponID)
	if err != nil {
		return false, domain.Internal(err, op, "Unable to update coupon usage")
	}
	return tag.RowsAffected() == 1, nil
}
