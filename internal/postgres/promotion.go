package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/sindri/internal/domain"
)

const promotionColumns = `id, name, kind, percent, amount_cents, bundle, bogo, tiers, scope,
	min_order_cents, max_discount_cents, priority, valid_from, valid_until, is_active`

// scanPromotion reads one promotion row. The payload columns (bundle, bogo,
// tiers, scope) are jsonb; time bounds are nullable and map to zero times.
func scanPromotion(row pgx.Row) (domain.Promotion, error) {
	var (
		p          domain.Promotion
		validFrom  *time.Time
		validUntil *time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Percent, &p.AmountCents,
		&p.Bundle, &p.BOGO, &p.Tiers, &p.Scope,
		&p.MinOrderCents, &p.MaxDiscountCents, &p.Priority,
		&validFrom, &validUntil, &p.IsActive)
	if err != nil {
		return domain.Promotion{}, err
	}
	if validFrom != nil {
		p.ValidFrom = *validFrom
	}
	if validUntil != nil {
		p.ValidUntil = *validUntil
	}
	return p, nil
}

func (q *queries) ListActivePromotions(ctx context.Context) ([]domain.Promotion, error) {
	const op = "postgres.list_active_promotions"

	rows, err := q.db.Query(ctx, `
		SELECT `+promotionColumns+`
		FROM promotions
		WHERE is_active
		ORDER BY priority DESC, valid_from`)
	if err != nil {
		return nil, domain.Internal(err, op, "Unable to list promotions")
	}
	defer rows.Close()

	var promos []domain.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "Unable to read promotion")
		}
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "Unable to list promotions")
	}
	return promos, nil
}
