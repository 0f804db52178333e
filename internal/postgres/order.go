package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/sindri/internal/domain"
)

const orderColumns = `id, order_number, user_id, subtotal_cents, discount_cents, total_cents,
	status, coupon_id, address_id, payment_method, payment_reference, attribution, created_at`

func (q *queries) CreateOrder(ctx context.Context, order *domain.Order) error {
	const op = "postgres.create_order"

	_, err := q.db.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		order.ID, order.OrderNumber, order.UserID,
		order.SubtotalCents, order.DiscountCents, order.TotalCents,
		order.Status, order.CouponID, order.AddressID,
		order.PaymentMethod, order.PaymentReference, order.Attribution, order.CreatedAt)
	if err != nil {
		return domain.Internal(err, op, "Unable to create order")
	}

	for _, l := range order.Lines {
		_, err := q.db.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, product_id, variant_id, quantity, unit_price_cents, discount_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, order.ID, l.ProductID, l.VariantID, l.Quantity, l.UnitPriceCents, l.DiscountCents)
		if err != nil {
			return domain.Internal(err, op, "Unable to create order line")
		}
	}
	return nil
}

func (q *queries) getOrder(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Order, error) {
	const op = "postgres.get_order"

	sql := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}

	var o domain.Order
	err := q.db.QueryRow(ctx, sql, id).Scan(
		&o.ID, &o.OrderNumber, &o.UserID,
		&o.SubtotalCents, &o.DiscountCents, &o.TotalCents,
		&o.Status, &o.CouponID, &o.AddressID,
		&o.PaymentMethod, &o.PaymentReference, &o.Attribution, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, op, "Unable to read order")
	}

	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, product_id, variant_id, quantity, unit_price_cents, discount_cents
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, domain.Internal(err, op, "Unable to read order lines")
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.VariantID, &l.Quantity, &l.UnitPriceCents, &l.DiscountCents); err != nil {
			return nil, domain.Internal(err, op, "Unable to read order line")
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "Unable to read order lines")
	}
	return &o, nil
}

func (q *queries) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return q.getOrder(ctx, id, false)
}

func (q *queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return q.getOrder(ctx, id, true)
}

func (q *queries) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	const op = "postgres.update_order_status"

	tag, err := q.db.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return domain.Internal(err, op, "Unable to update order status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (q *queries) CreateOrderEvent(ctx context.Context, event *domain.OrderEvent) error {
	const op = "postgres.create_order_event"

	_, err := q.db.Exec(ctx, `
		INSERT INTO order_events (id, order_id, status, note, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.OrderID, event.Status, event.Note, event.CreatedAt)
	if err != nil {
		return domain.Internal(err, op, "Unable to record order event")
	}
	return nil
}

func (q *queries) ListOrderEvents(ctx context.Context, orderID uuid.UUID) ([]domain.OrderEvent, error) {
	const op = "postgres.list_order_events"

	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, status, note, created_at
		FROM order_events
		WHERE order_id = $1
		ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, domain.Internal(err, op, "Unable to list order events")
	}
	defer rows.Close()

	var events []domain.OrderEvent
	for rows.Next() {
		var e domain.OrderEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Note, &e.CreatedAt); err != nil {
			return nil, domain.Internal(err, op, "Unable to read order event")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "Unable to list order events")
	}
	return events, nil
}
