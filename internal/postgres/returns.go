package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dukerupert/sindri/internal/domain"
)

func (q *queries) CreateReturnRequest(ctx context.Context, req *domain.ReturnRequest) error {
	const op = "postgres.create_return_request"

	_, err := q.db.Exec(ctx, `
		INSERT INTO return_requests (id, order_id, reason, status, refund_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		req.ID, req.OrderID, req.Reason, req.Status, req.RefundCents, req.CreatedAt)
	if err != nil {
		// The partial unique index on open returns backs up the service
		// check under concurrency.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrReturnAlreadyExists
		}
		return domain.Internal(err, op, "Unable to create return request")
	}

	for _, l := range req.Lines {
		_, err := q.db.Exec(ctx, `
			INSERT INTO return_lines (return_id, order_line_id, quantity)
			VALUES ($1, $2, $3)`,
			req.ID, l.OrderLineID, l.Quantity)
		if err != nil {
			return domain.Internal(err, op, "Unable to create return line")
		}
	}
	return nil
}

func (q *queries) getReturnRequest(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.ReturnRequest, error) {
	const op = "postgres.get_return_request"

	sql := `SELECT id, order_id, reason, status, refund_cents, created_at, resolved_at
		FROM return_requests WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}

	var r domain.ReturnRequest
	err := q.db.QueryRow(ctx, sql, id).Scan(
		&r.ID, &r.OrderID, &r.Reason, &r.Status, &r.RefundCents, &r.CreatedAt, &r.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReturnNotFound
		}
		return nil, domain.Internal(err, op, "Unable to read return request")
	}

	rows, err := q.db.Query(ctx, `
		SELECT order_line_id, quantity
		FROM return_lines
		WHERE return_id = $1
		ORDER BY order_line_id`, id)
	if err != nil {
		return nil, domain.Internal(err, op, "Unable to read return lines")
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.ReturnLine
		if err := rows.Scan(&l.OrderLineID, &l.Quantity); err != nil {
			return nil, domain.Internal(err, op, "Unable to read return line")
		}
		r.Lines = append(r.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "Unable to read return lines")
	}
	return &r, nil
}

func (q *queries) GetReturnRequest(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	return q.getReturnRequest(ctx, id, false)
}

func (q *queries) GetReturnRequestForUpdate(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	return q.getReturnRequest(ctx, id, true)
}

func (q *queries) UpdateReturnRequest(ctx context.Context, req *domain.ReturnRequest) error {
	const op = "postgres.update_return_request"

	tag, err := q.db.Exec(ctx, `
		UPDATE return_requests
		SET status = $2, resolved_at = $3
		WHERE id = $1`,
		req.ID, req.Status, req.ResolvedAt)
	if err != nil {
		return domain.Internal(err, op, "Unable to update return request")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReturnNotFound
	}
	return nil
}

func (q *queries) OpenReturnExists(ctx context.Context, orderID uuid.UUID) (bool, error) {
	const op = "postgres.open_return_exists"

	var exists bool
	err := q.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM return_requests
			WHERE order_id = $1 AND status IN ('pending', 'approved')
		)`, orderID).Scan(&exists)
	if err != nil {
		return false, domain.Internal(err, op, "Unable to check for open returns")
	}
	return exists, nil
}
