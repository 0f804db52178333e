package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/sindri/internal/domain"
)

const productColumns = `id, name, category_id, base_price_cents, base_stock, variants, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.BasePriceCents, &p.BaseStock, &p.Variants, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "postgres.scan_product", "Unable to read product")
	}
	return &p, nil
}

func (q *queries) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return scanProduct(q.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (q *queries) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return scanProduct(q.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
}

// DecrementStock reserves qty units. Simple products use a single guarded
// update, so competing checkouts never need a row lock; composite products
// lock the row to keep the jsonb variant stocks and the aggregate in step.
func (q *queries) DecrementStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int32) (bool, error) {
	const op = "postgres.decrement_stock"

	if variantID == nil {
		tag, err := q.db.Exec(ctx, `
			UPDATE products
			SET base_stock = base_stock - $2, updated_at = now()
			WHERE id = $1 AND base_stock >= $2`,
			productID, qty)
		if err != nil {
			return false, domain.Internal(err, op, "Unable to update stock")
		}
		return tag.RowsAffected() == 1, nil
	}

	p, err := q.GetProductForUpdate(ctx, productID)
	if err != nil {
		return false, err
	}
	v := p.Variant(*variantID)
	if v == nil {
		return false, domain.ErrVariantNotFound
	}
	if v.Stock < qty {
		return false, nil
	}
	v.Stock -= qty
	p.BaseStock -= qty
	if err := p.CheckStockInvariant(); err != nil {
		return false, err
	}
	return true, q.writeStock(ctx, p)
}

// IncrementStock returns qty units to stock, for cancellations and approved
// returns.
func (q *queries) IncrementStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int32) error {
	const op = "postgres.increment_stock"

	if variantID == nil {
		tag, err := q.db.Exec(ctx, `
			UPDATE products
			SET base_stock = base_stock + $2, updated_at = now()
			WHERE id = $1`,
			productID, qty)
		if err != nil {
			return domain.Internal(err, op, "Unable to update stock")
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrProductNotFound
		}
		return nil
	}

	p, err := q.GetProductForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	v := p.Variant(*variantID)
	if v == nil {
		return domain.ErrVariantNotFound
	}
	v.Stock += qty
	p.BaseStock += qty
	if err := p.CheckStockInvariant(); err != nil {
		return err
	}
	return q.writeStock(ctx, p)
}

func (q *queries) writeStock(ctx context.Context, p *domain.Product) error {
	const op = "postgres.write_stock"

	_, err := q.db.Exec(ctx, `
		UPDATE products
		SET base_stock = $2, variants = $3, updated_at = now()
		WHERE id = $1`,
		p.ID, p.BaseStock, p.Variants)
	if err != nil {
		return domain.Internal(err, op, "Unable to update stock")
	}
	return nil
}
