// Package service implements the checkout core's use cases: promotion
// quoting, coupon validation, order placement, status transitions and
// returns. Services hold no state of their own; every invariant that spans
// rows is enforced inside a Store transaction.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/dukerupert/sindri/internal/domain"
)

// Tx is the set of persistence operations available inside one transaction.
// "ForUpdate" variants take a row lock; conditional mutations (DecrementStock,
// IncrementCouponUsage) report whether the guarded update happened instead of
// failing, so callers decide how to phrase the conflict.
type Tx interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetProductForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// DecrementStock atomically subtracts qty from the product's stock (or
	// the variant's, when variantID is set), only if enough remains.
	// Returns false when stock was insufficient; the row is left untouched.
	DecrementStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int32) (bool, error)

	// IncrementStock adds qty back, for cancellations and approved returns.
	IncrementStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int32) error

	// GetCouponByCode looks up a coupon by its uppercase code.
	GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error)

	// IncrementCouponUsage bumps the usage counter only while it is below
	// the limit. Returns false when the coupon is exhausted.
	IncrementCouponUsage(ctx context.Context, couponID uuid.UUID) (bool, error)

	ListActivePromotions(ctx context.Context) ([]domain.Promotion, error)

	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	CreateOrderEvent(ctx context.Context, event *domain.OrderEvent) error
	ListOrderEvents(ctx context.Context, orderID uuid.UUID) ([]domain.OrderEvent, error)

	CreateReturnRequest(ctx context.Context, req *domain.ReturnRequest) error
	GetReturnRequest(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error)
	GetReturnRequestForUpdate(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error)
	UpdateReturnRequest(ctx context.Context, req *domain.ReturnRequest) error

	// OpenReturnExists reports whether the order already has a return
	// request that is pending or approved.
	OpenReturnExists(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// Store is the persistence boundary. Reads outside a transaction use the
// embedded Tx methods directly; anything that mutates runs under RunInTx,
// which commits when fn returns nil and rolls back otherwise.
type Store interface {
	Tx

	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
