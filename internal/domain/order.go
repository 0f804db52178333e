package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order-related domain errors.
var (
	ErrOrderNotFound      = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrEmptyCart          = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrMissingAddress     = &Error{Code: EINVALID, Message: "Shipping address is required"}
	ErrInsufficientStock  = &Error{Code: ECONFLICT, Message: "SOLD_OUT: insufficient stock for one or more items"}
	ErrCouponLimitReached = &Error{Code: ECONFLICT, Message: "COUPON_LIMIT_REACHED: coupon has no uses remaining"}
	ErrInvalidTransition  = &Error{Code: ECONFLICT, Message: "INVALID_TRANSITION: order status transition not permitted"}
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// PaymentMethodCOD is pay-on-delivery: orders confirm immediately with no
// external payment step. Anything else stays pending until a payment
// confirmation callback outside this core.
const PaymentMethodCOD = "cod"

// orderTransitions is the closed transition table. Delivered and Cancelled
// are terminal. Cancellation from Shipped is policy-gated and handled by
// CanTransition's allowCancelAfterShip flag rather than the table.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// ValidOrderStatus reports whether s names a known status.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransition reports whether from -> to is legal. allowCancelAfterShip
// opens the policy-gated Shipped -> Cancelled edge; by default goods that
// left the warehouse can only be delivered, and reversal is a return.
func CanTransition(from, to OrderStatus, allowCancelAfterShip bool) bool {
	if allowCancelAfterShip && from == OrderShipped && to == OrderCancelled {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderLine is a frozen snapshot of one purchased line. UnitPriceCents and
// DiscountCents are fixed at order creation; refund math always uses these
// values, never live catalog prices.
type OrderLine struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	VariantID      *uuid.UUID
	Quantity       int32
	UnitPriceCents int64

	// DiscountCents is this line's pro-rata share of the order-level
	// discount, frozen at creation.
	DiscountCents int64
}

// Order is the durable result of a checkout. Append-only after creation
// except for Status.
type Order struct {
	ID            uuid.UUID
	OrderNumber   string
	UserID        uuid.UUID
	Lines         []OrderLine
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
	Status        OrderStatus
	CouponID      *uuid.UUID
	AddressID     uuid.UUID
	PaymentMethod string

	// PaymentReference is the gateway's reference for the original charge,
	// used for refund-by-amount on returns.
	PaymentReference string

	// Attribution is opaque marketing context captured at checkout and
	// stored verbatim.
	Attribution map[string]string

	CreatedAt time.Time
}

// OrderEvent records one status transition. Events are strictly append-only.
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    OrderStatus
	Note      string
	CreatedAt time.Time
}
