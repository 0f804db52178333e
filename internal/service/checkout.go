package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dukerupert/sindri/internal/domain"
	"github.com/dukerupert/sindri/internal/notify"
	"github.com/dukerupert/sindri/internal/promotion"
	"github.com/dukerupert/sindri/internal/telemetry"
)

// CartItem is one client-submitted cart entry. Prices never travel with it;
// the server derives them from the product record.
type CartItem struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int32      `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrderParams carries everything checkout needs besides the caller's
// identity and attribution, which ride on the context.
type PlaceOrderParams struct {
	Items            []CartItem `json:"items" validate:"required,min=1,dive"`
	CouponCode       string     `json:"coupon_code,omitempty"`
	AddressID        uuid.UUID  `json:"address_id" validate:"required"`
	PaymentMethod    string     `json:"payment_method" validate:"required"`
	PaymentReference string     `json:"payment_reference,omitempty"`
}

// QuoteResult lists the automatic promotions applicable to a cart, best
// first. Offers with zero discount are omitted.
type QuoteResult struct {
	SubtotalCents int64
	Offers        []promotion.Offer
	Best          *promotion.Offer
}

// CheckoutService prices carts and places orders.
type CheckoutService interface {
	QuotePromotions(ctx context.Context, items []CartItem) (*QuoteResult, error)
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (*domain.Order, error)
}

type checkoutService struct {
	store     Store
	publisher notify.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    zerolog.Logger
	now       func() time.Time
}

func NewCheckoutService(store Store, publisher notify.Publisher, metrics *telemetry.BusinessMetrics, logger zerolog.Logger) CheckoutService {
	return &checkoutService{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("service", "checkout").Logger(),
		now:       time.Now,
	}
}

func (s *checkoutService) QuotePromotions(ctx context.Context, items []CartItem) (*QuoteResult, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	cart, err := priceCart(ctx, s.store, items)
	if err != nil {
		return nil, err
	}

	promos, err := s.store.ListActivePromotions(ctx)
	if err != nil {
		return nil, err
	}

	offers, err := promotion.Rank(promos, cart, s.now())
	if err != nil {
		return nil, err
	}

	result := &QuoteResult{SubtotalCents: domain.Subtotal(cart), Offers: offers}
	if len(offers) > 0 {
		result.Best = &offers[0]
	}
	return result, nil
}

// PlaceOrder runs the whole checkout inside one transaction: re-price the
// cart from the catalog, reserve stock with conditional decrements, settle
// the discount (explicit coupon or best automatic promotion), freeze per-line
// prices and discount shares, and write the order with its first event.
// Events and metrics fire only after the commit.
func (s *checkoutService) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*domain.Order, error) {
	const op = "checkout.place_order"

	if len(params.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if params.AddressID == uuid.Nil {
		return nil, domain.ErrMissingAddress
	}
	if params.PaymentMethod == "" {
		return nil, domain.Invalid(op, "Payment method is required")
	}

	now := s.now()
	var order *domain.Order

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		cart, err := priceCart(ctx, tx, params.Items)
		if err != nil {
			return err
		}

		// Reserve stock up front, in product-id order so two multi-line
		// orders never lock the same rows in opposite order. The
		// conditional decrement is the only arbiter: under concurrent
		// checkouts of the last unit exactly one decrement succeeds and
		// every loser rolls back here.
		for _, item := range reservationOrder(params.Items) {
			ok, err := tx.DecrementStock(ctx, item.ProductID, item.VariantID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return domain.WrapError(domain.ErrInsufficientStock, domain.ECONFLICT, op,
					fmt.Sprintf("SOLD_OUT: not enough stock for product %s", item.ProductID))
			}
		}

		subtotal := domain.Subtotal(cart)

		var (
			discount int64
			affected []uuid.UUID
			couponID *uuid.UUID
		)
		if params.CouponCode != "" {
			coupon, err := tx.GetCouponByCode(ctx, normalizeCouponCode(params.CouponCode))
			if err != nil {
				if domain.ErrorCode(err) == domain.ENOTFOUND {
					return domain.Invalid(op, "Invalid coupon code")
				}
				return err
			}
			result, quote, err := validateCoupon(coupon, cart, now)
			if err != nil {
				return err
			}
			if !result.Valid {
				if result.FailureCode == domain.CouponLimitReached {
					return domain.ErrCouponLimitReached
				}
				return domain.Invalid(op, result.Message)
			}
			ok, err := tx.IncrementCouponUsage(ctx, coupon.ID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrCouponLimitReached
			}
			discount = quote.DiscountCents
			affected = quote.AffectedLineIDs
			couponID = &coupon.ID
		}

		// Without a coupon the order freezes a plain subtotal. General
		// promotions are surfaced through QuotePromotions only; they are
		// never applied at checkout.
		shares := prorate(discount, cart, affected)

		status := domain.OrderPending
		if params.PaymentMethod == domain.PaymentMethodCOD {
			status = domain.OrderConfirmed
		}

		order = &domain.Order{
			ID:               uuid.New(),
			OrderNumber:      orderNumber(now),
			UserID:           domain.UserIDFromContext(ctx),
			SubtotalCents:    subtotal,
			DiscountCents:    discount,
			TotalCents:       subtotal - discount,
			Status:           status,
			CouponID:         couponID,
			AddressID:        params.AddressID,
			PaymentMethod:    params.PaymentMethod,
			PaymentReference: params.PaymentReference,
			Attribution:      domain.AttributionFromContext(ctx),
			CreatedAt:        now,
		}
		for _, l := range cart {
			order.Lines = append(order.Lines, domain.OrderLine{
				ID:             l.LineID,
				OrderID:        order.ID,
				ProductID:      l.ProductID,
				VariantID:      l.VariantID,
				Quantity:       l.Quantity,
				UnitPriceCents: l.UnitPriceCents,
				DiscountCents:  shares[l.LineID],
			})
		}

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		return tx.CreateOrderEvent(ctx, &domain.OrderEvent{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Status:    status,
			Note:      "order placed",
			CreatedAt: now,
		})
	})
	if err != nil {
		s.metrics.OrdersFailed.WithLabelValues(domain.ErrorCode(err)).Inc()
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.metrics.SoldOutConflicts.Inc()
		}
		return nil, err
	}

	s.metrics.OrdersPlaced.Inc()
	s.metrics.DiscountCents.Add(float64(order.DiscountCents))
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int64("total_cents", order.TotalCents).
		Str("status", string(order.Status)).
		Msg("order placed")

	if order.Status == domain.OrderConfirmed {
		if err := s.publisher.Publish(ctx, notify.SubjectOrderConfirmed, order); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("order confirmation event not published")
		}
	}
	return order, nil
}

// priceCart turns client cart items into server-priced cart lines. Unit
// prices and category ids come from the product record; each line gets a
// fresh id for the promotion engine to reference.
func priceCart(ctx context.Context, tx Tx, items []CartItem) ([]domain.CartLine, error) {
	const op = "checkout.price_cart"

	lines := make([]domain.CartLine, 0, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, domain.Invalid(op, fmt.Sprintf("Quantity for item %d must be positive", i+1))
		}
		product, err := tx.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		unitPrice, err := product.UnitPrice(item.VariantID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.CartLine{
			LineID:         uuid.New(),
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			UnitPriceCents: unitPrice,
			Quantity:       item.Quantity,
			CategoryID:     product.CategoryID,
		})
	}
	return lines, nil
}

// prorate splits an order-level discount across the affected lines in
// proportion to their totals, by the largest-remainder method: floor shares
// first, then leftover cents to the lines with the largest remainders,
// earlier cart position breaking ties. The shares always sum exactly to
// discount.
func prorate(discount int64, cart []domain.CartLine, affected []uuid.UUID) map[uuid.UUID]int64 {
	shares := make(map[uuid.UUID]int64, len(affected))
	if discount <= 0 || len(affected) == 0 {
		return shares
	}

	affectedSet := make(map[uuid.UUID]bool, len(affected))
	for _, id := range affected {
		affectedSet[id] = true
	}

	type slice struct {
		pos       int
		lineID    uuid.UUID
		remainder int64
	}

	var base int64
	var allocated int64
	var slices []slice
	for _, l := range cart {
		if affectedSet[l.LineID] {
			base += l.TotalCents()
		}
	}
	if base <= 0 {
		return shares
	}
	for i, l := range cart {
		if !affectedSet[l.LineID] {
			continue
		}
		raw := discount * l.TotalCents()
		share := raw / base
		shares[l.LineID] = share
		allocated += share
		slices = append(slices, slice{pos: i, lineID: l.LineID, remainder: raw % base})
	}

	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].remainder > slices[j].remainder
	})
	for i := int64(0); i < discount-allocated; i++ {
		shares[slices[i%int64(len(slices))].lineID]++
	}
	return shares
}

// reservationOrder returns the items sorted by product id so concurrent
// multi-line orders always take stock row locks in the same sequence.
func reservationOrder(items []CartItem) []CartItem {
	ordered := make([]CartItem, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i].ProductID[:], ordered[j].ProductID[:]) < 0
	})
	return ordered
}

// orderNumber builds a human-referenceable order number like
// ORD-20260831-6A1C7F3A. Uniqueness is enforced by the orders table; the
// 32-bit random suffix keeps same-day collisions out of realistic order
// volumes.
func orderNumber(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("ORD-%s-%08X", now.UTC().Format("20060102"), binary.BigEndian.Uint32(id[0:4]))
}
